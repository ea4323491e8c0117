package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:   "flacify [flags] <root-directory>",
		Short: "Convert WAV/AIFF files to FLAC and trash the originals",
		Long: `flacify walks a directory tree, converts every .wav, .aif, and .aiff file
to FLAC beside the original, and moves the original into the volume's trash
directory when the FLAC is smaller.

Runs are dry-runs unless --no-dry-run is given: conversions happen, sizes are
measured and logged, and the FLAC files are then removed again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, args[0])
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.values.Codec.Binary, "codec", "", "FLAC encoder binary (default flac, or $FLACIFY_CODEC)")
	flags.IntVar(&ctx.values.Codec.CompressionLevel, "compression", ctx.values.Codec.CompressionLevel, "FLAC compression level (0-8)")
	flags.StringVar(&ctx.values.Logging.File, "log-file", "", "Append-only log file (default ~/flacify.log, or $FLACIFY_LOG_FILE)")
	flags.StringVar(&ctx.values.Logging.Level, "log-level", ctx.values.Logging.Level, "Log level (debug, info, warn, error)")
	flags.StringVar(&ctx.values.Logging.Format, "log-format", ctx.values.Logging.Format, "Log file format (console or json)")
	flags.StringVar(&ctx.values.Trash.DirName, "trash-name", ctx.values.Trash.DirName, "Name of the trash directory to search for")
	flags.StringArrayVar(&ctx.values.Trash.VolumeRoots, "volume-root", nil, "Volume root searched for a trash directory (repeatable; default /volume1 and /volume2, or $FLACIFY_VOLUME_ROOTS)")
	flags.BoolVar(&ctx.values.Trash.PreserveStructure, "preserve-structure", false, "Mirror source directories under the trash root")

	flags.BoolVarP(&ctx.noDryRun, "no-dry-run", "n", false, "Move originals to the trash instead of previewing")
	flags.IntVarP(&ctx.values.Workflow.Concurrency, "concurrency", "j", ctx.values.Workflow.Concurrency, "Number of files converted in parallel")
	rootCmd.Flags().BoolVarP(&ctx.quiet, "quiet", "q", false, "Do not mirror log lines to the console")

	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
