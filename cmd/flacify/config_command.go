package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the configuration a run with the same flags would use, after
environment fallbacks and defaults are applied. flacify never reads a
configuration file; this output is for inspection only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			data, err := cfg.MarshalTOML()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# dry_run=%s lock=%s\n", yesNo(cfg.Workflow.DryRun), cfg.LockPath())
			_, err = out.Write(data)
			return err
		},
	}
}
