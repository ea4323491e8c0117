package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"flacify/internal/deps"
	"flacify/internal/logging"
	"flacify/internal/preflight"
	"flacify/internal/runlock"
	"flacify/internal/services"
	"flacify/internal/services/flac"
	"flacify/internal/workflow"
)

// runConvert performs one batch run over root. Setup failures are returned
// before any file is touched; per-file failures only show up in the summary.
func runConvert(cmd *cobra.Command, ctx *commandContext, root string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return services.Wrap(services.ErrValidation, "setup", "resolve root", root, err)
	}
	if err := preflight.FirstFailure(preflight.RunAll(cfg, absRoot)); err != nil {
		return err
	}
	statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		details := make([]string, 0, len(missing))
		for _, status := range missing {
			details = append(details, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
		return services.Wrap(services.ErrConfiguration, "setup", "check dependencies",
			"missing "+strings.Join(details, ", "), nil)
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	logger, closeLog, err := logging.NewFromConfig(cfg, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()
	for _, status := range statuses {
		logger.Debug("dependency resolved",
			logging.String("dependency", status.Name),
			logging.String("path", status.Path),
			logging.String("version", status.Version),
		)
	}

	codec := flac.NewCLI(
		flac.WithBinary(cfg.Codec.Binary),
		flac.WithCompressionLevel(cfg.Codec.CompressionLevel),
		flac.WithLogger(logger),
	)
	runner, err := workflow.NewRunner(cfg, codec, logger)
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(cmd.Context(), absRoot)
	out := cmd.OutOrStdout()
	for _, line := range summaryLines(summary, shouldColorize(out)) {
		fmt.Fprintln(out, line)
	}
	return runErr
}
