package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flacify/internal/deps"
	"flacify/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Report whether the FLAC encoder is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, dependencyTable(statuses))

			missing := deps.MissingRequired(statuses)
			if len(missing) == 0 {
				fmt.Fprintln(out, renderStatusLine("Dependencies", statusOK, "all required binaries found", shouldColorize(out)))
				return nil
			}
			names := make([]string, 0, len(missing))
			for _, status := range missing {
				names = append(names, status.Name)
			}
			return fmt.Errorf("missing required dependencies: %s", strings.Join(names, ", "))
		},
	}
}

func dependencyTable(statuses []deps.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		state := "ready"
		detail := status.Path
		if status.Version != "" {
			detail += " (" + status.Version + ")"
		}
		if !status.Available {
			state = "missing"
			if status.Optional {
				state = "optional"
			}
			detail = status.Detail
		}
		rows = append(rows, []string{status.Name, status.Command, state, detail, status.Description})
	}
	return renderTable(
		"External binaries",
		[]string{"Dependency", "Command", "Status", "Path", "Purpose"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}
