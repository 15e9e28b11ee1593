package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"narrator/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, credentials and settings before a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			failed := preflight.Failed(results)

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				source := ctx.configPath
				if !ctx.configSeen {
					source += " (not found, defaults used)"
				}
				fmt.Fprintln(out, renderSectionHeader("Config "+source, colorize))
				rows := make([][]string, 0, len(results))
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					rows = append(rows, []string{result.Name, colorizeStatus(kind, colorize), result.Detail})
				}
				fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			}

			if len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, result := range failed {
					names = append(names, result.Name)
				}
				return fmt.Errorf("%d check(s) failed: %s", len(failed), strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
