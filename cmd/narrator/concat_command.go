package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"narrator/internal/audiobook"
	"narrator/internal/concat"
)

func newConcatCommand(ctx *commandContext) *cobra.Command {
	var title string
	var pauseSeconds float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "concat --title T <file>...",
		Short: "Merge unit files from the output directory into {title}_cat.wav",
		Long: `Merge the named WAV files, in argument order, with a silent pause
between them. Names are resolved against paths.output_dir and must not
contain directories. Unreadable or mismatched inputs are skipped with a
warning.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return errors.New("--title is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pause := cfg.Concat.PauseSeconds
			if cmd.Flags().Changed("pause") {
				pause = pauseSeconds
			}
			rt, err := newRuntime(cmd.Context(), ctx, cfg, runtimeOptions{pauseSeconds: &pause})
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.pipeline.Concatenate(cmd.Context(), title, args, pause)
			if jsonOutput {
				payload := map[string]any{"result": result}
				if err != nil {
					payload["error"] = err.Error()
					payload["error_kind"] = audiobook.Kind(err)
				}
				if writeErr := writeJSON(cmd, payload); writeErr != nil {
					return writeErr
				}
				return err
			}
			if err != nil {
				return err
			}
			printConcatResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Chapter title used for the output name")
	cmd.Flags().Float64Var(&pauseSeconds, "pause", 0, "Override concat.pause_seconds")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printConcatResult(cmd *cobra.Command, result *concat.Result) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "Wrote %s (%s, %s, %d inputs, strategy %s)\n",
		result.Output, result.Format, formatSeconds(result.Duration()), len(result.Included), result.Strategy)
	for _, skip := range result.Skipped {
		fmt.Fprintf(out, "  %s skipped %s: %v\n", colorizeStatus(statusWarn, colorize), skip.Path, skip.Reason)
	}
}
