package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"narrator/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent synthesis and concatenation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return errors.New("run journal is disabled ([journal] enabled = false)")
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				return showRun(cmd, store, runID, jsonOutput)
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if runs == nil {
					runs = []journal.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					string(run.Kind),
					run.Chapter,
					run.Status,
					strconv.Itoa(run.Saved),
					strconv.Itoa(run.Failed),
					run.Duration().Round(time.Second).String(),
					run.ID[:min(8, len(run.ID))],
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Kind", "Chapter", "Status", "Saved", "Failed", "Took", "Run"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show unit outcomes for one run id")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func showRun(cmd *cobra.Command, store *journal.Store, runID string, jsonOutput bool) error {
	run, err := store.Get(cmd.Context(), runID)
	if err != nil {
		return err
	}
	units, err := store.Units(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if jsonOutput {
		if units == nil {
			units = []journal.UnitRecord{}
		}
		return writeJSON(cmd, map[string]any{"run": run, "units": units})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("%s %s (%s)", run.Kind, run.Chapter, run.Status), shouldColorize(out)))
	if run.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", run.Error)
	}
	rows := make([][]string, 0, len(units))
	for _, unit := range units {
		rows = append(rows, []string{strconv.Itoa(unit.Index), unit.Filename, unit.Status, unit.Error})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "File", "Status", "Error"}, rows, []columnAlignment{alignRight}))
	return nil
}
