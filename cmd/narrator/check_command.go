package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"narrator/internal/synth"
	"narrator/internal/textutil"
)

type unitPresence struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Present  bool   `json:"present"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var chapterFlag int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Show which units of a chapter already exist on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, err := loadDocument(cfg, args[0])
			if err != nil {
				return err
			}
			selected, err := doc.Select([]int{chapterFlag})
			if err != nil {
				return err
			}
			chapter := selected[0].Chapter
			safeTitle := textutil.SafeTitle(chapter.Title)
			existing := synth.CheckExisting(cfg.Paths.OutputDir, safeTitle, len(chapter.Paragraphs))

			units := make([]unitPresence, 0, len(chapter.Paragraphs))
			for i := range chapter.Paragraphs {
				index := i + 1
				_, present := existing[index]
				units = append(units, unitPresence{
					Index:    index,
					Filename: textutil.UnitFileName(safeTitle, index),
					Present:  present,
				})
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"chapter":  chapter.Title,
					"existing": len(existing),
					"total":    len(units),
					"units":    units,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSectionHeader(chapter.Title, shouldColorize(out)))
			rows := make([][]string, 0, len(units))
			for _, unit := range units {
				rows = append(rows, []string{strconv.Itoa(unit.Index), unit.Filename, yesNo(unit.Present)})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "File", "Present"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
			fmt.Fprintf(out, "%d of %d units present in %s\n", len(existing), len(units), filepath.Clean(cfg.Paths.OutputDir))
			return nil
		},
	}

	cmd.Flags().IntVar(&chapterFlag, "chapter", 1, "Chapter position (1-based)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
