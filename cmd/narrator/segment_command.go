package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "segment <file>",
		Short: "Preview how a document splits into chapters and paragraphs",
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
			if jsonOutput {
				return writeJSON(cmd, doc)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("%s (%s)", filepath.Base(doc.Path), doc.Encoding), colorize))
			if len(doc.Chapters) == 0 {
				fmt.Fprintln(out, "Document is empty")
				return nil
			}
			rows := make([][]string, 0, len(doc.Chapters))
			for i, chapter := range doc.Chapters {
				opening := ""
				if len(chapter.Paragraphs) > 1 {
					opening = chapter.Paragraphs[1]
				} else if len(chapter.Paragraphs) == 1 {
					opening = chapter.Paragraphs[0]
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					chapter.Title,
					strconv.Itoa(len(chapter.Paragraphs)),
					strconv.Itoa(utf8.RuneCountInString(chapter.Content)),
					truncate(opening, 40),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "Units", "Chars", "Opening"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
