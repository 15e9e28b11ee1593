package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"narrator/internal/audiobook"
	"narrator/internal/synth"
)

type synthesisFlags struct {
	chapters     []int
	skipExisting bool
	prompt       string
	voiceA       string
	voiceB       string
	jsonOutput   bool
}

func (f *synthesisFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&f.chapters, "chapter", nil, "Chapter positions to process (1-based, repeatable; default all)")
	cmd.Flags().BoolVar(&f.skipExisting, "skip-existing", true, "Reuse unit files already present in the output directory")
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "Override synthesis.prompt")
	cmd.Flags().StringVar(&f.voiceA, "voice-a", "", "Override synthesis.voice_a")
	cmd.Flags().StringVar(&f.voiceB, "voice-b", "", "Override synthesis.voice_b")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output as JSON")
}

func (f *synthesisFlags) skipExistingOverride(cmd *cobra.Command) *bool {
	if !cmd.Flags().Changed("skip-existing") {
		return nil
	}
	value := f.skipExisting
	return &value
}

func (f *synthesisFlags) request(rt *runtime) synth.RequestOptions {
	req := synth.RequestOptions{
		Prompt: rt.cfg.Synthesis.Prompt,
		VoiceA: rt.cfg.Synthesis.VoiceA,
		VoiceB: rt.cfg.Synthesis.VoiceB,
	}
	if value := strings.TrimSpace(f.prompt); value != "" {
		req.Prompt = value
	}
	if value := strings.TrimSpace(f.voiceA); value != "" {
		req.VoiceA = value
	}
	if value := strings.TrimSpace(f.voiceB); value != "" {
		req.VoiceB = value
	}
	return req
}

func newSynthesizeCommand(ctx *commandContext) *cobra.Command {
	flags := &synthesisFlags{}

	cmd := &cobra.Command{
		Use:   "synthesize <file>",
		Short: "Synthesize chapter paragraphs into numbered unit files",
		Long: `Synthesize every paragraph of the selected chapters into
{title}_{NNN}.wav files in the output directory.

Units already on disk are reused unless --skip-existing=false. A failed
paragraph is reported and skipped; rerunning retries only the missing units.
Ctrl-C stops between units and keeps everything written so far.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocument(cmd, ctx, flags, args[0], nil, false)
		},
	}

	flags.register(cmd)
	return cmd
}

func runDocument(cmd *cobra.Command, ctx *commandContext, flags *synthesisFlags, path string, pause *float64, merge bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	doc, err := loadDocument(cfg, path)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cmd.Context(), ctx, cfg, runtimeOptions{
		withEngine:   true,
		pauseSeconds: pause,
		skipExisting: flags.skipExistingOverride(cmd),
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	run := rt.pipeline.Synthesize
	if merge {
		run = rt.pipeline.Build
	}
	outcomes, runErr := run(cmd.Context(), doc, flags.chapters, flags.request(rt))

	if flags.jsonOutput {
		payload := map[string]any{
			"document": doc.Path,
			"chapters": outcomes,
		}
		if runErr != nil {
			payload["error"] = runErr.Error()
			payload["error_kind"] = audiobook.Kind(runErr)
		}
		if err := writeJSON(cmd, payload); err != nil {
			return err
		}
		return runErr
	}

	printOutcomes(cmd.OutOrStdout(), outcomes)
	return runErr
}

func printOutcomes(out io.Writer, outcomes []audiobook.ChapterOutcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "No chapters processed")
		return
	}
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		saved, failed, skipped := "0", "0", "0"
		if outcome.Report != nil {
			saved = strconv.Itoa(len(outcome.Report.Saved))
			failed = strconv.Itoa(len(outcome.Report.FailedIndices))
			skipped = strconv.Itoa(len(outcome.Report.SkippedIndices))
		}
		kind := statusOK
		detail := ""
		switch {
		case outcome.Failed():
			kind = statusError
			detail = fmt.Sprintf("%s: %v", audiobook.Kind(outcome.Err), outcome.Err)
		case outcome.Report != nil && len(outcome.Report.FailedIndices) > 0:
			kind = statusWarn
			detail = "failed units: " + joinInts(outcome.Report.FailedIndices)
		}
		if outcome.Merge != nil {
			merged := fmt.Sprintf("%s (%s)", outcome.Merge.Output, formatSeconds(outcome.Merge.Duration()))
			if detail == "" {
				detail = merged
			} else {
				detail += "; " + merged
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(outcome.Position),
			outcome.Title,
			colorizeStatus(kind, colorize),
			saved,
			failed,
			skipped,
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Chapter", "Status", "Saved", "Failed", "Skipped", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ", ")
}
