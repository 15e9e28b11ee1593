package audiobook_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"narrator/internal/audiobook"
	"narrator/internal/concat"
	"narrator/internal/journal"
	"narrator/internal/segment"
	"narrator/internal/synth"
	"narrator/internal/testsupport"
	"narrator/internal/tts"
	"narrator/internal/wav"
)

const sampleDocument = "序言内容\n\n第一章 开始\n\n段一\n\n段二\n\n第二章 继续\n\n段三\n"

type harness struct {
	outputDir string
	engine    *testsupport.FakeEngine
	store     *journal.Store
	pipeline  *audiobook.Pipeline
	doc       *audiobook.Document
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	source := filepath.Join(t.TempDir(), "book.txt")
	testsupport.WriteFile(t, source, []byte(sampleDocument))

	segmenter, err := cfg.Segmenter()
	if err != nil {
		t.Fatalf("Segmenter: %v", err)
	}
	doc, err := audiobook.LoadDocument(source, segmenter)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}

	engine := testsupport.NewFakeEngine("fake")
	orch, err := synth.New(synth.Options{OutputDir: cfg.Paths.OutputDir, SkipExisting: true}, engine, nil)
	if err != nil {
		t.Fatalf("synth.New: %v", err)
	}
	store := testsupport.MustOpenJournal(t, cfg)
	pipeline, err := audiobook.New(
		audiobook.Options{OutputDir: cfg.Paths.OutputDir, PauseSeconds: 0.5, Engine: engine.Name()},
		audiobook.Deps{Synthesizer: orch, Concatenator: concat.NewNative(nil), Recorder: store},
	)
	if err != nil {
		t.Fatalf("audiobook.New: %v", err)
	}
	return &harness{outputDir: cfg.Paths.OutputDir, engine: engine, store: store, pipeline: pipeline, doc: doc}
}

func TestLoadDocumentAndSelect(t *testing.T) {
	h := newHarness(t)

	if h.doc.Encoding != "utf-8" {
		t.Fatalf("encoding = %q", h.doc.Encoding)
	}
	if len(h.doc.Chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(h.doc.Chapters))
	}

	selected, err := h.doc.Select([]int{3, 1, 3})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(selected) != 2 || selected[0].Position != 1 || selected[1].Position != 3 {
		t.Fatalf("unexpected selection %+v", selected)
	}
	if selected[1].Chapter.Title != "第二章 继续" {
		t.Fatalf("unexpected title %q", selected[1].Chapter.Title)
	}

	all, err := h.doc.Select(nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("Select(nil) = %d, %v", len(all), err)
	}

	if _, err := h.doc.Select([]int{4}); !errors.Is(err, audiobook.ErrChapterOutOfRange) {
		t.Fatalf("expected ErrChapterOutOfRange, got %v", err)
	}
	if _, err := h.doc.Select([]int{0}); !errors.Is(err, audiobook.ErrChapterOutOfRange) {
		t.Fatalf("expected ErrChapterOutOfRange for 0, got %v", err)
	}
}

func TestBuildMergesChapter(t *testing.T) {
	h := newHarness(t)

	outcomes, err := h.pipeline.Build(context.Background(), h.doc, []int{2}, synth.RequestOptions{Prompt: "p", VoiceA: "a", VoiceB: "b"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	outcome := outcomes[0]
	if outcome.Merge == nil || len(outcome.Merge.Included) != 3 {
		t.Fatalf("unexpected merge %+v", outcome.Merge)
	}
	want := filepath.Join(h.outputDir, "第一章 开始_cat.wav")
	if outcome.Merge.Output != want {
		t.Fatalf("output = %q, want %q", outcome.Merge.Output, want)
	}

	buf := testsupport.ReadWAV(t, want)
	pause := wav.SilenceBytes(buf.Format, 0.5)
	if len(buf.Data) != 3*4800+2*pause {
		t.Fatalf("merged data = %d bytes", len(buf.Data))
	}

	runs, err := h.store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	kinds := map[journal.Kind]journal.Run{}
	for _, run := range runs {
		kinds[run.Kind] = run
	}
	if kinds[journal.KindSynthesis].Saved != 3 || kinds[journal.KindSynthesis].Engine != "fake" {
		t.Fatalf("unexpected synthesis run %+v", kinds[journal.KindSynthesis])
	}
	if kinds[journal.KindConcat].Output != "第一章 开始_cat.wav" {
		t.Fatalf("unexpected concat run %+v", kinds[journal.KindConcat])
	}
}

func TestBuildMergesSurvivorsOfPartialChapter(t *testing.T) {
	h := newHarness(t)
	h.engine.Fail("段一", errors.New("quota exceeded"))

	outcomes, err := h.pipeline.Build(context.Background(), h.doc, []int{2}, synth.RequestOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := outcomes[0].Merge.Included; len(got) != 2 {
		t.Fatalf("expected 2 merged units, got %v", got)
	}

	runs, err := h.store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	for _, run := range runs {
		if run.Kind != journal.KindSynthesis {
			continue
		}
		if run.Status != journal.StatusPartial || run.Failed != 1 {
			t.Fatalf("unexpected synthesis run %+v", run)
		}
		units, err := h.store.Units(context.Background(), run.ID)
		if err != nil {
			t.Fatalf("Units: %v", err)
		}
		if len(units) != 3 || units[1].Status != string(synth.StatusFailed) || !strings.Contains(units[1].Error, "quota") {
			t.Fatalf("unexpected units %+v", units)
		}
	}
}

func TestBuildContinuesAfterFailedChapter(t *testing.T) {
	h := newHarness(t)
	h.engine.Fail("前言", errors.New("boom"))
	h.engine.Fail("序言内容", errors.New("boom"))

	outcomes, err := h.pipeline.Build(context.Background(), h.doc, nil, synth.RequestOptions{})
	if !errors.Is(err, audiobook.ErrChaptersFailed) {
		t.Fatalf("expected ErrChaptersFailed, got %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if got := audiobook.Kind(outcomes[0].Err); got != "no_units_generated" {
		t.Fatalf("kind = %q", got)
	}
	for _, outcome := range outcomes[1:] {
		if outcome.Failed() || outcome.Merge == nil {
			t.Fatalf("chapter %d should have merged: %+v", outcome.Position, outcome)
		}
	}
}

func TestSynthesizeDoesNotMerge(t *testing.T) {
	h := newHarness(t)

	outcomes, err := h.pipeline.Synthesize(context.Background(), h.doc, []int{3}, synth.RequestOptions{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if outcomes[0].Merge != nil {
		t.Fatal("synthesize should not merge")
	}
	if _, err := os.Stat(filepath.Join(h.outputDir, "第二章 继续_cat.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("merged file should not exist, stat err %v", err)
	}
	names := audiobook.UnitNames(h.outputDir, h.doc.Chapters[2])
	if len(names) != 2 || names[0] != "第二章 继续_001.wav" {
		t.Fatalf("unexpected unit names %v", names)
	}
}

func TestBuildStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.engine.OnCall = func(_ context.Context, req tts.Request) {
		if req.Text == "段一" {
			cancel()
		}
	}

	outcomes, err := h.pipeline.Build(ctx, h.doc, nil, synth.RequestOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if _, err := os.Stat(filepath.Join(h.outputDir, "第一章 开始_001.wav")); err != nil {
		t.Fatalf("completed unit should be kept: %v", err)
	}

	runs, err := h.store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	interrupted := 0
	for _, run := range runs {
		if run.Status == journal.StatusInterrupted {
			interrupted++
		}
	}
	if interrupted != 1 {
		t.Fatalf("expected 1 interrupted run, got %d", interrupted)
	}
}

func TestConcatenateChapterRejectsPaths(t *testing.T) {
	dir := t.TempDir()
	_, err := audiobook.ConcatenateChapter(context.Background(), concat.NewNative(nil), dir, "t", []string{"../escape.wav"}, 0)
	if !errors.Is(err, audiobook.ErrInvalidFileName) {
		t.Fatalf("expected ErrInvalidFileName, got %v", err)
	}
}

func TestConcatenateChapterUsesMergedName(t *testing.T) {
	dir := t.TempDir()
	format := testsupport.MonoFormat()
	testsupport.WriteWAV(t, dir, "a.wav", format, testsupport.PCM(100, 1))
	testsupport.WriteWAV(t, dir, "b.wav", format, testsupport.PCM(100, 2))

	result, err := audiobook.ConcatenateChapter(context.Background(), concat.NewNative(nil), dir, "Part: One", []string{"a.wav", "b.wav"}, 0)
	if err != nil {
		t.Fatalf("ConcatenateChapter: %v", err)
	}
	if filepath.Base(result.Output) != "Part_ One_cat.wav" {
		t.Fatalf("output = %q", result.Output)
	}
	if result.DataSize != 200 {
		t.Fatalf("data size = %d", result.DataSize)
	}
}

func TestNewRejectsNegativePause(t *testing.T) {
	_, err := audiobook.New(audiobook.Options{OutputDir: t.TempDir(), PauseSeconds: -1}, audiobook.Deps{Concatenator: concat.NewNative(nil)})
	if !errors.Is(err, concat.ErrInvalidPause) {
		t.Fatalf("expected ErrInvalidPause, got %v", err)
	}
}

func TestOutcomeJSONIncludesKind(t *testing.T) {
	outcome := audiobook.ChapterOutcome{Position: 2, Title: "x", Err: synth.ErrOutputLocked}
	data, err := json.Marshal(outcome)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"error_kind":"output_locked"`) {
		t.Fatalf("unexpected json %s", data)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("other"), "internal"},
		{wav.ErrMissingFormatChunk, "missing_format_chunk"},
		{wrap(wav.ErrMalformedContainer), "malformed_container"},
		{wrap(concat.ErrFormatMismatch), "format_mismatch"},
		{concat.ErrNoValidInputs, "no_valid_inputs"},
		{wrap(synth.ErrSynthesisFailure), "synthesis_failure"},
		{errors.Join(synth.ErrSynthesisFailure, tts.ErrNoAudio), "no_audio"},
		{wrap(context.Canceled), "interrupted"},
		{os.ErrNotExist, "not_found"},
		{segmentErr(), "internal"},
	}
	for _, tt := range tests {
		if got := audiobook.Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func wrap(err error) error {
	return errors.Join(errors.New("context"), err)
}

func segmentErr() error {
	_, err := segment.NewMarkerPolicy("([", "", "")
	return err
}
