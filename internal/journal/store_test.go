package journal_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"narrator/internal/journal"
	"narrator/internal/testsupport"
)

func TestRecordAndRecent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := &journal.Run{
		Kind:       journal.KindSynthesis,
		Chapter:    "第一章",
		Engine:     "gemini",
		Status:     journal.StatusPartial,
		Saved:      2,
		Failed:     1,
		StartedAt:  base,
		FinishedAt: base.Add(30 * time.Second),
	}
	units := []journal.UnitRecord{
		{Index: 2, Filename: "第一章_002.wav", Status: "failed", Error: "quota"},
		{Index: 1, Filename: "第一章_001.wav", Status: "completed"},
	}
	if err := store.Record(ctx, older, units); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if older.ID == "" {
		t.Fatal("expected generated run id")
	}

	newer := &journal.Run{
		Kind:       journal.KindConcat,
		Chapter:    "第一章",
		Status:     journal.StatusSucceeded,
		Output:     "第一章_cat.wav",
		StartedAt:  base.Add(time.Minute),
		FinishedAt: base.Add(time.Minute),
	}
	if err := store.Record(ctx, newer, nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != newer.ID || runs[1].ID != older.ID {
		t.Fatalf("unexpected run order %+v", runs)
	}
	if runs[1].Duration() != 30*time.Second {
		t.Fatalf("duration = %v", runs[1].Duration())
	}
	if runs[1].Kind != journal.KindSynthesis || runs[1].Failed != 1 {
		t.Fatalf("unexpected run %+v", runs[1])
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("Recent(1) = %v, %v", limited, err)
	}

	gotUnits, err := store.Units(ctx, older.ID)
	if err != nil {
		t.Fatalf("Units failed: %v", err)
	}
	if len(gotUnits) != 2 || gotUnits[0].Index != 1 || gotUnits[1].Error != "quota" {
		t.Fatalf("unexpected units %+v", gotUnits)
	}
}

func TestGetMissingRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestDuplicateRunIDRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	run := &journal.Run{ID: "fixed", Kind: journal.KindConcat, Status: journal.StatusSucceeded}
	if err := store.Record(ctx, run, nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, &journal.Run{ID: "fixed", Kind: journal.KindConcat, Status: journal.StatusFailed}, nil); err == nil {
		t.Fatal("expected duplicate id error")
	}
	got, err := store.Get(ctx, "fixed")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != journal.StatusSucceeded {
		t.Fatalf("status = %q", got.Status)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "narrator.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Record(context.Background(), &journal.Run{Kind: journal.KindConcat, Status: journal.StatusSucceeded}, nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	store.Close()

	reopened, err := journal.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.Recent(context.Background(), 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("Recent after reopen = %v, %v", runs, err)
	}
}

func TestStoresOnSamePathRecordConcurrently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrator.db")
	stores := make([]*journal.Store, 2)
	for i := range stores {
		store, err := journal.Open(path)
		if err != nil {
			t.Fatalf("Open %d failed: %v", i, err)
		}
		defer store.Close()
		stores[i] = store
	}

	const perStore = 5
	var wg sync.WaitGroup
	errs := make(chan error, len(stores)*perStore)
	for _, store := range stores {
		wg.Add(1)
		go func(store *journal.Store) {
			defer wg.Done()
			for i := 0; i < perStore; i++ {
				run := &journal.Run{Kind: journal.KindSynthesis, Status: journal.StatusSucceeded}
				units := []journal.UnitRecord{{Index: 1, Filename: "a_001.wav", Status: "completed"}}
				errs <- store.Record(context.Background(), run, units)
			}
		}(store)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := stores[0].Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != len(stores)*perStore {
		t.Fatalf("recorded %d runs, want %d", len(runs), len(stores)*perStore)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrator.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := journal.Open(path); !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
