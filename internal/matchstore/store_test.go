package matchstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"reelmatch/internal/matching"
	"reelmatch/internal/matchstore"
	"reelmatch/internal/ratings"
	"reelmatch/internal/testsupport"
)

func TestSaveAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	result := matching.MatchResult{
		Success:      true,
		ItemID:       "101",
		ExternalID:   949,
		IMDbID:       "tt0113277",
		MatchedTitle: "Heat",
		MatchedYear:  1995,
		MatchScore:   100,
		StrategyUsed: matching.StrategyOriginalTitle,
		Ratings:      []ratings.Entry{ratings.NewEntry(ratings.SourceIMDb, 8.3, 700000)},
	}
	if err := store.SaveResult(ctx, "run-1", result); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	entry, err := store.Get(ctx, "101")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry == nil || entry.RunID != "run-1" || entry.Result.ExternalID != 949 || entry.UpdatedAt.IsZero() {
		t.Fatalf("unexpected entry %#v", entry)
	}
	if len(entry.Result.Ratings) != 1 || entry.Result.Ratings[0].ScoreOverTen != 8.3 {
		t.Fatalf("ratings not persisted: %#v", entry.Result.Ratings)
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil entry for unknown id, got %#v, %v", missing, err)
	}
}

func TestSaveResultReplacesPreviousOutcome(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	failed := matching.Failure(matching.KindNoConfidentMatch, "no match met confidence threshold")
	failed.ItemID = "7"
	if err := store.SaveResult(ctx, "run-1", failed); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	if err := store.SaveResult(ctx, "run-2", matching.MatchResult{Success: true, ItemID: "7", MatchScore: 90}); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	entry, _ := store.Get(ctx, "7")
	if entry == nil || !entry.Result.Success || entry.RunID != "run-2" {
		t.Fatalf("expected replaced outcome, got %#v", entry)
	}
}

func TestSaveResultRequiresItemID(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if err := store.SaveResult(context.Background(), "", matching.MatchResult{Success: true}); err == nil {
		t.Fatal("expected error without item id")
	}
}

func TestListFiltersAndStats(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	outcomes := []matching.MatchResult{
		{Success: true, ItemID: "a", MatchScore: 95},
		{Success: true, ItemID: "b", MatchScore: 85},
		{ItemID: "c", ErrorKind: matching.KindNotFound},
		{ItemID: "d", ErrorKind: matching.KindNoConfidentMatch},
		{ItemID: "e", ErrorKind: matching.KindNoConfidentMatch},
	}
	for i, o := range outcomes {
		run := "run-1"
		if i >= 3 {
			run = "run-2"
		}
		if err := store.SaveResult(ctx, run, o); err != nil {
			t.Fatalf("SaveResult %s: %v", o.ItemID, err)
		}
	}

	all, err := store.List(ctx, matchstore.Filter{})
	if err != nil || len(all) != 5 || all[0].ItemID != "a" {
		t.Fatalf("unexpected list %d, %v", len(all), err)
	}
	matched := true
	if got, _ := store.List(ctx, matchstore.Filter{Success: &matched}); len(got) != 2 {
		t.Fatalf("expected 2 matched, got %d", len(got))
	}
	if got, _ := store.List(ctx, matchstore.Filter{ErrorKind: matching.KindNoConfidentMatch}); len(got) != 2 {
		t.Fatalf("expected 2 unconfident, got %d", len(got))
	}
	if got, _ := store.List(ctx, matchstore.Filter{RunID: "run-1", Limit: 2}); len(got) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(got))
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 5 || stats.Matched != 2 || stats.Failed != 3 {
		t.Fatalf("unexpected stats %#v", stats)
	}
	if stats.ByKind[matching.KindNoConfidentMatch] != 2 || stats.ByKind[matching.KindNotFound] != 1 {
		t.Fatalf("unexpected kinds %#v", stats.ByKind)
	}

	removed, err := store.Clear(ctx)
	if err != nil || removed != 5 {
		t.Fatalf("Clear returned %d, %v", removed, err)
	}
	if stats, _ := store.Stats(ctx); stats.Total != 0 {
		t.Fatalf("expected empty store, got %#v", stats)
	}
}

func TestRuns(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-1", 4); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", 3, 1); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	if err := store.FinishRun(ctx, "missing", 0, 0); err == nil {
		t.Fatal("expected error for unknown run")
	}
	runs, err := store.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Total != 4 || runs[0].Succeeded != 3 || runs[0].Failed != 1 || runs[0].FinishedAt.IsZero() {
		t.Fatalf("unexpected runs %#v", runs)
	}
}

func TestOpenLocksStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := matchstore.OpenPath(store.Path()); err == nil {
		t.Fatal("expected second open to fail while locked")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	reopened, err := matchstore.OpenPath(store.Path())
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	reopened.Close()
}

func TestOpenPathRejectsEmptyPath(t *testing.T) {
	if _, err := matchstore.OpenPath(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenDetectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.db")
	store, err := matchstore.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if err := store.ExecForTest(context.Background(), "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	store.Close()

	_, err = matchstore.OpenPath(path)
	if !errors.Is(err, matchstore.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
