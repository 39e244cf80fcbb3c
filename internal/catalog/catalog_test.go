package catalog

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelmatch/internal/matching"
	"reelmatch/internal/ratings"
	"reelmatch/internal/tmdb"
)

const sample = `{
  "meta": {"generated_at": "2024-01-01T00:00:00Z", "version": 1, "total_count": 3},
  "items": [
    {"mubi_id": 101, "title": "Omen", "original_title": "Augure", "year": 2023, "duration": 90,
     "directors": ["Baloji"], "genres": ["Drama"],
     "ratings": [{"source": "mubi", "score_over_10": 7.0, "voters": 100}]},
    {"mubi_id": "abc", "title": "Heat", "year": 1995, "imdb_id": "tt0113277", "tmdb_id": 949},
    {"title": "Twin Peaks", "media_type": "tv"}
  ]
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "films.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(c.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(c.Items))
	}
	if c.Items[0].ID != "101" || c.Items[1].ID != "abc" || c.Items[2].ID != "" {
		t.Fatalf("unexpected ids %q %q %q", c.Items[0].ID, c.Items[1].ID, c.Items[2].ID)
	}
	if c.Items[0].Key() != "101" || c.Items[2].Key() != "index_2" {
		t.Fatalf("unexpected keys %q %q", c.Items[0].Key(), c.Items[2].Key())
	}
	if !c.Items[0].NeedsMatch() || c.Items[1].NeedsMatch() {
		t.Fatal("unexpected NeedsMatch results")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(path, []byte("{"), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRecord(t *testing.T) {
	c, _ := Load(writeSample(t))
	rec := c.Items[0].Record()
	if rec.ItemID != "101" || rec.Title != "Omen" || rec.OriginalTitle != "Augure" || rec.Year != 2023 || rec.RuntimeMinutes != 90 {
		t.Fatalf("unexpected record %#v", rec)
	}
	if rec.MediaType != tmdb.MediaMovie {
		t.Fatalf("expected movie media type, got %q", rec.MediaType)
	}
	if c.Items[2].Record().MediaType != tmdb.MediaTV {
		t.Fatal("expected tv media type")
	}
}

func TestApplyFillsOnlyMissingIDs(t *testing.T) {
	item := Item{IMDbID: "tt0000001"}
	changed := item.Apply(matching.MatchResult{Success: true, IMDbID: "tt9999999", ExternalID: 42})
	if !changed || item.IMDbID != "tt0000001" || item.TMDBID != 42 {
		t.Fatalf("unexpected apply result %#v", item)
	}
	if item.Apply(matching.MatchResult{Success: false, ExternalID: 7}) {
		t.Fatal("failed result must not change the item")
	}
}

func TestMergeRatings(t *testing.T) {
	item := Item{Ratings: []Rating{{Source: "mubi", ScoreOverTen: 7, Voters: 10}, {Source: "imdb", ScoreOverTen: 5}}}
	item.MergeRatings([]ratings.Entry{{Source: ratings.SourceIMDb, ScoreOverTen: 8.1, Voters: 900}})
	if len(item.Ratings) != 2 || item.Ratings[1].ScoreOverTen != 8.1 || item.Ratings[0].Source != "mubi" {
		t.Fatalf("unexpected ratings %#v", item.Ratings)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := writeSample(t)
	c, _ := Load(path)
	c.Items[0].Apply(matching.MatchResult{Success: true, IMDbID: "tt1", ExternalID: 5})
	if err := c.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"mubi_id": 101`) || !strings.Contains(string(data), `"mubi_id": "abc"`) {
		t.Fatalf("ids not preserved:\n%s", data)
	}
	if strings.Contains(string(data), "index_2") {
		t.Fatalf("positional key leaked into the file:\n%s", data)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Items[0].TMDBID != 5 || again.Meta.TotalCount != 3 {
		t.Fatalf("unexpected reloaded catalogue %#v", again.Items[0])
	}
}

func TestSaveKeepsOriginalFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "films.json")
	original := `{
  "meta": {"generated_at": "2024-01-01T00:00:00Z", "version": 1, "version_label": "1.0", "total_count": 1},
  "bayes_stats": {"global_mean_C": 7.1, "mubi_confidence_m": 250},
  "items": [
    {"mubi_id": 1001, "title": "Augure", "year": 2023, "countries": ["BE"],
     "image": "https://example.com/still.jpg", "popularity": 12,
     "ratings": [{"source": "mubi", "score_over_10": 7.4, "voters": 150}]}
  ],
  "source": "scraper"
}`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("write catalogue: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Items[0].Key() != "1001" {
		t.Fatalf("expected key 1001, got %q", c.Items[0].Key())
	}
	if c.BayesStats == nil || c.BayesStats.GlobalMean != 7.1 || c.BayesStats.MinVotes != 250 {
		t.Fatalf("unexpected bayes stats %#v", c.BayesStats)
	}
	if primary, ok := ratings.Find(c.Items[0].Entries(), ratings.SourcePrimary); !ok || primary.Voters != 150 {
		t.Fatalf("expected mubi rating as primary source, got %#v", c.Items[0].Entries())
	}

	used := c.ApplyBayesian(ratings.DefaultGlobalMean)
	if used.MinVotes != 250 {
		t.Fatalf("expected stored m, got %#v", used)
	}
	// W = 150/400*7.4 + 250/400*7.1 = 7.2125
	if composite, ok := ratings.Find(c.Items[0].Entries(), ratings.SourceBayesian); !ok || math.Abs(composite.ScoreOverTen-7.2) > 1e-9 {
		t.Fatalf("expected shrunk composite 7.2, got %#v", composite)
	}
	if err := c.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	data, _ := os.ReadFile(path)
	var saved map[string]any
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("decode saved catalogue: %v", err)
	}
	if saved["source"] != "scraper" {
		t.Fatalf("top-level extra key dropped:\n%s", data)
	}
	meta := saved["meta"].(map[string]any)
	if meta["version_label"] != "1.0" {
		t.Fatalf("meta extra key dropped:\n%s", data)
	}
	stats := saved["bayes_stats"].(map[string]any)
	if _, ok := stats["global_mean_C"]; !ok {
		t.Fatalf("bayes_stats keys renamed:\n%s", data)
	}
	if _, ok := stats["mubi_confidence_m"]; !ok {
		t.Fatalf("bayes_stats keys renamed:\n%s", data)
	}
	item := saved["items"].([]any)[0].(map[string]any)
	if item["mubi_id"] != float64(1001) {
		t.Fatalf("mubi_id not preserved:\n%s", data)
	}
	if _, ok := item["id"]; ok {
		t.Fatalf("unexpected id key:\n%s", data)
	}
	if item["image"] != "https://example.com/still.jpg" || item["popularity"] != float64(12) {
		t.Fatalf("item extra keys dropped:\n%s", data)
	}
}

func TestApplyBayesianColdStart(t *testing.T) {
	c := &Catalog{Items: []Item{
		{ID: "1", Ratings: []Rating{{Source: "mubi", ScoreOverTen: 7, Voters: 100}, {Source: "imdb", ScoreOverTen: 8, Voters: 300}}},
		{ID: "2", Ratings: []Rating{{Source: "metacritic", ScoreOverTen: 6}}},
	}}
	used := c.ApplyBayesian(ratings.DefaultGlobalMean)
	if used.GlobalMean != ratings.DefaultGlobalMean || used.MinVotes != 100 {
		t.Fatalf("unexpected cold start constants %#v", used)
	}
	composite, ok := ratings.Find(c.Items[0].Entries(), ratings.SourceBayesian)
	if !ok || math.Abs(composite.ScoreOverTen-7.6) > 1e-9 {
		t.Fatalf("unexpected composite %#v", composite)
	}
	if _, ok := ratings.Find(c.Items[1].Entries(), ratings.SourceBayesian); ok {
		t.Fatal("item without votes must not get a composite")
	}
	if c.BayesStats == nil || c.BayesStats.GlobalMean != 7.75 {
		t.Fatalf("unexpected recalibration %#v", c.BayesStats)
	}

	// Warm start reuses the stored constants.
	c.BayesStats = &ratings.Constants{GlobalMean: 5, MinVotes: 0}
	if warm := c.ApplyBayesian(ratings.DefaultGlobalMean); warm.GlobalMean != 5 {
		t.Fatalf("expected stored constants, got %#v", warm)
	}
}
