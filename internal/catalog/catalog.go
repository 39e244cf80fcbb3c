// Package catalog reads and writes the primary catalogue file: a JSON
// document with a meta block and an items array.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"reelmatch/internal/fileutil"
	"reelmatch/internal/matching"
	"reelmatch/internal/ratings"
	"reelmatch/internal/services"
	"reelmatch/internal/tmdb"
)

// Catalog is the whole catalogue document.
type Catalog struct {
	Meta       Meta               `json:"meta"`
	Items      []Item             `json:"items"`
	BayesStats *ratings.Constants `json:"bayes_stats,omitempty"`

	// Extra holds top-level keys this package does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

// Meta describes how the catalogue was produced.
type Meta struct {
	GeneratedAt string `json:"generated_at,omitempty"`
	Version     int    `json:"version,omitempty"`
	TotalCount  int    `json:"total_count,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Rating is a stored rating entry.
type Rating struct {
	Source       string  `json:"source"`
	ScoreOverTen float64 `json:"score_over_10"`
	Voters       int64   `json:"voters"`
}

// Item is one catalogue entry, keyed by the source catalogue's mubi_id.
type Item struct {
	ID            ItemID   `json:"mubi_id,omitempty"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title,omitempty"`
	Year          int      `json:"year,omitempty"`
	Duration      int      `json:"duration,omitempty"`
	Directors     []string `json:"directors,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Countries     []string `json:"countries,omitempty"`
	MediaType     string   `json:"media_type,omitempty"`
	IMDbID        string   `json:"imdb_id,omitempty"`
	TMDBID        int64    `json:"tmdb_id,omitempty"`
	Ratings       []Rating `json:"ratings,omitempty"`

	// Extra holds item keys this package does not model.
	Extra map[string]json.RawMessage `json:"-"`

	// fallbackKey identifies items without an id for the current run only.
	fallbackKey string
}

// ItemID accepts either a JSON string or number.
type ItemID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Load reads a catalogue file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "load", "read catalogue", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "load", "decode catalogue", err)
	}
	for i := range c.Items {
		if c.Items[i].ID == "" {
			c.Items[i].fallbackKey = "index_" + strconv.Itoa(i)
		}
	}
	return &c, nil
}

// Save writes the catalogue atomically with two-space indentation.
func (c *Catalog) Save(path string) error {
	c.Meta.TotalCount = len(c.Items)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalogue: %w", err)
	}
	if err := fileutil.WriteAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save catalogue: %w", err)
	}
	return nil
}

// Backup copies the catalogue file to path+".bak" before it is rewritten.
func Backup(path string) (string, error) {
	return fileutil.Backup(path)
}

// Key identifies the item in results and the match store. Items without an
// id get a positional key that is never written to the catalogue.
func (i Item) Key() string {
	if i.ID != "" {
		return string(i.ID)
	}
	return i.fallbackKey
}

// NeedsMatch reports whether the item lacks either external id.
func (i Item) NeedsMatch() bool {
	return strings.TrimSpace(i.IMDbID) == "" || i.TMDBID == 0
}

// Record converts the item to a lookup input.
func (i Item) Record() matching.PrimaryRecord {
	return matching.PrimaryRecord{
		ItemID:         i.Key(),
		Title:          i.Title,
		OriginalTitle:  i.OriginalTitle,
		Year:           i.Year,
		Directors:      append([]string(nil), i.Directors...),
		RuntimeMinutes: i.Duration,
		Genres:         append([]string(nil), i.Genres...),
		MediaType:      tmdb.ParseMediaType(i.MediaType),
		ExternalIDHint: i.IMDbID,
	}
}

// Apply fills missing ids from a successful result. It reports whether the
// item changed.
func (i *Item) Apply(result matching.MatchResult) bool {
	if !result.Success {
		return false
	}
	changed := false
	if i.IMDbID == "" && result.IMDbID != "" {
		i.IMDbID = result.IMDbID
		changed = true
	}
	if i.TMDBID == 0 && result.ExternalID != 0 {
		i.TMDBID = result.ExternalID
		changed = true
	}
	return changed
}

// Entries converts stored ratings.
func (i Item) Entries() []ratings.Entry {
	out := make([]ratings.Entry, 0, len(i.Ratings))
	for _, r := range i.Ratings {
		out = append(out, ratings.NewEntry(ratings.Source(r.Source), r.ScoreOverTen, r.Voters))
	}
	return out
}

// MergeRatings replaces stored entries from the sources present in entries
// and keeps the rest.
func (i *Item) MergeRatings(entries []ratings.Entry) {
	replaced := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		replaced[string(e.Source)] = struct{}{}
	}
	kept := make([]Rating, 0, len(i.Ratings)+len(entries))
	for _, r := range i.Ratings {
		if _, ok := replaced[r.Source]; !ok {
			kept = append(kept, r)
		}
	}
	for _, e := range entries {
		kept = append(kept, Rating{Source: string(e.Source), ScoreOverTen: e.ScoreOverTen, Voters: e.Voters})
	}
	i.Ratings = kept
}

// SetRatings overwrites stored ratings.
func (i *Item) SetRatings(entries []ratings.Entry) {
	i.Ratings = i.Ratings[:0]
	for _, e := range entries {
		i.Ratings = append(i.Ratings, Rating{Source: string(e.Source), ScoreOverTen: e.ScoreOverTen, Voters: e.Voters})
	}
}

// ApplyBayesian recomputes the composite rating of every item with the
// stored constants (or the defaults when none are stored) and then
// recalibrates the constants for the next run.
func (c *Catalog) ApplyBayesian(defaultMean float64) ratings.Constants {
	all := make([][]ratings.Entry, len(c.Items))
	for i := range c.Items {
		all[i] = c.Items[i].Entries()
	}
	constants := ratings.Calibrate(all, defaultMean)
	constants.GlobalMean = defaultMean
	if c.BayesStats != nil {
		constants = *c.BayesStats
	}
	for i := range c.Items {
		c.Items[i].SetRatings(ratings.Apply(all[i], constants))
		all[i] = c.Items[i].Entries()
	}
	next := ratings.Calibrate(all, defaultMean)
	next.GlobalMean = round2(next.GlobalMean)
	next.MinVotes = round2(next.MinVotes)
	c.BayesStats = &next
	return constants
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
