package matchstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const entryColumns = "item_id, run_id, result_json, updated_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		itemID     string
		runID      sql.NullString
		payload    string
		updatedRaw string
	)
	if err := scanner.Scan(&itemID, &runID, &payload, &updatedRaw); err != nil {
		return nil, err
	}
	entry := &Entry{ItemID: itemID, RunID: runID.String, UpdatedAt: parseTime(updatedRaw)}
	if err := json.Unmarshal([]byte(payload), &entry.Result); err != nil {
		return nil, fmt.Errorf("decode stored result %s: %w", itemID, err)
	}
	return entry, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
