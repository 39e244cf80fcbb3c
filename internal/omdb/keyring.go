package omdb

import (
	"slices"
	"strings"
	"sync"

	"reelmatch/internal/services"
)

// KeyRing hands out API keys round-robin. It is safe for concurrent use.
type KeyRing struct {
	mu       sync.Mutex
	keys     []string
	cursor   int
	failures map[string]int
}

// NewKeyRing trims and deduplicates keys. An empty pool is a configuration
// error.
func NewKeyRing(keys []string) (*KeyRing, error) {
	seen := make(map[string]struct{}, len(keys))
	cleaned := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, key)
	}
	if len(cleaned) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "omdb", "key ring", "at least one api key required", nil)
	}
	return &KeyRing{keys: cleaned, failures: make(map[string]int)}, nil
}

// Next returns the next key in rotation.
func (r *KeyRing) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.keys[r.cursor%len(r.keys)]
	r.cursor = (r.cursor + 1) % len(r.keys)
	return key
}

// Len reports the pool size.
func (r *KeyRing) Len() int {
	return len(r.keys)
}

// MarkFailed records a rejection for key.
func (r *KeyRing) MarkFailed(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[key]++
}

// KeyFailure reports how often a key was rejected.
type KeyFailure struct {
	Key      string `json:"key"`
	Failures int    `json:"failures"`
}

// FailedKeys lists masked keys with recorded failures, sorted by key.
func (r *KeyRing) FailedKeys() []KeyFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	failed := make([]string, 0, len(r.failures))
	for key, n := range r.failures {
		if n > 0 {
			failed = append(failed, key)
		}
	}
	slices.Sort(failed)
	out := make([]KeyFailure, 0, len(failed))
	for _, key := range failed {
		out = append(out, KeyFailure{Key: MaskKey(key), Failures: r.failures[key]})
	}
	return out
}

// MaskKey hides all but the last four characters of key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return "..." + key[len(key)-4:]
}
