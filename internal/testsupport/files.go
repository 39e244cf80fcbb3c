package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteCatalog writes a catalogue file holding the given items JSON array
// and returns its path.
func WriteCatalog(t testing.TB, dir, itemsJSON string) string {
	t.Helper()

	path := filepath.Join(dir, "films.json")
	WriteFile(t, path, `{"meta": {"version": 1}, "items": `+itemsJSON+`}`)
	return path
}
