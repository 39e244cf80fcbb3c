package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelmatch/internal/config"
	"reelmatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	tmdb       *testsupport.FakeTMDB
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	tmdbServer := testsupport.NewTMDBServer(t,
		testsupport.FakeTitle{
			ID: 949, Title: "Heat", OriginalTitle: "Heat", Date: "1995-12-15",
			Directors: []string{"Michael Mann"}, Runtime: 170, IMDbID: "tt0113277",
			VoteAverage: 7.9, VoteCount: 7000,
		},
		testsupport.FakeTitle{
			ID: 1920, TV: true, Title: "Twin Peaks", OriginalTitle: "Twin Peaks", Date: "1990-04-08",
			Directors: []string{"David Lynch"}, Runtime: 47, IMDbID: "tt0098936",
		},
	)
	omdbServer := testsupport.NewOMDbServer(t, map[string]testsupport.FakeRatings{
		"tt0113277": {IMDbRating: "8.3", IMDbVotes: "700,000", RottenTomatoes: "87%", Metacritic: "76/100"},
		"tt0111161": {IMDbRating: "9.3", IMDbVotes: "2,900,000"},
	})

	cfg := testsupport.NewConfig(t,
		testsupport.WithTMDBServer(tmdbServer.URL),
		testsupport.WithOMDbServer(omdbServer.URL, "omdb-key-1"),
	)

	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("OMDB_API_KEYS", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base, tmdb: tmdbServer}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
