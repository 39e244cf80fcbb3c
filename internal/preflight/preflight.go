package preflight

import (
	"context"

	"reelmatch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string
	Passed  bool
	Skipped bool
	Detail  string
}

// Pinger is satisfied by the provider clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Notifier sends a test message through the configured notification channel.
type Notifier interface {
	TestNotification(ctx context.Context) error
}

// Probes carries the live clients RunAll exercises. A nil field skips
// the corresponding check.
type Probes struct {
	TMDB     Pinger
	OMDb     Pinger
	Notifier Notifier
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, probes Probes) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if dir := storeDir(cfg); dir != "" {
		results = append(results, CheckDirectoryAccess("Store directory", dir))
	}

	results = append(results, CheckProvider(ctx, "TMDB", probes.TMDB))

	if len(cfg.OMDb.APIKeys) == 0 || probes.OMDb == nil {
		results = append(results, Result{Name: "OMDb", Skipped: true, Detail: "no api keys configured; ratings disabled"})
	} else {
		results = append(results, CheckProvider(ctx, "OMDb", probes.OMDb))
	}

	if cfg.Notifications.NtfyTopic != "" && probes.Notifier != nil {
		results = append(results, CheckNotifier(ctx, probes.Notifier))
	}

	return results
}

// Failed reports whether any non-skipped result failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Skipped {
			return true
		}
	}
	return false
}
