package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelmatch/internal/batch"
	"reelmatch/internal/catalog"
	"reelmatch/internal/logging"
	"reelmatch/internal/matching"
	"reelmatch/internal/matchstore"
	"reelmatch/internal/notifications"
	"reelmatch/internal/omdb"
	"reelmatch/internal/services"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		catalogPath string
		force       bool
		noRatings   bool
		dryRun      bool
		noBackup    bool
		workers     int
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Resolve every pending item of a catalogue file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if catalogPath == "" {
				return errors.New("--catalog is required")
			}
			cfg := ctx.configValue()
			logger := ctx.loggerValue()

			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return err
			}
			var pending []int
			records := make([]matching.PrimaryRecord, 0, len(cat.Items))
			for i, item := range cat.Items {
				if !force && !item.NeedsMatch() {
					continue
				}
				pending = append(pending, i)
				records = append(records, item.Record())
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "Nothing to match; every item already carries both ids (use --force to rematch)")
				return nil
			}

			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			opts := []batch.Option{
				batch.WithWorkers(cfg.Batch.Workers),
				batch.WithLogger(logger),
			}
			if workers > 0 {
				opts = append(opts, batch.WithWorkers(workers))
			}

			ratingsClient, err := ctx.omdbClient()
			if err != nil {
				return err
			}
			fetchRatings := cfg.Batch.FetchRatings && !noRatings && ratingsClient != nil
			if fetchRatings {
				opts = append(opts, batch.WithRatings(ratingsClient))
			}

			var store *matchstore.Store
			if !dryRun {
				store, err = matchstore.Open(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			runID := newRunID()
			runCtx := services.WithRunID(cmd.Context(), runID)
			// Store writes outlive an interrupt so partial runs stay recorded.
			persistCtx := context.WithoutCancel(runCtx)
			if store != nil {
				if err := store.BeginRun(persistCtx, runID, len(records)); err != nil {
					return err
				}
				opts = append(opts, batch.WithOutcome(func(o batch.Outcome) {
					if err := store.SaveResult(persistCtx, runID, o.Result); err != nil {
						logging.WarnWithContext(logger, "failed to persist match result", "store_write_failed",
							logging.String("item_id", o.Result.ItemID),
							logging.Error(err),
							logging.String(logging.FieldErrorHint, "check free disk space and store permissions"),
							logging.String(logging.FieldImpact, "outcome missing from the match store"),
						)
					}
				}))
			}
			progressOut := cmd.ErrOrStderr()
			opts = append(opts, batch.WithProgress(cfg.Batch.ProgressEvery, func(p batch.Progress) {
				writeProgress(progressOut, p)
			}))

			runner, err := batch.New(engine, opts...)
			if err != nil {
				return err
			}
			notifier := notifications.NewService(cfg)
			catalogName := filepath.Base(catalogPath)
			if err := notifier.NotifyBatchStarted(runCtx, catalogName, len(records)); err != nil {
				logNotifyFailure(logger, err)
			}
			summary := runner.Run(runCtx, records)
			if err := notifier.NotifyBatchCompleted(persistCtx, notificationReport(catalogName, summary)); err != nil {
				logNotifyFailure(logger, err)
			}

			changed := 0
			for i, outcome := range summary.Outcomes {
				item := &cat.Items[pending[i]]
				if item.Apply(outcome.Result) {
					changed++
				}
				if len(outcome.Result.Ratings) > 0 {
					item.MergeRatings(outcome.Result.Ratings)
				}
			}
			if fetchRatings {
				cat.ApplyBayesian(cfg.Ratings.DefaultGlobalMean)
			}
			if store != nil {
				if err := store.FinishRun(persistCtx, runID, summary.Succeeded, summary.Failed); err != nil {
					return err
				}
			}
			if !dryRun {
				if err := saveCatalog(cmd, cat, catalogPath, !noBackup); err != nil {
					return err
				}
			}

			if jsonOut {
				if err := writeJSON(cmd, batchReport(summary, changed, ratingsClient)); err != nil {
					return err
				}
				return cmd.Context().Err()
			}
			fmt.Fprintln(out, renderBatchSummary(summary, changed))
			if ratingsClient != nil {
				for _, failure := range ratingsClient.FailedKeys() {
					fmt.Fprintf(out, "omdb key %s failed %d time(s)\n", failure.Key, failure.Failures)
				}
			}
			if err := cmd.Context().Err(); err != nil {
				fmt.Fprintln(out, "Interrupted; unfinished items were left for the next run")
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalogue JSON file")
	cmd.Flags().BoolVar(&force, "force", false, "Rematch items that already carry both ids")
	cmd.Flags().BoolVar(&noRatings, "no-ratings", false, "Skip secondary ratings enrichment")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Match without writing the catalogue or the store")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not keep a .bak copy of the catalogue")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override the configured worker count")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func notificationReport(catalogName string, summary batch.Summary) notifications.BatchReport {
	report := notifications.BatchReport{
		CatalogName:    catalogName,
		Matched:        summary.Succeeded,
		Failed:         summary.Failed,
		Duration:       summary.Elapsed,
		FailuresByKind: make(map[string]int),
	}
	for kind, count := range summary.FailuresByKind() {
		report.FailuresByKind[string(kind)] = count
	}
	return report
}

func logNotifyFailure(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "notification failed", "notification_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		logging.String(logging.FieldImpact, "run continues without notifications"),
	)
}

func saveCatalog(cmd *cobra.Command, cat *catalog.Catalog, path string, backup bool) error {
	if backup {
		dst, err := catalog.Backup(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Backed up catalogue to %s\n", dst)
	}
	return cat.Save(path)
}

func writeProgress(w io.Writer, p batch.Progress) {
	line := fmt.Sprintf("Progress: %d/%d (matched %d, failed %d)", p.Done, p.Total, p.Succeeded, p.Failed)
	if isTerminal(w) {
		end := ""
		if p.Done == p.Total {
			end = "\n"
		}
		fmt.Fprintf(w, "\r%s%s", line, end)
		return
	}
	fmt.Fprintln(w, line)
}

type batchJSON struct {
	RunID      string                     `json:"run_id"`
	Items      int                        `json:"items"`
	Matched    int                        `json:"matched"`
	Failed     int                        `json:"failed"`
	Updated    int                        `json:"updated"`
	ElapsedMS  int64                      `json:"elapsed_ms"`
	ByKind     map[matching.ErrorKind]int `json:"failures_by_kind,omitempty"`
	FailedKeys []string                   `json:"failed_keys,omitempty"`
}

func batchReport(summary batch.Summary, changed int, client *omdb.Client) batchJSON {
	report := batchJSON{
		RunID:     summary.RunID,
		Items:     len(summary.Outcomes),
		Matched:   summary.Succeeded,
		Failed:    summary.Failed,
		Updated:   changed,
		ElapsedMS: summary.Elapsed.Milliseconds(),
		ByKind:    summary.FailuresByKind(),
	}
	if client != nil {
		for _, failure := range client.FailedKeys() {
			report.FailedKeys = append(report.FailedKeys, failure.Key)
		}
	}
	return report
}

func renderBatchSummary(summary batch.Summary, changed int) string {
	rows := [][]string{
		{"Run", summary.RunID},
		{"Items", strconv.Itoa(len(summary.Outcomes))},
		{"Matched", strconv.Itoa(summary.Succeeded)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Catalogue updates", strconv.Itoa(changed)},
		{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
	}
	kinds := summary.FailuresByKind()
	names := make([]string, 0, len(kinds))
	for kind := range kinds {
		names = append(names, string(kind))
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, []string{"  " + name, strconv.Itoa(kinds[matching.ErrorKind(name)])})
	}
	return renderTable([]string{"Batch", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
