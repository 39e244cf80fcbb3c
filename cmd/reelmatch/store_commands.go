package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"reelmatch/internal/matching"
	"reelmatch/internal/matchstore"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect stored match outcomes",
	}
	storeCmd.AddCommand(newStoreListCommand(ctx))
	storeCmd.AddCommand(newStoreStatsCommand(ctx))
	storeCmd.AddCommand(newStoreRunsCommand(ctx))
	storeCmd.AddCommand(newStoreClearCommand(ctx))
	return storeCmd
}

func (c *commandContext) withStore(fn func(*matchstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := matchstore.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newStoreListCommand(ctx *commandContext) *cobra.Command {
	var (
		matchedOnly bool
		failedOnly  bool
		kind        string
		runID       string
		limit       int
		jsonOut     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if matchedOnly && failedOnly {
				return errors.New("specify only one of --matched or --failed")
			}
			filter := matchstore.Filter{RunID: runID, ErrorKind: matching.ErrorKind(kind), Limit: limit}
			if matchedOnly || failedOnly {
				success := matchedOnly
				filter.Success = &success
			}
			return ctx.withStore(func(store *matchstore.Store) error {
				entries, err := store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if jsonOut {
					results := make([]matching.MatchResult, 0, len(entries))
					for _, e := range entries {
						results = append(results, e.Result)
					}
					return writeJSON(cmd, results)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No stored outcomes")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					r := e.Result
					status := string(r.ErrorKind)
					if r.Success {
						status = "matched"
					}
					rows = append(rows, []string{
						e.ItemID,
						status,
						r.MatchedTitle,
						formatYear(r.MatchedYear),
						r.IMDbID,
						strconv.Itoa(r.MatchScore),
						r.StrategyUsed,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Item", "Status", "Title", "Year", "IMDb", "Score", "Strategy"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&matchedOnly, "matched", false, "Only accepted matches")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only failed lookups")
	cmd.Flags().StringVar(&kind, "kind", "", "Only failures of this error kind")
	cmd.Flags().StringVar(&runID, "run", "", "Only outcomes from this run id")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newStoreStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize stored outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *matchstore.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, map[string]any{
						"total":            stats.Total,
						"matched":          stats.Matched,
						"failed":           stats.Failed,
						"failures_by_kind": stats.ByKind,
					})
				}
				rows := [][]string{
					{"Total", strconv.Itoa(stats.Total)},
					{"Matched", strconv.Itoa(stats.Matched)},
					{"Failed", strconv.Itoa(stats.Failed)},
				}
				kinds := make([]string, 0, len(stats.ByKind))
				for kind := range stats.ByKind {
					kinds = append(kinds, string(kind))
				}
				sort.Strings(kinds)
				for _, kind := range kinds {
					rows = append(rows, []string{"  " + kind, strconv.Itoa(stats.ByKind[matching.ErrorKind(kind)])})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Outcomes", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newStoreRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *matchstore.Store) error {
				runs, err := store.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					finished := "running"
					if !run.FinishedAt.IsZero() {
						finished = run.FinishedAt.Local().Format("2006-01-02 15:04:05")
					}
					rows = append(rows, []string{
						run.ID,
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						finished,
						strconv.Itoa(run.Total),
						strconv.Itoa(run.Succeeded),
						strconv.Itoa(run.Failed),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Run", "Started", "Finished", "Items", "Matched", "Failed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}

func newStoreClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored outcome and run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *matchstore.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d stored outcomes\n", removed)
				return nil
			})
		},
	}
}
