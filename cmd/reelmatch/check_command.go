package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelmatch/internal/matchstore"
	"reelmatch/internal/notifications"
	"reelmatch/internal/preflight"
	"reelmatch/internal/tmdb"
)

const checkTimeout = 30 * time.Second

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify provider connectivity and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			cfg := ctx.configValue()
			checkCtx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
			defer cancel()

			var probes preflight.Probes
			var setupErrs []preflight.Result
			if client, err := ctx.tmdbClient(); err != nil {
				setupErrs = append(setupErrs, preflight.Result{Name: "TMDB", Detail: err.Error()})
			} else {
				probes.TMDB = client
			}
			ratingsClient, err := ctx.omdbClient()
			if err != nil {
				setupErrs = append(setupErrs, preflight.Result{Name: "OMDb", Detail: err.Error()})
			} else if ratingsClient != nil {
				probes.OMDb = ratingsClient
			}
			if cfg.Notifications.NtfyTopic != "" {
				probes.Notifier = notifications.NewService(cfg)
			}

			results := preflight.RunAll(checkCtx, cfg, probes)
			results = mergeSetupErrors(results, setupErrs)

			store, err := matchstore.Open(cfg)
			if err != nil {
				results = append(results, preflight.Result{Name: "Store", Detail: err.Error()})
			} else {
				results = append(results, preflight.Result{Name: "Store", Passed: true, Detail: store.Path()})
				store.Close()
			}

			for _, r := range results {
				fmt.Fprintln(out, renderCheckResult(r, colorize))
			}
			if ratingsClient != nil {
				for _, failure := range ratingsClient.FailedKeys() {
					fmt.Fprintln(out, renderStatusLine("OMDb key", statusWarn, fmt.Sprintf("%s failed %d time(s)", failure.Key, failure.Failures), colorize))
				}
			}

			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

// mergeSetupErrors replaces provider results with the error that prevented
// building the client in the first place.
func mergeSetupErrors(results, setupErrs []preflight.Result) []preflight.Result {
	for _, setup := range setupErrs {
		for i := range results {
			if results[i].Name == setup.Name {
				results[i] = setup
			}
		}
	}
	return results
}

func renderCheckResult(r preflight.Result, colorize bool) string {
	switch {
	case r.Skipped:
		return renderStatusLine(r.Name, statusWarn, r.Detail, colorize)
	case r.Passed:
		return renderStatusLine(r.Name, statusOK, r.Detail, colorize)
	default:
		return renderStatusLine(r.Name, statusError, r.Detail, colorize)
	}
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	var (
		tv      bool
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "genres",
		Short: "List provider genres",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.tmdbClient()
			if err != nil {
				return err
			}
			mediaType := tmdb.MediaMovie
			if tv {
				mediaType = tmdb.MediaTV
			}
			genres, err := client.Genres(cmd.Context(), mediaType)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, genres)
			}
			rows := make([][]string, 0, len(genres))
			for _, g := range genres {
				rows = append(rows, []string{strconv.Itoa(g.ID), g.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name"}, rows, []columnAlignment{alignRight, alignLeft}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&tv, "tv", false, "List TV genres")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
