package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelmatch/internal/catalog"
)

func newRatingsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ratings <imdb-id>",
		Short: "Fetch secondary ratings for an IMDb id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imdbID := strings.TrimSpace(args[0])
			if !strings.HasPrefix(imdbID, "tt") {
				return fmt.Errorf("%q is not an IMDb title id", imdbID)
			}
			client, err := ctx.omdbClient()
			if err != nil {
				return err
			}
			if client == nil {
				return errors.New("no omdb api keys configured (set omdb.api_keys or OMDB_API_KEYS)")
			}
			entries, err := client.Ratings(cmd.Context(), imdbID)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ratings available")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRatings(entries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newBayesianCommand(ctx *commandContext) *cobra.Command {
	var (
		catalogPath string
		noBackup    bool
	)

	cmd := &cobra.Command{
		Use:   "bayesian",
		Short: "Recompute composite ratings in a catalogue file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if catalogPath == "" {
				return errors.New("--catalog is required")
			}
			cfg := ctx.configValue()
			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return err
			}
			used := cat.ApplyBayesian(cfg.Ratings.DefaultGlobalMean)
			if err := saveCatalog(cmd, cat, catalogPath, !noBackup); err != nil {
				return err
			}
			rows := [][]string{
				{"Items", strconv.Itoa(len(cat.Items))},
				{"C used", strconv.FormatFloat(used.GlobalMean, 'f', 2, 64)},
				{"m used", strconv.FormatFloat(used.MinVotes, 'f', 2, 64)},
				{"C next", strconv.FormatFloat(cat.BayesStats.GlobalMean, 'f', 2, 64)},
				{"m next", strconv.FormatFloat(cat.BayesStats.MinVotes, 'f', 2, 64)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Bayesian", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalogue JSON file")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not keep a .bak copy of the catalogue")
	return cmd
}
