package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelmatch/internal/matching"
	"reelmatch/internal/ratings"
	"reelmatch/internal/tmdb"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		record      matching.PrimaryRecord
		tv          bool
		withRatings bool
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "match [title]",
		Short: "Resolve a single title",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				record.Title = args[0]
			}
			if strings.TrimSpace(record.Title) == "" && strings.TrimSpace(record.OriginalTitle) == "" {
				return errors.New("a title is required (argument or --title)")
			}
			if record.ItemID == "" {
				record.ItemID = "cli"
			}
			record.MediaType = tmdb.MediaMovie
			if tv {
				record.MediaType = tmdb.MediaTV
			}

			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			result := engine.Match(cmd.Context(), record)

			if withRatings && result.Success && result.IMDbID != "" {
				client, err := ctx.omdbClient()
				if err != nil {
					return err
				}
				if client == nil {
					return errors.New("no omdb api keys configured")
				}
				entries, err := client.Ratings(cmd.Context(), result.IMDbID)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "ratings unavailable: %v\n", err)
				} else {
					result.Ratings = entries
				}
			}

			if jsonOut {
				return writeJSON(cmd, result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderResult(result))
			if len(result.Ratings) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderRatings(result.Ratings))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&record.Title, "title", "", "Catalogue title")
	cmd.Flags().StringVar(&record.OriginalTitle, "original-title", "", "Original-language title")
	cmd.Flags().IntVar(&record.Year, "year", 0, "Release year")
	cmd.Flags().StringSliceVar(&record.Directors, "director", nil, "Director name (repeatable)")
	cmd.Flags().IntVar(&record.RuntimeMinutes, "runtime", 0, "Runtime in minutes")
	cmd.Flags().StringVar(&record.ItemID, "id", "", "Item id echoed in the result")
	cmd.Flags().BoolVar(&tv, "tv", false, "Search TV series instead of movies")
	cmd.Flags().BoolVar(&withRatings, "ratings", false, "Fetch secondary ratings for an accepted match")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func renderResult(result matching.MatchResult) string {
	rows := [][]string{{"Item", result.ItemID}}
	if !result.Success {
		rows = append(rows,
			[]string{"Matched", "no"},
			[]string{"Error", string(result.ErrorKind)},
			[]string{"Detail", result.Detail},
		)
		return renderTable([]string{"Field", "Value"}, rows, nil)
	}
	rows = append(rows,
		[]string{"Matched", "yes"},
		[]string{"Title", result.MatchedTitle},
		[]string{"Original title", result.MatchedOriginalTitle},
		[]string{"Year", formatYear(result.MatchedYear)},
		[]string{"Directors", strings.Join(result.MatchedDirectors, ", ")},
		[]string{"TMDB id", fmt.Sprintf("%s/%d", result.MediaType, result.ExternalID)},
		[]string{"IMDb", result.IMDbURL},
		[]string{"Score", strconv.Itoa(result.MatchScore)},
		[]string{"Strategy", result.StrategyUsed},
	)
	if result.YearDelta != nil {
		rows = append(rows, []string{"Year delta", strconv.Itoa(*result.YearDelta)})
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func renderRatings(entries []ratings.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		voters := ""
		if e.Voters > 0 {
			voters = strconv.FormatInt(e.Voters, 10)
		}
		rows = append(rows, []string{string(e.Source), strconv.FormatFloat(e.ScoreOverTen, 'f', 1, 64), voters})
	}
	return renderTable([]string{"Source", "Score", "Voters"}, rows, []columnAlignment{alignLeft, alignRight, alignRight})
}

func formatYear(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}
