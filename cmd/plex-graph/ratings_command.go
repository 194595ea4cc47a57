package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"plexgraph/internal/library"
)

const ratingBarWidth = 40

func newRatingsCommand(cmdCtx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ratings",
		Short: "Show a histogram of critic ratings for the cached movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ratings, err := store.Ratings(cmd.Context())
			if err != nil {
				return err
			}
			hist := library.RatingHistogram(ratings)

			if asJSON {
				buckets := make(map[string]int, library.HistogramBuckets)
				for i, count := range hist {
					buckets[strconv.Itoa(i+1)] = count
				}
				return writeJSON(cmd, map[string]any{
					"rated_movies": len(ratings),
					"buckets":      buckets,
				})
			}

			fmt.Fprint(cmd.OutOrStdout(), renderHistogram(hist, len(ratings)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of the text histogram")
	return cmd
}

func renderHistogram(hist [library.HistogramBuckets]int, rated int) string {
	max := 0
	for _, count := range hist {
		if count > max {
			max = count
		}
	}

	var b strings.Builder
	for i, count := range hist {
		bar := ""
		if max > 0 {
			bar = strings.Repeat("#", count*ratingBarWidth/max)
		}
		fmt.Fprintf(&b, "%2d | %-*s %d\n", i+1, ratingBarWidth, bar, count)
	}
	fmt.Fprintf(&b, "\n%d rated movies\n", rated)
	return b.String()
}
