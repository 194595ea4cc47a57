package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"plexgraph/internal/library"
)

func newMoviesCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		asJSON bool
		server string
	)

	cmd := &cobra.Command{
		Use:   "movies",
		Short: "List the cached movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			movies, err := store.All(cmd.Context())
			if err != nil {
				return err
			}
			if server != "" {
				filtered := movies[:0]
				for _, movie := range movies {
					if strings.EqualFold(movie.Server, server) {
						filtered = append(filtered, movie)
					}
				}
				movies = filtered
			}
			library.SortMovies(movies)

			if asJSON {
				return writeJSON(cmd, movies)
			}

			rows := make([][]string, 0, len(movies))
			for _, movie := range movies {
				year := ""
				if movie.Year > 0 {
					year = strconv.Itoa(movie.Year)
				}
				rating := ""
				if movie.Rated() {
					rating = strconv.FormatFloat(movie.Rating, 'f', 1, 64)
				}
				rows = append(rows, []string{
					movie.Title,
					year,
					rating,
					movie.Server,
					strings.Join(movie.Genres, ", "),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Year", "Rating", "Server", "Genres"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d movies\n", len(movies))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	cmd.Flags().StringVar(&server, "server", "", "Only list movies from this server")
	return cmd
}
