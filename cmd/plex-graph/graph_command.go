package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"plexgraph/internal/graph"
)

func newGraphCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		minRelationships int
		mode             string
		format           string
		attributes       []string
		outputPath       string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build a relationship graph from the cached movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("relationships") {
				minRelationships = cfg.Graph.MinRelationships
			}
			if mode == "" {
				mode = cfg.Graph.Mode
			}
			if format == "" {
				format = cfg.Graph.Format
			}
			if len(attributes) == 0 {
				attributes = cfg.Graph.Attributes
			}

			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			movies, err := store.All(cmd.Context())
			if err != nil {
				return err
			}

			g, err := graph.Build(movies, graph.Options{
				Mode:             mode,
				Attributes:       attributes,
				MinRelationships: minRelationships,
			})
			if err != nil {
				return err
			}

			// Format is resolved before the output file is created so a
			// bad --format never leaves an empty file behind.
			var write func(io.Writer) error
			switch strings.ToLower(format) {
			case "dot":
				write = g.WriteDOT
			case "json":
				write = g.WriteJSON
			default:
				return fmt.Errorf("unknown graph format %q (valid: dot, json)", format)
			}

			out := io.Writer(cmd.OutOrStdout())
			if outputPath != "" {
				file, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				out = file
			}
			if err := write(out); err != nil {
				return err
			}

			stats := g.Stats()
			fmt.Fprintf(cmd.ErrOrStderr(), "Graph: %d nodes (%d movies, %d people, %d genres), %d edges\n",
				stats.Nodes, stats.Movies, stats.People, stats.Genres, stats.Edges)
			return nil
		},
	}

	cmd.Flags().IntVarP(&minRelationships, "relationships", "r", 0,
		"Minimum movies an entity must appear in to be graphed (bipartite mode)")
	cmd.Flags().StringVar(&mode, "mode", "", "Graph mode: bipartite or similarity")
	cmd.Flags().StringVar(&format, "format", "", "Export format: dot or json")
	cmd.Flags().StringSliceVar(&attributes, "attr", nil,
		"Attributes contributing edges (actor, director, writer, genre)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the graph to a file instead of stdout")

	return cmd
}
