package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset the local movie cache",
	}

	cmd.AddCommand(newCacheStatsCommand(cmdCtx))
	cmd.AddCommand(newCacheClearCommand(cmdCtx))

	return cmd
}

func newCacheStatsCommand(cmdCtx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache location, movie count, and last harvest time",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			lastHarvest, err := store.LastHarvest(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				payload := map[string]any{
					"path":   store.Path(),
					"movies": count,
				}
				if !lastHarvest.IsZero() {
					payload["last_harvest"] = lastHarvest.Format(time.RFC3339)
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache path: %s\n", store.Path())
			fmt.Fprintf(out, "Movies: %d\n", count)
			if lastHarvest.IsZero() {
				fmt.Fprintln(out, "Last harvest: never")
			} else {
				fmt.Fprintf(out, "Last harvest: %s\n", lastHarvest.Local().Format(time.RFC1123))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func newCacheClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared; run 'plex-graph harvest' to repopulate it.")
			return nil
		},
	}
}
