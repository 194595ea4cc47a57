package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"plexgraph/internal/harvest"
)

func newHarvestCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "harvest",
		Short: "Fetch movie metadata from every configured server into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			manager, err := cmdCtx.authManager()
			if err != nil {
				return err
			}
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			h := harvest.New(cfg, cmdCtx.configPath, store, manager.ClientIdentifier(), cmdCtx.ensureLogger())
			result, err := h.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, server := range result.Servers {
				if server.Err != nil {
					fmt.Fprintf(out, "%s: failed (%v)\n", server.Server, server.Err)
					continue
				}
				fmt.Fprintf(out, "%s: %d movies via %s\n", server.Server, server.Movies, server.URL)
			}
			fmt.Fprintf(out, "Cached %d movies in %s\n",
				result.Movies, result.Duration.Round(time.Millisecond))
			return nil
		},
	}
}
