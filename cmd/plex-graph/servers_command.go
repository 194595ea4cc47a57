package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newServersCommand(cmdCtx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "servers",
		Short: "List the configured Plex servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			if asJSON {
				type serverView struct {
					Name    string   `json:"name"`
					URLs    []string `json:"urls"`
					LastURL string   `json:"last_url,omitempty"`
				}
				views := make([]serverView, 0, len(cfg.Servers))
				for _, server := range cfg.Servers {
					views = append(views, serverView{
						Name:    server.Name,
						URLs:    server.URLs,
						LastURL: server.LastURL,
					})
				}
				return writeJSON(cmd, views)
			}

			rows := make([][]string, 0, len(cfg.Servers))
			for _, server := range cfg.Servers {
				rows = append(rows, []string{
					server.Name,
					strconv.Itoa(len(server.URLs)),
					server.LastURL,
					yesNo(server.Token != ""),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "URLs", "Last URL", "Token"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))
			if len(cfg.Servers) == 0 {
				fmt.Fprintln(out, "No servers configured; run 'plex-graph auth link' to discover them.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
