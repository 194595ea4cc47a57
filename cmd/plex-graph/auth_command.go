package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"plexgraph/internal/config"
	"plexgraph/internal/services/plex"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Plex account authorization",
	}

	cmd.AddCommand(newAuthLinkCommand(ctx))
	cmd.AddCommand(newAuthStatusCommand(ctx))

	return cmd
}

func newAuthLinkCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "link",
		Short: "Authorize with Plex and discover your media servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
			defer cancel()

			manager, err := cmdCtx.authManager()
			if err != nil {
				return err
			}

			token, err := manager.AuthorizationToken()
			if errors.Is(err, plex.ErrAuthorizationMissing) {
				token, err = runLinkFlow(ctx, cmd, manager)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Discovering media servers...")
			servers, err := discoverAndRecord(ctx, cfg, token, manager.ClientIdentifier())
			if err != nil {
				return err
			}
			if err := cfg.Save(cmdCtx.configPath); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recorded %d server(s) in %s:\n", len(servers), cmdCtx.configPath)
			for _, server := range servers {
				fmt.Fprintf(out, "  %s (%d url(s))\n", server.Name, len(server.URLs))
			}
			fmt.Fprintln(out, "Run 'plex-graph harvest' to fetch movie metadata.")
			return nil
		},
	}
}

func runLinkFlow(ctx context.Context, cmd *cobra.Command, manager *plex.AuthManager) (string, error) {
	pin, err := manager.RequestPin(ctx)
	if err != nil {
		return "", err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Open https://plex.tv/link and enter the code:")
	fmt.Fprintf(out, "\n    %s\n\n", pin.Code)
	fmt.Fprintln(out, "Waiting for authorization... (Ctrl+C to abort)")

	expires := pin.ExpiresAt
	if expires.IsZero() {
		expires = time.Now().Add(5 * time.Minute)
	}

	poll := time.NewTicker(2 * time.Second)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-poll.C:
			status, err := manager.PollPin(ctx, pin.ID)
			if err != nil {
				return "", err
			}
			if status.Authorized {
				if err := manager.SetAuthorizationToken(status.AuthorizationToken); err != nil {
					return "", err
				}
				fmt.Fprintln(out, "Plex account linked.")
				return status.AuthorizationToken, nil
			}
			if !status.ExpiresAt.IsZero() {
				expires = status.ExpiresAt
			}
			if time.Now().After(expires) {
				return "", errors.New("link code expired; run 'plex-graph auth link' again")
			}
		}
	}
}

// discoverAndRecord fetches the account's servers from plex.tv and merges
// them into the configuration, preserving each server's last known good URL.
func discoverAndRecord(ctx context.Context, cfg *config.Config, token, clientID string) ([]plex.DiscoveredServer, error) {
	client := &http.Client{Timeout: time.Duration(cfg.Plex.RequestTimeout) * time.Second}
	servers, err := plex.DiscoverServers(ctx, client, token, clientID)
	if err != nil {
		return nil, err
	}
	for _, server := range servers {
		serverToken := server.Token
		if strings.TrimSpace(serverToken) == "" {
			serverToken = token
		}
		cfg.UpsertServer(config.Server{
			Name:  server.Name,
			URLs:  server.URLs,
			Token: serverToken,
		})
	}
	return servers, nil
}

func newAuthStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show Plex authorization state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			manager, err := cmdCtx.authManager()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Linked: %s\n", yesNo(manager.HasAuthorization()))
			fmt.Fprintf(out, "Client identifier: %s\n", manager.ClientIdentifier())
			fmt.Fprintf(out, "Configured servers: %d\n", len(cfg.Servers))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
