package plex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"plexgraph/internal/config"
	"plexgraph/internal/logging"
	"plexgraph/internal/services"
)

// ConnectOptions tune server connection probing.
type ConnectOptions struct {
	ClientID       string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	Logger         *slog.Logger
	HTTPDoer       HTTPDoer // test override; replaces the per-probe client
}

// Connect finds a working URL for the server and returns a client bound to
// it. The URL recorded by the previous harvest is tried first, then the
// remaining advertised URLs in order. The caller persists the winning URL
// via Client.BaseURL.
func Connect(ctx context.Context, server config.Server, opts ConnectOptions) (*Client, error) {
	logger := logging.NewComponentLogger(opts.Logger, "plex")

	urls := candidateURLs(server)
	if len(urls) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "plex", "connect",
			fmt.Sprintf("server %s has no urls", server.Name), nil)
	}

	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	var lastErr error
	for _, url := range urls {
		probe := NewClient(url, server.Token, server.Name, opts.ClientID, connectTimeout,
			WithClientLogger(opts.Logger))
		if opts.HTTPDoer != nil {
			probe = NewClient(url, server.Token, server.Name, opts.ClientID, connectTimeout,
				WithClientLogger(opts.Logger), WithClientHTTP(opts.HTTPDoer))
		}

		probeCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		machineID, err := probe.Identity(probeCtx)
		cancel()
		if err != nil {
			lastErr = err
			logger.Debug("connection probe failed",
				logging.String(logging.FieldServer, server.Name),
				logging.String("url", url),
				logging.Error(err))
			continue
		}

		logger.Info("connected to server",
			logging.String(logging.FieldServer, server.Name),
			logging.String("url", url),
			logging.String("machine_id", machineID))

		client := NewClient(url, server.Token, server.Name, opts.ClientID, opts.RequestTimeout,
			WithClientLogger(opts.Logger))
		if opts.HTTPDoer != nil {
			client = NewClient(url, server.Token, server.Name, opts.ClientID, opts.RequestTimeout,
				WithClientLogger(opts.Logger), WithClientHTTP(opts.HTTPDoer))
		}
		return client, nil
	}

	return nil, services.Wrap(services.ErrConnection, "plex", "connect",
		fmt.Sprintf("no url for server %s accepted a connection", server.Name), lastErr)
}

func candidateURLs(server config.Server) []string {
	var urls []string
	seen := make(map[string]struct{}, len(server.URLs)+1)

	appendURL := func(url string) {
		trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
		if trimmed == "" {
			return
		}
		if _, dup := seen[trimmed]; dup {
			return
		}
		seen[trimmed] = struct{}{}
		urls = append(urls, trimmed)
	}

	appendURL(server.LastURL)
	for _, url := range server.URLs {
		appendURL(url)
	}
	return urls
}
