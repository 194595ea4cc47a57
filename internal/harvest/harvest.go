package harvest

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"plexgraph/internal/config"
	"plexgraph/internal/library"
	"plexgraph/internal/logging"
	"plexgraph/internal/services"
	"plexgraph/internal/services/plex"
)

// ServerResult reports one server's contribution to a harvest.
type ServerResult struct {
	Server string
	URL    string
	Movies int
	Err    error
}

// Result summarizes a completed harvest run.
type Result struct {
	Movies   int
	Servers  []ServerResult
	Duration time.Duration
}

// Failed reports whether every configured server failed.
func (r Result) Failed() bool {
	if len(r.Servers) == 0 {
		return true
	}
	for _, server := range r.Servers {
		if server.Err == nil {
			return false
		}
	}
	return true
}

// Harvester refreshes the movie cache from the configured Plex servers.
type Harvester struct {
	cfg      *config.Config
	cfgPath  string
	store    *library.Store
	clientID string
	logger   *slog.Logger
	httpDoer plex.HTTPDoer // test override
}

// Option customises Harvester construction.
type Option func(*Harvester)

// WithHTTPDoer overrides the HTTP backend for every server request.
func WithHTTPDoer(doer plex.HTTPDoer) Option {
	return func(h *Harvester) {
		h.httpDoer = doer
	}
}

// New builds a harvester. cfgPath is where the winning connection URLs are
// written back after the run.
func New(cfg *config.Config, cfgPath string, store *library.Store, clientID string, logger *slog.Logger, opts ...Option) *Harvester {
	h := &Harvester{
		cfg:      cfg,
		cfgPath:  cfgPath,
		store:    store,
		clientID: clientID,
		logger:   logging.NewComponentLogger(logger, "harvest"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run queries every configured server and replaces the cache with the
// combined result. The cache is only written when at least one server
// succeeds, so a dead network does not wipe a good snapshot. A file lock
// beside the database serializes concurrent harvests.
func (h *Harvester) Run(ctx context.Context) (Result, error) {
	if err := h.cfg.RequireServers(); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "harvest", "run", err.Error(), nil)
	}

	lock := flock.New(h.store.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return Result{}, services.Wrap(services.ErrCache, "harvest", "lock",
			"acquire harvest lock", err)
	}
	if !ok {
		return Result{}, services.Wrap(services.ErrCache, "harvest", "lock",
			"another harvest is already running", nil)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			h.logger.Warn("failed to release harvest lock", logging.Error(unlockErr))
		}
	}()

	started := time.Now()
	var (
		movies  []library.Movie
		results []ServerResult
	)
	for _, server := range h.cfg.Servers {
		serverMovies, result := h.harvestServer(ctx, server)
		results = append(results, result)
		if result.Err != nil {
			h.logger.Warn("server harvest failed",
				logging.String(logging.FieldServer, server.Name),
				logging.Error(result.Err))
			continue
		}
		movies = append(movies, serverMovies...)
	}

	result := Result{Servers: results, Duration: time.Since(started)}
	if result.Failed() {
		return result, services.Wrap(services.ErrConnection, "harvest", "run",
			"no configured server could be harvested", firstError(results))
	}

	if err := h.store.Replace(ctx, movies); err != nil {
		return result, services.Wrap(services.ErrCache, "harvest", "store",
			"write harvested movies", err)
	}
	result.Movies = len(movies)

	h.persistLastURLs(results)

	h.logger.Info("harvest complete",
		logging.Int("movie_count", result.Movies),
		logging.Int("server_count", len(results)),
		logging.String("duration", result.Duration.Round(time.Millisecond).String()))
	return result, nil
}

func (h *Harvester) harvestServer(ctx context.Context, server config.Server) ([]library.Movie, ServerResult) {
	result := ServerResult{Server: server.Name}

	opts := plex.ConnectOptions{
		ClientID:       h.clientID,
		ConnectTimeout: time.Duration(h.cfg.Plex.ConnectTimeout) * time.Second,
		RequestTimeout: time.Duration(h.cfg.Plex.RequestTimeout) * time.Second,
		Logger:         h.logger,
		HTTPDoer:       h.httpDoer,
	}
	client, err := plex.Connect(ctx, server, opts)
	if err != nil {
		result.Err = err
		return nil, result
	}
	result.URL = client.BaseURL()

	sections, err := client.MovieSections(ctx)
	if err != nil {
		result.Err = err
		return nil, result
	}

	var movies []library.Movie
	for _, section := range sections {
		sectionMovies, err := client.SectionMovies(ctx, section)
		if err != nil {
			result.Err = err
			return nil, result
		}
		h.logger.Info("harvested section",
			logging.String(logging.FieldServer, server.Name),
			logging.String("section", section.Title),
			logging.Int("movie_count", len(sectionMovies)))
		movies = append(movies, sectionMovies...)
	}

	result.Movies = len(movies)
	return movies, result
}

// persistLastURLs records each server's winning URL so the next harvest
// probes it first. Failure to save is logged, not fatal.
func (h *Harvester) persistLastURLs(results []ServerResult) {
	changed := false
	for _, result := range results {
		if result.Err != nil || result.URL == "" {
			continue
		}
		if h.cfg.SetLastURL(result.Server, result.URL) {
			changed = true
		}
	}
	if !changed || h.cfgPath == "" {
		return
	}
	if err := h.cfg.Save(h.cfgPath); err != nil {
		h.logger.Warn("failed to persist server urls", logging.Error(err))
	}
}

func firstError(results []ServerResult) error {
	for _, result := range results {
		if result.Err != nil {
			return result.Err
		}
	}
	return nil
}
