package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"plexgraph/internal/config"
	"plexgraph/internal/logging"
)

// Store manages the harvested movie records, backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the movie database. A corrupt or
// incompatible database is not fatal: the bad file is moved aside and the
// store starts empty, so the next harvest rebuilds it.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "library")

	store, err := open(cfg.Cache.Path, logger)
	if err == nil {
		return store, nil
	}

	logger.Warn("movie database unusable, starting empty",
		logging.String(logging.FieldEventType, "cache_reset"),
		logging.String("path", cfg.Cache.Path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "run 'plex-graph harvest' to rebuild the cache"))

	if moveErr := moveAside(cfg.Cache.Path); moveErr != nil {
		return nil, fmt.Errorf("move corrupt movie database aside: %w", moveErr)
	}
	return open(cfg.Cache.Path, logger)
}

func open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, logger: logger}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func moveAside(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	backup := path + ".corrupt"
	_ = os.Remove(backup)
	if err := os.Rename(path, backup); err != nil {
		return err
	}
	// WAL sidecars reference the old database file.
	_ = os.Remove(path + "-wal")
	_ = os.Remove(path + "-shm")
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// LockPath returns the file used to serialize harvests against this store.
func (s *Store) LockPath() string {
	return filepath.Join(filepath.Dir(s.path), filepath.Base(s.path)+".lock")
}

// Replace atomically swaps the full movie set for the provided records.
// This mirrors harvest semantics: the cache always reflects exactly one
// harvest run.
func (s *Store) Replace(ctx context.Context, movies []Movie) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM movies"); err != nil {
		return fmt.Errorf("clear movies: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO movies (
        server, rating_key, title, year, studio, content_rating, rating,
        actors, directors, writers, genres, harvested_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, movie := range movies {
		if movie.RatingKey == "" {
			continue
		}
		harvestedAt := movie.HarvestedAt
		if harvestedAt.IsZero() {
			harvestedAt = time.Now().UTC()
		}
		_, err := stmt.ExecContext(ctx,
			movie.Server,
			movie.RatingKey,
			movie.Title,
			movie.Year,
			movie.Studio,
			movie.ContentRating,
			movie.Rating,
			encodeStrings(movie.Actors),
			encodeStrings(movie.Directors),
			encodeStrings(movie.Writers),
			encodeStrings(movie.Genres),
			harvestedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert movie %s: %w", movie.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	s.logger.Debug("replaced movie cache", logging.Int("movie_count", len(movies)))
	return nil
}

// All returns every cached movie ordered by title.
func (s *Store) All(ctx context.Context) ([]Movie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
        server, rating_key, title, year, studio, content_rating, rating,
        actors, directors, writers, genres, harvested_at
    FROM movies ORDER BY title, year`)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var movies []Movie
	for rows.Next() {
		var (
			movie       Movie
			actors      string
			directors   string
			writers     string
			genres      string
			harvestedAt string
		)
		if err := rows.Scan(
			&movie.Server, &movie.RatingKey, &movie.Title, &movie.Year,
			&movie.Studio, &movie.ContentRating, &movie.Rating,
			&actors, &directors, &writers, &genres, &harvestedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movie.Actors = decodeStrings(actors)
		movie.Directors = decodeStrings(directors)
		movie.Writers = decodeStrings(writers)
		movie.Genres = decodeStrings(genres)
		if parsed, err := time.Parse(time.RFC3339Nano, harvestedAt); err == nil {
			movie.HarvestedAt = parsed
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

// Count returns the number of cached movies.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM movies").Scan(&count); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return count, nil
}

// LastHarvest returns the most recent harvest timestamp, or the zero time
// when the cache is empty.
func (s *Store) LastHarvest(ctx context.Context) (time.Time, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT MAX(harvested_at) FROM movies").Scan(&raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("query last harvest: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}, nil
	}
	return parsed, nil
}

// Clear removes all cached movies.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM movies"); err != nil {
		return fmt.Errorf("clear movies: %w", err)
	}
	return nil
}

// Ratings returns the critic rating of every rated movie.
func (s *Store) Ratings(ctx context.Context) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT rating FROM movies WHERE rating > 0")
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []float64
	for rows.Next() {
		var rating float64
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

func encodeStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeStrings(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}
