package library

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"plexgraph/internal/config"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Path = filepath.Join(t.TempDir(), "movie_data.db")
	cfg.Plex.AuthStatePath = filepath.Join(t.TempDir(), "plex_auth.json")

	store, err := Open(&cfg, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleMovies() []Movie {
	now := time.Now().UTC().Truncate(time.Second)
	return []Movie{
		{
			RatingKey:     "101",
			Server:        "den",
			Title:         "Inception",
			Year:          2010,
			Studio:        "Warner Bros.",
			ContentRating: "PG-13",
			Rating:        8.7,
			Actors:        []string{"Leonardo DiCaprio", "Elliot Page"},
			Directors:     []string{"Christopher Nolan"},
			Writers:       []string{"Christopher Nolan"},
			Genres:        []string{"Science Fiction", "Action"},
			HarvestedAt:   now,
		},
		{
			RatingKey:   "102",
			Server:      "den",
			Title:       "Heat",
			Year:        1995,
			Rating:      8.3,
			Actors:      []string{"Al Pacino", "Robert De Niro"},
			Directors:   []string{"Michael Mann"},
			HarvestedAt: now,
		},
	}
}

func TestReplaceAllRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	want := sampleMovies()
	if err := store.Replace(ctx, want); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(got))
	}

	// All orders by title: Heat before Inception.
	if got[0].Title != "Heat" || got[1].Title != "Inception" {
		t.Fatalf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}

	inception := got[1]
	if !reflect.DeepEqual(inception.Actors, want[0].Actors) {
		t.Errorf("actors = %v, want %v", inception.Actors, want[0].Actors)
	}
	if !reflect.DeepEqual(inception.Genres, want[0].Genres) {
		t.Errorf("genres = %v, want %v", inception.Genres, want[0].Genres)
	}
	if inception.Rating != 8.7 || inception.Year != 2010 {
		t.Errorf("unexpected scalar fields: %+v", inception)
	}
	if !inception.HarvestedAt.Equal(want[0].HarvestedAt) {
		t.Errorf("harvested_at = %v, want %v", inception.HarvestedAt, want[0].HarvestedAt)
	}
}

func TestReplaceOverwritesPreviousHarvest(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Replace(ctx, sampleMovies()); err != nil {
		t.Fatalf("first Replace failed: %v", err)
	}
	if err := store.Replace(ctx, sampleMovies()[:1]); err != nil {
		t.Fatalf("second Replace failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after replacement", count)
	}
}

func TestOpenAbsentDatabaseStartsEmpty(t *testing.T) {
	store := testStore(t)

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty store, got %d movies", count)
	}
}

func TestOpenCorruptDatabaseStartsEmpty(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Cache.Path = filepath.Join(dir, "movie_data.db")
	cfg.Plex.AuthStatePath = filepath.Join(dir, "plex_auth.json")

	if err := os.WriteFile(cfg.Cache.Path, []byte("this is not a sqlite database"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store, err := Open(&cfg, nil)
	if err != nil {
		t.Fatalf("Open should recover from corruption, got: %v", err)
	}
	defer store.Close()

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty store after corruption, got %d", count)
	}

	if _, err := os.Stat(cfg.Cache.Path + ".corrupt"); err != nil {
		t.Errorf("expected corrupt file moved aside: %v", err)
	}
}

func TestClearAndRatings(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Replace(ctx, sampleMovies()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	ratings, err := store.Ratings(ctx)
	if err != nil {
		t.Fatalf("Ratings failed: %v", err)
	}
	if len(ratings) != 2 {
		t.Errorf("expected 2 ratings, got %v", ratings)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty store after Clear, got %d", count)
	}
}

func TestLastHarvest(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	when, err := store.LastHarvest(ctx)
	if err != nil {
		t.Fatalf("LastHarvest failed: %v", err)
	}
	if !when.IsZero() {
		t.Errorf("expected zero time for empty store, got %v", when)
	}

	if err := store.Replace(ctx, sampleMovies()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	when, err = store.LastHarvest(ctx)
	if err != nil {
		t.Fatalf("LastHarvest failed: %v", err)
	}
	if when.IsZero() {
		t.Error("expected non-zero harvest time")
	}
}
