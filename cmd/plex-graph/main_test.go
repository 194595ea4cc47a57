package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"plexgraph/internal/config"
	"plexgraph/internal/library"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Cache.Path = filepath.Join(base, "movie_data.db")
	cfgVal.Plex.AuthStatePath = filepath.Join(base, "plex_auth.json")

	configPath := filepath.Join(base, "config.toml")
	if err := cfgVal.Save(configPath); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		cfg:        &cfgVal,
		configPath: configPath,
		baseDir:    base,
	}
}

func (env *cliTestEnv) seedMovies(t *testing.T, movies []library.Movie) {
	t.Helper()
	store, err := library.Open(env.cfg, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if err := store.Replace(context.Background(), movies); err != nil {
		t.Fatalf("seed movies: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func seedSample(t *testing.T, env *cliTestEnv) {
	t.Helper()
	now := time.Now().UTC()
	env.seedMovies(t, []library.Movie{
		{
			RatingKey:   "101",
			Server:      "den",
			Title:       "Heat",
			Year:        1995,
			Rating:      8.3,
			Actors:      []string{"Al Pacino", "Robert De Niro"},
			Genres:      []string{"Crime"},
			HarvestedAt: now,
		},
		{
			RatingKey:   "102",
			Server:      "den",
			Title:       "Serpico",
			Year:        1973,
			Rating:      7.7,
			Actors:      []string{"Al Pacino"},
			Genres:      []string{"Crime"},
			HarvestedAt: now,
		},
	})
}
