package main

import (
	"strings"
	"testing"
)

func TestCLICacheStatsAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	seedSample(t, env)

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Movies: 2")
	if strings.Contains(out, "Last harvest: never") {
		t.Errorf("expected a harvest timestamp, got:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cache cleared")

	out, _, err = runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats after clear: %v", err)
	}
	requireContains(t, out, "Movies: 0")
	requireContains(t, out, "Last harvest: never")
}

func TestCLIMoviesTable(t *testing.T) {
	env := setupCLITestEnv(t)
	seedSample(t, env)

	out, _, err := runCLI(t, []string{"movies"}, env.configPath)
	if err != nil {
		t.Fatalf("movies: %v", err)
	}
	requireContains(t, out, "Heat")
	requireContains(t, out, "Serpico")
	requireContains(t, out, "2 movies")
}

func TestCLIRatingsHistogram(t *testing.T) {
	env := setupCLITestEnv(t)
	seedSample(t, env)

	out, _, err := runCLI(t, []string{"ratings"}, env.configPath)
	if err != nil {
		t.Fatalf("ratings: %v", err)
	}
	// 8.3 rounds to 8, 7.7 rounds to 8.
	requireContains(t, out, "2 rated movies")
	requireContains(t, out, " 8 | ##")
}

func TestCLIServersEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"servers"}, env.configPath)
	if err != nil {
		t.Fatalf("servers: %v", err)
	}
	requireContains(t, out, "No servers configured")
}
