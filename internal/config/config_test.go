package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadWellFormedConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"

[graph]
min_relationships = 3
attributes = ["Actors", "genre"]
mode = "similarity"
format = "json"

[[servers]]
name = "den"
urls = ["https://plex.example:32400/", "http://192.168.1.5:32400"]
token = "secret"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Graph.MinRelationships != 3 {
		t.Errorf("min_relationships = %d, want 3", cfg.Graph.MinRelationships)
	}
	// Attributes are lowercased and singularized.
	if len(cfg.Graph.Attributes) != 2 || cfg.Graph.Attributes[0] != "actor" || cfg.Graph.Attributes[1] != "genre" {
		t.Errorf("attributes = %v, want [actor genre]", cfg.Graph.Attributes)
	}
	server, ok := cfg.FindServer("den")
	if !ok {
		t.Fatal("expected server den")
	}
	if server.URLs[0] != "https://plex.example:32400" {
		t.Errorf("url not trimmed: %q", server.URLs[0])
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("missing file should report exists=false")
	}
	if cfg.Graph.MinRelationships != defaultMinRelationships {
		t.Errorf("expected default min_relationships, got %d", cfg.Graph.MinRelationships)
	}
	if len(cfg.Servers) != 0 {
		t.Errorf("expected no servers, got %d", len(cfg.Servers))
	}
}

func TestLoadLoggingOutputPaths(t *testing.T) {
	path := writeConfig(t, `
[logging]
output_paths = ["stdout", "~/logs/plex-graph.log", "  "]
`)

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Logging.OutputPaths) != 2 {
		t.Fatalf("output_paths = %v, want stdout plus one file", cfg.Logging.OutputPaths)
	}
	if cfg.Logging.OutputPaths[0] != "stdout" {
		t.Errorf("stream destination rewritten: %q", cfg.Logging.OutputPaths[0])
	}
	expanded := cfg.Logging.OutputPaths[1]
	if strings.HasPrefix(expanded, "~") || !filepath.IsAbs(expanded) {
		t.Errorf("file path not expanded: %q", expanded)
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	path := writeConfig(t, "[graph\nmode = ")
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected parse error for malformed config")
	}
}

func TestValidateRejectsUnknownAttribute(t *testing.T) {
	path := writeConfig(t, `
[graph]
attributes = ["studio"]
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown attribute") {
		t.Fatalf("expected unknown attribute error, got %v", err)
	}
}

func TestValidateRejectsServerWithoutToken(t *testing.T) {
	t.Setenv("PLEX_TOKEN", "")
	path := writeConfig(t, `
[[servers]]
name = "den"
urls = ["http://plex.example:32400"]
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "access token") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestServerTokenEnvFallback(t *testing.T) {
	t.Setenv("PLEX_TOKEN", "env-token")
	path := writeConfig(t, `
[[servers]]
name = "den"
urls = ["http://plex.example:32400"]
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	server, _ := cfg.FindServer("den")
	if server.Token != "env-token" {
		t.Errorf("token = %q, want env-token", server.Token)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.UpsertServer(Server{
		Name:  "den",
		URLs:  []string{"https://plex.example:32400"},
		Token: "secret",
	})
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}
	if !exists {
		t.Fatal("saved config should exist")
	}
	server, ok := loaded.FindServer("den")
	if !ok {
		t.Fatal("expected server den after round trip")
	}
	if server.Token != "secret" {
		t.Errorf("token = %q, want secret", server.Token)
	}
}

func TestUpsertServerPreservesLastURL(t *testing.T) {
	cfg := Default()
	cfg.UpsertServer(Server{Name: "den", URLs: []string{"https://a"}, Token: "t1", LastURL: "https://a"})
	cfg.UpsertServer(Server{Name: "den", URLs: []string{"https://a", "https://b"}, Token: "t2"})

	server, _ := cfg.FindServer("den")
	if server.LastURL != "https://a" {
		t.Errorf("last_url = %q, want preserved https://a", server.LastURL)
	}
	if server.Token != "t2" {
		t.Errorf("token = %q, want refreshed t2", server.Token)
	}
	if len(cfg.Servers) != 1 {
		t.Errorf("expected single server entry, got %d", len(cfg.Servers))
	}
}

func TestSetLastURL(t *testing.T) {
	cfg := Default()
	cfg.UpsertServer(Server{Name: "den", URLs: []string{"https://a"}, Token: "t"})

	if !cfg.SetLastURL("den", "https://a/") {
		t.Fatal("SetLastURL should find the server")
	}
	server, _ := cfg.FindServer("den")
	if server.LastURL != "https://a" {
		t.Errorf("last_url = %q, want https://a", server.LastURL)
	}
	if cfg.SetLastURL("unknown", "https://b") {
		t.Error("SetLastURL should report unknown server")
	}
}
