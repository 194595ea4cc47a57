package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains configuration for log output. OutputPaths entries are
// "stderr", "stdout", or file paths; empty means stderr only.
type Logging struct {
	Format      string   `toml:"format"`
	Level       string   `toml:"level"`
	OutputPaths []string `toml:"output_paths,omitempty"`
}

// Cache contains configuration for the local movie store.
type Cache struct {
	Path string `toml:"path"`
}

// Plex contains settings shared by all plex.tv and server requests.
type Plex struct {
	AuthStatePath  string `toml:"auth_state_path"`
	RequestTimeout int    `toml:"request_timeout"`
	ConnectTimeout int    `toml:"connect_timeout"`
}

// Graph contains defaults for graph construction and export.
type Graph struct {
	MinRelationships int      `toml:"min_relationships"`
	Attributes       []string `toml:"attributes"`
	Mode             string   `toml:"mode"`
	Format           string   `toml:"format"`
}

// Server describes one Plex media server discovered during auth.
// URLs come from the plex.tv resources listing; LastURL records the
// connection that worked most recently so harvest tries it first.
type Server struct {
	Name    string   `toml:"name"`
	URLs    []string `toml:"urls"`
	Token   string   `toml:"token"`
	LastURL string   `toml:"last_url,omitempty"`
}

// Config encapsulates all configuration values for plex-graph.
type Config struct {
	Logging Logging  `toml:"logging"`
	Cache   Cache    `toml:"cache"`
	Plex    Plex     `toml:"plex"`
	Graph   Graph    `toml:"graph"`
	Servers []Server `toml:"servers"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/plex-graph/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Save writes the configuration back to path. Auth writes discovered servers
// and harvest persists last_url through this.
func (c *Config) Save(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// FindServer returns the server entry with the given name.
func (c *Config) FindServer(name string) (*Server, bool) {
	for i := range c.Servers {
		if strings.EqualFold(c.Servers[i].Name, name) {
			return &c.Servers[i], true
		}
	}
	return nil, false
}

// UpsertServer adds or replaces a server entry by name, preserving last_url
// when the replacement does not carry one.
func (c *Config) UpsertServer(server Server) {
	for i := range c.Servers {
		if strings.EqualFold(c.Servers[i].Name, server.Name) {
			if server.LastURL == "" {
				server.LastURL = c.Servers[i].LastURL
			}
			c.Servers[i] = server
			return
		}
	}
	c.Servers = append(c.Servers, server)
}

// SetLastURL records the URL that most recently accepted a connection.
func (c *Config) SetLastURL(name, url string) bool {
	server, ok := c.FindServer(name)
	if !ok {
		return false
	}
	server.LastURL = strings.TrimRight(strings.TrimSpace(url), "/")
	return true
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("plex-graph.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories backing the cache and auth state.
func (c *Config) EnsureDirectories() error {
	for _, path := range []string{c.Cache.Path, c.Plex.AuthStatePath} {
		dir := filepath.Dir(path)
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
