package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlex()
	c.normalizeGraph()
	c.normalizeServers()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath
	}
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if strings.TrimSpace(c.Plex.AuthStatePath) == "" {
		c.Plex.AuthStatePath = defaultAuthStatePath
	}
	if c.Plex.AuthStatePath, err = expandPath(c.Plex.AuthStatePath); err != nil {
		return fmt.Errorf("plex.auth_state_path: %w", err)
	}
	return nil
}

func (c *Config) normalizePlex() {
	if c.Plex.RequestTimeout <= 0 {
		c.Plex.RequestTimeout = defaultRequestTimeout
	}
	if c.Plex.ConnectTimeout <= 0 {
		c.Plex.ConnectTimeout = defaultConnectTimeout
	}
}

func (c *Config) normalizeGraph() {
	if c.Graph.MinRelationships < 0 {
		c.Graph.MinRelationships = 0
	}
	c.Graph.Mode = strings.ToLower(strings.TrimSpace(c.Graph.Mode))
	if c.Graph.Mode == "" {
		c.Graph.Mode = defaultGraphMode
	}
	c.Graph.Format = strings.ToLower(strings.TrimSpace(c.Graph.Format))
	if c.Graph.Format == "" {
		c.Graph.Format = defaultGraphFormat
	}

	if len(c.Graph.Attributes) == 0 {
		c.Graph.Attributes = defaultGraphAttributes()
		return
	}
	attrs := make([]string, 0, len(c.Graph.Attributes))
	seen := make(map[string]struct{}, len(c.Graph.Attributes))
	for _, attr := range c.Graph.Attributes {
		normalized := strings.ToLower(strings.TrimSpace(attr))
		normalized = strings.TrimSuffix(normalized, "s")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		attrs = append(attrs, normalized)
	}
	if len(attrs) == 0 {
		attrs = defaultGraphAttributes()
	}
	c.Graph.Attributes = attrs
}

func (c *Config) normalizeServers() {
	servers := c.Servers[:0]
	for _, server := range c.Servers {
		server.Name = strings.TrimSpace(server.Name)
		server.Token = strings.TrimSpace(server.Token)
		if server.Token == "" {
			server.Token = strings.TrimSpace(os.Getenv("PLEX_TOKEN"))
		}
		server.LastURL = strings.TrimRight(strings.TrimSpace(server.LastURL), "/")

		urls := make([]string, 0, len(server.URLs))
		seen := make(map[string]struct{}, len(server.URLs))
		for _, url := range server.URLs {
			trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
			if trimmed == "" {
				continue
			}
			if _, exists := seen[trimmed]; exists {
				continue
			}
			seen[trimmed] = struct{}{}
			urls = append(urls, trimmed)
		}
		server.URLs = urls

		if server.Name == "" && len(server.URLs) == 0 {
			continue
		}
		servers = append(servers, server)
	}
	c.Servers = servers
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	paths := make([]string, 0, len(c.Logging.OutputPaths))
	for _, path := range c.Logging.OutputPaths {
		trimmed := strings.TrimSpace(path)
		switch trimmed {
		case "":
			continue
		case "stdout", "stderr":
		default:
			expanded, err := expandPath(trimmed)
			if err != nil {
				return fmt.Errorf("logging.output_paths: %w", err)
			}
			trimmed = expanded
		}
		paths = append(paths, trimmed)
	}
	if len(paths) == 0 {
		paths = nil
	}
	c.Logging.OutputPaths = paths
	return nil
}
