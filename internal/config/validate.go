package config

import (
	"errors"
	"fmt"
	"strings"
)

// GraphAttributes lists the movie attributes that may contribute edges.
var GraphAttributes = []string{"actor", "director", "writer", "genre"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGraph(); err != nil {
		return err
	}
	if err := c.validateServers(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGraph() error {
	switch c.Graph.Mode {
	case "bipartite", "similarity":
	default:
		return fmt.Errorf("graph.mode must be %q or %q, got %q", "bipartite", "similarity", c.Graph.Mode)
	}
	switch c.Graph.Format {
	case "dot", "json":
	default:
		return fmt.Errorf("graph.format must be %q or %q, got %q", "dot", "json", c.Graph.Format)
	}
	for _, attr := range c.Graph.Attributes {
		if !validGraphAttribute(attr) {
			return fmt.Errorf("graph.attributes contains unknown attribute %q (valid: %s)",
				attr, strings.Join(GraphAttributes, ", "))
		}
	}
	return nil
}

func (c *Config) validateServers() error {
	seen := make(map[string]struct{}, len(c.Servers))
	for i, server := range c.Servers {
		if server.Name == "" {
			return fmt.Errorf("servers[%d].name must be set", i)
		}
		key := strings.ToLower(server.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("servers contains duplicate name %q", server.Name)
		}
		seen[key] = struct{}{}

		if len(server.URLs) == 0 {
			return fmt.Errorf("servers[%d] (%s) must list at least one url", i, server.Name)
		}
		if server.Token == "" {
			return fmt.Errorf("servers[%d] (%s) must carry an access token (run 'plex-graph auth link')", i, server.Name)
		}
		for _, url := range server.URLs {
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				return fmt.Errorf("servers[%d] (%s) url %q must start with http:// or https://", i, server.Name, url)
			}
		}
	}
	return nil
}

func validGraphAttribute(attr string) bool {
	for _, valid := range GraphAttributes {
		if attr == valid {
			return true
		}
	}
	return false
}

// RequireServers returns an error when no servers are configured yet.
func (c *Config) RequireServers() error {
	if len(c.Servers) == 0 {
		return errors.New("no plex servers configured; run 'plex-graph auth link' first")
	}
	return nil
}
