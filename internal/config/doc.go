// Package config loads, validates, and persists plex-graph configuration.
//
// Configuration lives in a TOML file (default ~/.config/plex-graph/config.toml)
// and carries logging preferences, cache and auth-state locations, graph
// defaults, and the list of known Plex servers. Unlike most settings, server
// entries are written back by the tool itself: 'auth link' records servers
// discovered from plex.tv and harvest persists the URL that last accepted a
// connection.
package config
