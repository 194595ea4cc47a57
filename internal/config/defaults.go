package config

const (
	defaultCachePath        = "~/.cache/plex-graph/movie_data.db"
	defaultAuthStatePath    = "~/.config/plex-graph/plex_auth.json"
	defaultRequestTimeout   = 10
	defaultConnectTimeout   = 5
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultMinRelationships = 11
	defaultGraphMode        = "bipartite"
	defaultGraphFormat      = "dot"
)

func defaultGraphAttributes() []string {
	return []string{"actor"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Cache: Cache{
			Path: defaultCachePath,
		},
		Plex: Plex{
			AuthStatePath:  defaultAuthStatePath,
			RequestTimeout: defaultRequestTimeout,
			ConnectTimeout: defaultConnectTimeout,
		},
		Graph: Graph{
			MinRelationships: defaultMinRelationships,
			Attributes:       defaultGraphAttributes(),
			Mode:             defaultGraphMode,
			Format:           defaultGraphFormat,
		},
	}
}
