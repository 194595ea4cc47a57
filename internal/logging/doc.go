// Package logging wraps log/slog construction for the plex-graph CLI.
//
// It provides console (text) and JSON handler setup, attribute helpers, and
// component-scoped loggers so packages log with consistent keys without
// depending on handler details.
package logging
