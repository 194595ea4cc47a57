// Package library persists harvested movie metadata.
//
// The store is a single SQLite database under the user cache directory, the
// durable snapshot between harvests so graph tweaks don't re-query Plex.
// Corruption is deliberately soft: an unreadable or schema-incompatible
// database is moved aside and the store starts empty rather than failing
// the command.
package library
