// Package harvest orchestrates the metadata refresh: connect to each
// configured Plex server, pull every movie section, and atomically replace
// the local cache with the combined result.
package harvest
