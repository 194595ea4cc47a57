// Package plex talks to plex.tv and to individual Plex media servers.
//
// Three concerns live here: the device-link (PIN) flow that obtains an
// account authorization token, discovery of media servers and their
// connection URLs from the plex.tv resources listing, and the per-server
// HTTP client that enumerates movie library sections and fetches full movie
// metadata for harvesting.
package plex
