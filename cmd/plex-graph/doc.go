// Command plex-graph harvests movie metadata from Plex media servers and
// renders shared-attribute relationship graphs from the local cache.
package main
