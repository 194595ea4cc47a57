// Package graph derives movie relationship graphs from cached metadata.
//
// Graphs are ephemeral: they are rebuilt from the cache on every invocation
// and exported as Graphviz DOT or a nodes/edges JSON document, never stored.
package graph
