// Package services holds shared error classification for external
// integrations. Sentinel errors let the CLI distinguish configuration
// problems from connection and authorization failures when deciding what to
// print and which exit code to use.
package services
