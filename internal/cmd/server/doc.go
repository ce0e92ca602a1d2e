// Package serverrun boots a single-node OneVault server: it opens the
// runtime, builds the vault service, and serves the HTTP API until the
// context is cancelled or a termination signal arrives.
package serverrun
