// Package cli provides the interactive store-lit command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL.
// Typical flow: restore a saved session or sign in with an emailed code,
// then browse, upload and share files.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
