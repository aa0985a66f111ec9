// Package cli provides the interactive fsr terminal client.
//
// It wires configuration, the chosen storage backend, the local account
// session and the report repository behind a small REPL. Typical flow: the
// remembered account is restored (or the user signs in), a report is created
// or opened, and entries are added, reordered or removed until the report is
// exported.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends. See App and runREPL for details.
package cli
