// Package cli provides the interactive worklogger command-line client.
//
// It wires configuration, the local SQLite store, the gRPC log store client,
// the identity context, both entry projections and the sync controller, then
// hands control to a REPL. Typical flow: restore the stored session or login,
// complete onboarding if the profile is missing, log work, list it, export it.
//
// Commands:
//   - register, login, logout, onboard
//   - log: fill and submit the entry form
//   - mine, recent: print the projections
//   - delete <id>: remove an own entry after confirmation
//   - export [all|mine|<category>] [csv|xlsx] [--upload]
//   - uploads: retry export uploads that failed
//   - status, help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
