// Package client contains the client-side gateway to the worklogger log store.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): account
//     calls (Register/GetSalt/Login/Restore/WhoAmI), profiles, entry queries,
//     insert and delete, the change feed (Subscribe) and export upload URLs.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects an access token via interceptors, transparently
//     refreshes expired tokens, and maps gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound. Other rejections
// come back as *StoreError whose message is the server's, verbatim.
//
// Concurrency & Contexts
//
// GRPCClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
