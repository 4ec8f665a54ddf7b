// Package cli provides the interactive storykeeper command-line client.
//
// App wires configuration and the HTTP API client and runs a small REPL:
// register, log in, inspect the current account, list, add and delete
// stories and trigger the server's country backfill. Tokens live only in
// memory; an expired access token is renewed once with the refresh token
// before a command gives up.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
