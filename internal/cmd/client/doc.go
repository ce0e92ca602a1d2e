// Package client provides the `onevault` command-line client.
//
// The CLI talks to the OneVault HTTP API to perform common record and
// tenant operations from a terminal. It is primarily intended for
// developers and operators.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it is
// read from the ONEVAULT_HTTP environment variable and defaults to
// http://127.0.0.1:8080.
//
// Usage
//
//	onevault tenant create --name acme
//
//	onevault record write \
//	    --type customer --tenant acme --key cust-1 \
//	    --payload '{"name":"Ada","email":"ada@example.com"}' \
//	    --actor importer
//
//	onevault record current --type customer --tenant acme --key cust-1
//	onevault record asof --type customer --tenant acme --key cust-1 --at 2026-01-01T00:00:00Z
//	onevault record history --type customer --tenant acme --key cust-1 --reverse
//	onevault record close --type customer --tenant acme --key cust-1
//
//	onevault schema register --type customer \
//	    --required name,email \
//	    --constraint 'has(json.email) && json.email.contains("@")'
//
//	onevault audit tail --filter 'tenant == "acme"' --limit 100
//
// Notes
//
//   - record write accepts inline JSON, @file, or - (stdin) for --payload.
//     A write whose payload matches the current version byte-for-semantics
//     is reported with "changed": false and creates no version.
//   - audit tail requires the server's audit sink to be the persistent
//     store (the default).
package client
