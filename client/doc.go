// Package client implements the MCP protocol client used by the session
// layer. It wraps a jsonrpc transport, performs the `initialize` handshake
// and exposes strongly typed operations (ListTools, CallTool, ReadResource,
// GetPrompt, ...) that avoid manual request/response handling.
//
// The package is transport-agnostic; callers supply any implementation that
// satisfies the jsonrpc/transport.Transport interface. Failures of the
// underlying channel are reported as *TransportError so callers can tell a
// dead transport apart from a server-side JSON-RPC error.
package client
