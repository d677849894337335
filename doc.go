// Package mcpnode lets stateless workflow steps talk to long-lived MCP
// endpoints without re-establishing a connection on every invocation.
//
// A Service derives a fingerprint from each endpoint configuration, keeps at
// most one live connection per fingerprint in a session registry, and hands
// the pooled protocol client to whichever step presents the same
// configuration next, rotating to a fresh session when a connection dies.
// Endpoints are reachable over a spawned subprocess (stdio), a server-sent
// event stream (sse) or a streaming HTTP channel (streamable).
//
// Example:
//
//	svc := mcpnode.New(mcpnode.WithName("workflow"))
//	defer svc.Shutdown()
//	cfg := &config.Config{Transport: config.Transport{Type: config.TransportSSE,
//		HTTPTransport: config.HTTPTransport{URL: "https://mcp.example.com/sse"}}}
//	tools, err := svc.ListTools(ctx, cfg)
//
// Subpackages: config (endpoint configuration and fingerprinting), session
// (the connection registry), client (the MCP protocol client), tool
// (tool-descriptor translation for AI-agent consumers) and cli (the mcptool
// command).
package mcpnode
