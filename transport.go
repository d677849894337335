package mcpnode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/jsonrpc/transport/client/http/sse"
	"github.com/viant/jsonrpc/transport/client/http/streamable"
	"github.com/viant/jsonrpc/transport/client/stdio"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/config"
	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/session"
)

// DialFunc opens a connection for an endpoint configuration. The default
// builds a stdio, sse or streamable jsonrpc transport; tests and embedders
// may substitute their own.
type DialFunc func(ctx context.Context, cfg *config.Config) (session.Conn, error)

// dial constructs a jsonrpc transport matching the configured kind.
func dial(ctx context.Context, cfg *config.Config) (session.Conn, error) {
	// the pooled connection outlives the dialing caller, so transports are
	// built on a session-lifetime context; per-call deadlines bound the
	// individual requests instead
	ctx = context.Background()
	switch cfg.Transport.Type {
	case config.TransportStdio:
		command, args := launchSpec(&cfg.Transport.StdioTransport)
		ret, err := stdio.New(command, stdio.WithArguments(args...))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdio transport: %w", err)
		}
		return &conn{Transport: ret}, nil
	case config.TransportSSE:
		opts := []sse.Option{sse.WithHandler(&serverRequestHandler{})}
		if httpClient := httpClientFor(cfg); httpClient != nil {
			opts = append(opts, sse.WithHttpClient(httpClient), sse.WithMessageHttpClient(httpClient))
		}
		ret, err := sse.New(ctx, cfg.Transport.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSE transport: %w", err)
		}
		return &conn{Transport: ret}, nil
	case config.TransportStreamable:
		opts := []streamable.Option{streamable.WithHandler(&serverRequestHandler{})}
		if httpClient := httpClientFor(cfg); httpClient != nil {
			opts = append(opts, streamable.WithHTTPClient(httpClient))
		}
		ret, err := streamable.New(ctx, cfg.Transport.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create streamable transport: %w", err)
		}
		return &conn{Transport: ret}, nil
	}
	return nil, fmt.Errorf("no transport configured")
}

// conn adapts a jsonrpc transport to session.Conn. Transports that expose a
// Close release their resources; the rest end with the process.
type conn struct {
	transport.Transport
}

func (c *conn) Close() error {
	if closer, ok := c.Transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// launchSpec builds the argv for a stdio endpoint. The stdio transport
// spawns the process itself, so environment overrides are injected via
// env(1) rather than an exec.Cmd.
func launchSpec(options *config.StdioTransport) (string, []string) {
	if len(options.Env) == 0 {
		return options.Command, options.Arguments
	}
	keys := make([]string, 0, len(options.Env))
	for k := range options.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys)+1+len(options.Arguments))
	for _, k := range keys {
		args = append(args, k+"="+options.Env[k])
	}
	args = append(args, options.Command)
	args = append(args, options.Arguments...)
	return "env", args
}

// httpClientFor assembles the HTTP client for sse/streamable endpoints:
// extra headers on every request, plus an oauth2 client-credentials token
// source when configured. The token source refreshes for as long as the
// session lives, so it must not be tied to any caller's context.
func httpClientFor(cfg *config.Config) *http.Client {
	base := http.DefaultClient
	if cfg.Auth != nil {
		oauth := &clientcredentials.Config{
			TokenURL:     cfg.Auth.TokenURL,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			Scopes:       cfg.Auth.Scopes,
		}
		base = oauth.Client(context.Background())
	}
	if len(cfg.Transport.Headers) == 0 {
		if cfg.Auth == nil {
			return nil
		}
		return base
	}
	return &http.Client{
		Transport: &headerRoundTripper{base: base.Transport, headers: cfg.Transport.Headers},
		Timeout:   base.Timeout,
		Jar:       base.Jar,
	}
}

// serverRequestHandler answers server-initiated requests. The pooled client
// serves workflow steps only, so every server request is rejected as
// unsupported.
type serverRequestHandler struct{}

func (h *serverRequestHandler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = request.Jsonrpc
	response.Error = jsonrpc.NewMethodNotFound(request.Method, nil)
}

func (h *serverRequestHandler) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
}
