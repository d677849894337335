package mcpnode

import (
	"context"
	"errors"
	"time"

	"github.com/viant/mcp-protocol/schema"

	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/client"
	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/config"
	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/session"
)

const defaultCallTimeout = 60 * time.Second

// Service is the call-site surface: each operation takes an endpoint
// configuration, reuses (or establishes) the pooled session for it and runs
// one remote call. Broken sessions are rotated on the next call; the service
// never retries an operation on its own.
type Service struct {
	name        string
	version     string
	registry    *session.Registry
	dial        DialFunc
	callTimeout time.Duration
}

// ServiceOption customizes a Service.
type ServiceOption func(s *Service)

// WithName sets the client name advertised during the handshake.
func WithName(name string) ServiceOption {
	return func(s *Service) {
		s.name = name
	}
}

// WithVersion sets the client version advertised during the handshake.
func WithVersion(version string) ServiceOption {
	return func(s *Service) {
		s.version = version
	}
}

// WithCallTimeout bounds each remote operation, handshake included.
func WithCallTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.callTimeout = timeout
	}
}

// WithRegistry substitutes the session registry, e.g. one with an idle TTL.
func WithRegistry(registry *session.Registry) ServiceOption {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithDialFunc substitutes the connection factory.
func WithDialFunc(dial DialFunc) ServiceOption {
	return func(s *Service) {
		s.dial = dial
	}
}

// New creates a Service with its own session registry unless one is supplied.
func New(options ...ServiceOption) *Service {
	ret := &Service{
		name:        "MCPClient",
		version:     "0.1",
		dial:        dial,
		callTimeout: defaultCallTimeout,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.registry == nil {
		ret.registry = session.New()
	}
	return ret
}

// Registry exposes the underlying session registry.
func (s *Service) Registry() *session.Registry {
	return s.registry
}

// Shutdown closes every pooled connection.
func (s *Service) Shutdown() error {
	return s.registry.Shutdown()
}

// connected resolves the session for the configuration, rotating away from a
// broken one, and ensures it holds a live client.
func (s *Service) connected(ctx context.Context, cfg *config.Config) (*session.Session, *client.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	fingerprint := cfg.Fingerprint()
	sess := s.registry.Resolve(fingerprint)
	if sess.Status() == session.StatusBroken {
		sess = s.registry.Rotate(fingerprint, sess)
	}
	if cli, ok := sess.Client(); ok {
		return sess, cli, nil
	}
	connectCtx := ctx
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}
	cli, err := sess.Connect(connectCtx, s.dialer(cfg))
	if err != nil {
		return nil, nil, err
	}
	return sess, cli, nil
}

func (s *Service) dialer(cfg *config.Config) session.Dialer {
	return func(ctx context.Context) (session.Conn, *client.Client, error) {
		conn, err := s.dial(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return conn, client.New(s.name, s.version, conn), nil
	}
}

// operr wraps a failed call, marking the session broken when the underlying
// transport faulted. A server-side error leaves the session usable.
func (s *Service) operr(sess *session.Session, method string, err error) error {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		sess.Fail(err)
	}
	return &OperationError{Method: method, Fingerprint: sess.Fingerprint(), Err: err}
}

// ListTools lists every tool the endpoint exposes, following pagination.
func (s *Service) ListTools(ctx context.Context, cfg *config.Config) ([]schema.Tool, error) {
	sess, cli, err := s.connected(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var tools []schema.Tool
	var cursor *string
	for {
		page, err := cli.ListTools(ctx, cursor, client.WithRequestTimeout(s.callTimeout))
		if err != nil {
			return nil, s.operr(sess, schema.MethodToolsList, err)
		}
		tools = append(tools, page.Tools...)
		if page.NextCursor == nil || *page.NextCursor == "" {
			return tools, nil
		}
		cursor = page.NextCursor
	}
}

// CallTool invokes a named tool with the supplied arguments.
func (s *Service) CallTool(ctx context.Context, cfg *config.Config, name string, arguments map[string]any) (*schema.CallToolResult, error) {
	sess, cli, err := s.connected(ctx, cfg)
	if err != nil {
		return nil, err
	}
	result, err := cli.CallTool(ctx, &schema.CallToolRequestParams{Name: name, Arguments: arguments}, client.WithRequestTimeout(s.callTimeout))
	if err != nil {
		return nil, s.operr(sess, schema.MethodToolsCall, err)
	}
	return result, nil
}

// ListResources lists every resource the endpoint exposes, following pagination.
func (s *Service) ListResources(ctx context.Context, cfg *config.Config) ([]schema.Resource, error) {
	sess, cli, err := s.connected(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var resources []schema.Resource
	var cursor *string
	for {
		page, err := cli.ListResources(ctx, cursor, client.WithRequestTimeout(s.callTimeout))
		if err != nil {
			return nil, s.operr(sess, schema.MethodResourcesList, err)
		}
		resources = append(resources, page.Resources...)
		if page.NextCursor == nil || *page.NextCursor == "" {
			return resources, nil
		}
		cursor = page.NextCursor
	}
}

// ReadResource reads a resource by URI.
func (s *Service) ReadResource(ctx context.Context, cfg *config.Config, uri string) (*schema.ReadResourceResult, error) {
	sess, cli, err := s.connected(ctx, cfg)
	if err != nil {
		return nil, err
	}
	result, err := cli.ReadResource(ctx, &schema.ReadResourceRequestParams{Uri: uri}, client.WithRequestTimeout(s.callTimeout))
	if err != nil {
		return nil, s.operr(sess, schema.MethodResourcesRead, err)
	}
	return result, nil
}

// ListResourceTemplates lists every resource template, following pagination.
func (s *Service) ListResourceTemplates(ctx context.Context, cfg *config.Config) ([]schema.ResourceTemplate, error) {
	sess, cli, err := s.connected(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var templates []schema.ResourceTemplate
	var cursor *string
	for {
		page, err := cli.ListResourceTemplates(ctx, cursor, client.WithRequestTimeout(s.callTimeout))
		if err != nil {
			return nil, s.operr(sess, schema.MethodResourcesTemplatesList, err)
		}
		templates = append(templates, page.ResourceTemplates...)
		if page.NextCursor == nil || *page.NextCursor == "" {
			return templates, nil
		}
		cursor = page.NextCursor
	}
}

// ListPrompts lists every prompt the endpoint exposes, following pagination.
func (s *Service) ListPrompts(ctx context.Context, cfg *config.Config) ([]schema.Prompt, error) {
	sess, cli, err := s.connected(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var prompts []schema.Prompt
	var cursor *string
	for {
		page, err := cli.ListPrompts(ctx, cursor, client.WithRequestTimeout(s.callTimeout))
		if err != nil {
			return nil, s.operr(sess, schema.MethodPromptsList, err)
		}
		prompts = append(prompts, page.Prompts...)
		if page.NextCursor == nil || *page.NextCursor == "" {
			return prompts, nil
		}
		cursor = page.NextCursor
	}
}

// GetPrompt fetches a prompt by name.
func (s *Service) GetPrompt(ctx context.Context, cfg *config.Config, name string, arguments map[string]string) (*schema.GetPromptResult, error) {
	sess, cli, err := s.connected(ctx, cfg)
	if err != nil {
		return nil, err
	}
	result, err := cli.GetPrompt(ctx, &schema.GetPromptRequestParams{Name: name, Arguments: arguments}, client.WithRequestTimeout(s.callTimeout))
	if err != nil {
		return nil, s.operr(sess, schema.MethodPromptsGet, err)
	}
	return result, nil
}

// Ping checks that the pooled session for the configuration is usable.
func (s *Service) Ping(ctx context.Context, cfg *config.Config) error {
	sess, cli, err := s.connected(ctx, cfg)
	if err != nil {
		return err
	}
	if _, err = cli.Ping(ctx, &schema.PingRequestParams{}, client.WithRequestTimeout(s.callTimeout)); err != nil {
		return s.operr(sess, schema.MethodPing, err)
	}
	return nil
}
