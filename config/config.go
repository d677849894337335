package config

import (
	"fmt"
	"net/url"
)

// Transport type discriminants.
const (
	TransportStdio      = "stdio"
	TransportSSE        = "sse"
	TransportStreamable = "streamable"
)

// Config describes how to reach an MCP endpoint. A Config is immutable once
// built for a call; identity is derived from it via Fingerprint.
type Config struct {
	Transport Transport `yaml:"transport" json:"transport"`
	Auth      *OAuth2   `yaml:"auth,omitempty" json:"auth,omitempty"`
}

// Transport selects the endpoint channel kind and its kind-specific settings.
type Transport struct {
	Type            string `yaml:"type" json:"type" short:"T" long:"transport-type" description:"mcp transport type" choice:"stdio" choice:"sse" choice:"streamable"`
	StdioTransport `yaml:",inline"`
	HTTPTransport  `yaml:",inline"`
}

// StdioTransport holds options for a spawned subprocess endpoint.
type StdioTransport struct {
	Command   string            `yaml:"command,omitempty" json:"command,omitempty" short:"C" long:"command" description:"mcp command"`
	Arguments []string          `yaml:"arguments,omitempty" json:"arguments,omitempty" short:"A" long:"argument" description:"mcp command arguments"`
	Env       map[string]string `yaml:"env,omitempty" json:"env,omitempty" short:"E" long:"env" description:"extra environment variables"`
}

// HTTPTransport holds options shared by the sse and streamable kinds.
type HTTPTransport struct {
	URL string `yaml:"url,omitempty" json:"url,omitempty" short:"u" long:"url" description:"mcp url"`
	// MessageURL overrides the post endpoint for servers that host the
	// message channel separately from the event stream. The sse transport
	// discovers the endpoint from the stream itself; the override still
	// participates in connection identity.
	MessageURL string            `yaml:"messageURL,omitempty" json:"messageURL,omitempty" long:"message-url" description:"mcp message endpoint"`
	Headers    map[string]string `yaml:"headers,omitempty" json:"headers,omitempty" short:"H" long:"header" description:"extra request headers"`
}

// OAuth2 configures a client-credentials token source for HTTP transports.
type OAuth2 struct {
	TokenURL     string   `yaml:"tokenURL" json:"tokenURL" long:"token-url" description:"oauth2 token url"`
	ClientID     string   `yaml:"clientID" json:"clientID" long:"client-id" description:"oauth2 client id"`
	ClientSecret string   `yaml:"clientSecret" json:"clientSecret" long:"client-secret" description:"oauth2 client secret"`
	Scopes       []string `yaml:"scopes,omitempty" json:"scopes,omitempty" long:"scope" description:"oauth2 scopes"`
}

// Error reports a malformed Config, detected before fingerprinting.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid endpoint config: %v: %v", e.Field, e.Message)
}

// Validate checks the Config for structural problems.
func (c *Config) Validate() error {
	switch c.Transport.Type {
	case TransportStdio:
		if c.Transport.Command == "" {
			return &Error{Field: "transport.command", Message: "command is required for stdio transport"}
		}
	case TransportSSE, TransportStreamable:
		if c.Transport.URL == "" {
			return &Error{Field: "transport.url", Message: "URL is required for " + c.Transport.Type + " transport"}
		}
		parsed, err := url.Parse(c.Transport.URL)
		if err != nil || !parsed.IsAbs() {
			return &Error{Field: "transport.url", Message: "URL must be absolute"}
		}
	case "":
		return &Error{Field: "transport.type", Message: "no transport configured"}
	default:
		return &Error{Field: "transport.type", Message: "unsupported transport type " + c.Transport.Type}
	}
	if c.Auth != nil {
		if c.Auth.TokenURL == "" {
			return &Error{Field: "auth.tokenURL", Message: "token URL is required"}
		}
		if c.Auth.ClientID == "" {
			return &Error{Field: "auth.clientID", Message: "client id is required"}
		}
	}
	return nil
}
