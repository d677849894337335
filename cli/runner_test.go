package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/config"
)

func TestToolArguments(t *testing.T) {
	arguments, err := toolArguments([]string{`{"url": "https://example.com", "fullPage": true}`})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", arguments["url"])
	assert.Equal(t, true, arguments["fullPage"])

	arguments, err = toolArguments([]string{"url=https://example.com", "selector=#main"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", arguments["url"])
	assert.Equal(t, "#main", arguments["selector"])

	_, err = toolArguments([]string{"not-a-pair"})
	assert.NotNil(t, err)
}

func TestEndpointConfig_FromFlags(t *testing.T) {
	options := &Options{}
	options.Transport.Type = config.TransportSSE
	options.Transport.URL = "https://mcp.example.com/sse"
	cfg, err := endpointConfig(context.Background(), options)
	require.NoError(t, err)
	assert.Equal(t, config.TransportSSE, cfg.Transport.Type)
	assert.Nil(t, cfg.Auth)
}

func TestEndpointConfig_FromDocument(t *testing.T) {
	location := filepath.Join(t.TempDir(), "endpoint.yaml")
	document := `transport:
  type: stdio
  command: mcp-server-playwright
  arguments:
    - --headless
  env:
    DISPLAY: ":0"
`
	require.NoError(t, os.WriteFile(location, []byte(document), 0o644))

	options := &Options{ConfigURL: location}
	cfg, err := endpointConfig(context.Background(), options)
	require.NoError(t, err)
	assert.Equal(t, config.TransportStdio, cfg.Transport.Type)
	assert.Equal(t, "mcp-server-playwright", cfg.Transport.Command)
	assert.Equal(t, []string{"--headless"}, cfg.Transport.Arguments)
	assert.Equal(t, ":0", cfg.Transport.Env["DISPLAY"])
}

func TestEndpointConfig_InvalidDocument(t *testing.T) {
	location := filepath.Join(t.TempDir(), "endpoint.yaml")
	require.NoError(t, os.WriteFile(location, []byte("transport:\n  type: stdio\n"), 0o644))

	_, err := endpointConfig(context.Background(), &Options{ConfigURL: location})
	assert.NotNil(t, err)
}
