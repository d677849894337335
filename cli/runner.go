// Package cli implements the mcptool command: one-shot MCP operations
// against an endpoint described by flags or a YAML config document.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	mcpnode "github.com/MeAiXueXi/n8n-nodes-mcp-playwright"
	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/config"
	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/tool"
)

// Run parses args, executes a single operation and prints its result as JSON.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	cfg, err := endpointConfig(ctx, options)
	if err != nil {
		return err
	}
	service := mcpnode.New(
		mcpnode.WithName(options.Name),
		mcpnode.WithCallTimeout(time.Duration(options.Timeout)*time.Second))
	defer func() { _ = service.Shutdown() }()

	result, err := execute(ctx, service, cfg, options)
	if err != nil {
		return err
	}
	return print(result)
}

// endpointConfig builds the endpoint configuration from the config document
// when supplied, otherwise from the transport flags.
func endpointConfig(ctx context.Context, options *Options) (*config.Config, error) {
	if options.ConfigURL != "" {
		fs := afs.New()
		data, err := fs.DownloadWithURL(ctx, options.ConfigURL)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %v: %w", options.ConfigURL, err)
		}
		cfg := &config.Config{}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %v: %w", options.ConfigURL, err)
		}
		return cfg, cfg.Validate()
	}
	cfg := &config.Config{Transport: options.Transport}
	if options.Auth.TokenURL != "" {
		cfg.Auth = &options.Auth
	}
	return cfg, cfg.Validate()
}

func execute(ctx context.Context, service *mcpnode.Service, cfg *config.Config, options *Options) (any, error) {
	switch options.Args.Operation {
	case "tools":
		return service.ListTools(ctx, cfg)
	case "declarations":
		tools, err := service.ListTools(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return tool.FromTools(tools)
	case "call":
		if options.Args.Name == "" {
			return nil, fmt.Errorf("call requires a tool name")
		}
		arguments, err := toolArguments(options.Args.Input)
		if err != nil {
			return nil, err
		}
		return service.CallTool(ctx, cfg, options.Args.Name, arguments)
	case "resources":
		return service.ListResources(ctx, cfg)
	case "read":
		if options.Args.Name == "" {
			return nil, fmt.Errorf("read requires a resource URI")
		}
		return service.ReadResource(ctx, cfg, options.Args.Name)
	case "templates":
		return service.ListResourceTemplates(ctx, cfg)
	case "prompts":
		return service.ListPrompts(ctx, cfg)
	case "prompt":
		if options.Args.Name == "" {
			return nil, fmt.Errorf("prompt requires a prompt name")
		}
		arguments := map[string]string{}
		for _, pair := range options.Args.Input {
			key, value, _ := strings.Cut(pair, "=")
			arguments[key] = value
		}
		return service.GetPrompt(ctx, cfg, options.Args.Name, arguments)
	case "ping":
		if err := service.Ping(ctx, cfg); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil
	case "":
		return nil, fmt.Errorf("no operation, expected one of: tools, declarations, call, resources, read, templates, prompts, prompt, ping")
	}
	return nil, fmt.Errorf("unsupported operation: %v", options.Args.Operation)
}

// toolArguments accepts either a single JSON object or key=value pairs.
func toolArguments(input []string) (map[string]any, error) {
	arguments := map[string]any{}
	if len(input) == 1 && strings.HasPrefix(strings.TrimSpace(input[0]), "{") {
		if err := json.Unmarshal([]byte(input[0]), &arguments); err != nil {
			return nil, fmt.Errorf("invalid JSON arguments: %w", err)
		}
		return arguments, nil
	}
	for _, pair := range input {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid argument %q, expected key=value or a JSON object", pair)
		}
		arguments[key] = value
	}
	return arguments, nil
}

func print(result any) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
