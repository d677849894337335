// Package tool translates MCP tool descriptors into provider-neutral
// function declarations an AI-agent consumer can register directly.
package tool

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/viant/mcp-protocol/schema"
)

// maxNameLength matches the tightest function-name limit among common
// agent providers.
const maxNameLength = 64

var disallowed = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Declaration is an invocable-function schema derived from an MCP tool.
type Declaration struct {
	// Name is the sanitized function name presented to the agent.
	Name string `json:"name" yaml:"name"`
	// Tool is the original MCP tool name, used when invoking the endpoint.
	Tool        string         `json:"tool" yaml:"tool"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters"`
}

// FromTool converts a single tool descriptor. The input schema is passed
// through as a JSON-schema document, defaulting to an empty object schema.
func FromTool(aTool *schema.Tool) (*Declaration, error) {
	if aTool.Name == "" {
		return nil, fmt.Errorf("tool has no name")
	}
	parameters, err := asMap(aTool.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("tool %v has an invalid input schema: %w", aTool.Name, err)
	}
	if _, ok := parameters["type"]; !ok {
		parameters["type"] = "object"
	}
	ret := &Declaration{
		Name:       SanitizeName(aTool.Name),
		Tool:       aTool.Name,
		Parameters: parameters,
	}
	if aTool.Description != nil {
		ret.Description = *aTool.Description
	}
	return ret, nil
}

// FromTools converts a tool listing, skipping descriptors that do not
// translate and reporting them in the returned error.
func FromTools(tools []schema.Tool) ([]Declaration, error) {
	ret := make([]Declaration, 0, len(tools))
	var failures []string
	for i := range tools {
		declaration, err := FromTool(&tools[i])
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		ret = append(ret, *declaration)
	}
	if len(failures) > 0 {
		return ret, fmt.Errorf("failed to translate %v tool(s): %v", len(failures), strings.Join(failures, "; "))
	}
	return ret, nil
}

// SanitizeName maps a tool name onto the [A-Za-z0-9_-] alphabet agent
// providers accept, collapsing runs of other characters into single
// underscores and clipping to the length limit.
func SanitizeName(name string) string {
	ret := disallowed.ReplaceAllString(name, "_")
	ret = strings.Trim(ret, "_")
	if ret == "" {
		ret = "tool"
	}
	if len(ret) > maxNameLength {
		ret = ret[:maxNameLength]
	}
	return ret
}

func asMap(inputSchema schema.ToolInputSchema) (map[string]any, error) {
	data, err := json.Marshal(inputSchema)
	if err != nil {
		return nil, err
	}
	ret := map[string]any{}
	if err = json.Unmarshal(data, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}
