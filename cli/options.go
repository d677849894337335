package cli

import (
	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/config"
)

// Options describes the mcptool command line. The endpoint comes either from
// a YAML config document (-f) or from the transport flags directly.
type Options struct {
	ConfigURL string `short:"f" long:"config" description:"endpoint config document (yaml), any afs URL"`

	Transport config.Transport `group:"transport"`
	Auth      config.OAuth2    `group:"auth"`

	Name    string `short:"n" long:"name" description:"client name advertised to the endpoint" default:"mcptool"`
	Timeout int    `long:"timeout" description:"per call timeout in seconds" default:"60"`

	Args struct {
		Operation string   `positional-arg-name:"operation" description:"tools | declarations | call | resources | read | templates | prompts | prompt | ping"`
		Name      string   `positional-arg-name:"name" description:"tool/prompt name or resource URI"`
		Input     []string `positional-arg-name:"input" description:"JSON arguments or key=value pairs"`
	} `positional-args:"yes"`
}
