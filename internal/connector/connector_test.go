package connector

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestCapabilitiesOfIncludesServerIdentity(t *testing.T) {
	res := &mcp.InitializeResult{
		ServerInfo: mcp.Implementation{Name: "acme-gateway", Version: "2.1.0"},
	}

	caps := capabilitiesOf(res)

	server, ok := caps["server"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "acme-gateway", server["name"])
	assert.Equal(t, "2.1.0", server["version"])
	assert.NotContains(t, caps, "tools")
	assert.NotContains(t, caps, "resources")
	assert.NotContains(t, caps, "prompts")
	assert.NotContains(t, caps, "logging")
}

func TestCapabilitiesOfIncludesDeclaredCapabilities(t *testing.T) {
	res := &mcp.InitializeResult{
		ServerInfo: mcp.Implementation{Name: "acme-gateway", Version: "2.1.0"},
		Capabilities: mcp.ServerCapabilities{
			Tools:     &struct{ ListChanged bool }{ListChanged: true},
			Resources: &struct{ Subscribe, ListChanged bool }{Subscribe: true, ListChanged: false},
			Prompts:   &struct{ ListChanged bool }{ListChanged: true},
			Logging:   &struct{}{},
		},
	}

	caps := capabilitiesOf(res)

	tools, ok := caps["tools"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, true, tools["listChanged"])

	resources, ok := caps["resources"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, true, resources["subscribe"])
	assert.Equal(t, false, resources["listChanged"])

	prompts, ok := caps["prompts"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, true, prompts["listChanged"])

	assert.Contains(t, caps, "logging")
}

func TestSchemaToMapIncludesPropertiesAndRequired(t *testing.T) {
	schema := mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"query": map[string]any{"type": "string"},
		},
		Required: []string{"query"},
	}

	out := schemaToMap(schema)

	assert.Equal(t, "object", out["type"])
	assert.Equal(t, schema.Properties, out["properties"])
	assert.Equal(t, []string{"query"}, out["required"])
}

func TestSchemaToMapOmitsEmptyFields(t *testing.T) {
	schema := mcp.ToolInputSchema{Type: "object"}

	out := schemaToMap(schema)

	assert.Equal(t, "object", out["type"])
	assert.NotContains(t, out, "properties")
	assert.NotContains(t, out, "required")
}
