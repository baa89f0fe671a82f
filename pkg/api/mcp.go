package api

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/provider-directory/pkg/kit"
)

// RegisterMCPTools registers the directory MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, eps Endpoints) {
	kit.RegisterMCPTool(srv, queryTool("search_providers",
		"Search the provider directory by name, city, specialty, state or distance. Returns one page of 20 providers."),
		eps.Search, decodeSearch)

	kit.RegisterMCPTool(srv, queryTool("network_adequacy",
		"Estimate providers per 100,000 residents for the providers matching the filters, against a benchmark of 50."),
		eps.Adequacy, decodeSearch)

	kit.RegisterMCPTool(srv, mcp.NewTool("list_facets",
		mcp.WithDescription("List the primary specialties and states present in the directory."),
	), eps.Facets, func(mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{}, nil
	})
}

func queryTool(name, desc string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(desc),
		mcp.WithString("q", mcp.Description("Case-insensitive text matched against name, city and specialties")),
		mcp.WithArray("specialties", mcp.Description("Exact primary specialties to keep"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("states", mcp.Description("Two-letter state codes to keep"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("location", mcp.Description("Label of the search centre, e.g. a city or ZIP code")),
		mcp.WithNumber("lat", mcp.Description("Latitude of the search centre")),
		mcp.WithNumber("lon", mcp.Description("Longitude of the search centre")),
		mcp.WithNumber("radius", mcp.Description("Radius in miles around lat/lon; 0 disables")),
		mcp.WithNumber("page", mcp.Description("1-based result page")),
	)
}

func decodeSearch(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	sr := &SearchRequest{}
	sr.Query, _ = args["q"].(string)
	sr.Location, _ = args["location"].(string)

	var err error
	if sr.Specialties, err = stringList(args["specialties"]); err != nil {
		return nil, fmt.Errorf("specialties: %w", err)
	}
	if sr.States, err = stringList(args["states"]); err != nil {
		return nil, fmt.Errorf("states: %w", err)
	}
	if v, ok := args["lat"].(float64); ok {
		sr.Lat = &v
	}
	if v, ok := args["lon"].(float64); ok {
		sr.Lon = &v
	}
	if v, ok := args["radius"].(float64); ok {
		sr.Radius = v
	}
	if v, ok := args["page"].(float64); ok {
		sr.Page = int(v)
	}
	return &kit.MCPDecodeResult{Request: sr}, nil
}

// stringList accepts a JSON array of strings or a comma-separated string.
func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return kit.SplitList(t), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return t, nil
	}
	return nil, fmt.Errorf("expected a list, got %T", v)
}

// NewMCPServer returns an MCP server exposing the directory tools.
func NewMCPServer(eps Endpoints, version string) *server.MCPServer {
	srv := server.NewMCPServer("provider-directory", version, server.WithToolCapabilities(false))
	RegisterMCPTools(srv, eps)
	return srv
}
