// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Viability MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, src contract.DatasetSource) *server.MCPServer {
	s := server.NewMCPServer(
		"Viability Index Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		src:     src,
	}

	// --- 1. Tool: score_countries ---
	s.AddTool(mcp.NewTool("score_countries",
		mcp.WithDescription("Rank countries by their coal viability index. Higher means weaker viability."),
		mcp.WithString("persona", mcp.Description("Persona weighting the dimensions. Defaults to 'analyst'."), mcp.Enum(schema.AllPersonas...)),
		mcp.WithString("countries", mcp.Description("Comma-separated countries to score (defaults to every country in the data).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithBoolean("ascending", mcp.Description("Rank the most viable countries first.")),
	), h.handleScoreCountries)

	// --- 2. Tool: explain_country ---
	s.AddTool(mcp.NewTool("explain_country",
		mcp.WithDescription("Explain how the viability index of one country was built, down to each metric."),
		mcp.WithString("country", mcp.Description("Country name or ISO3 code."), mcp.Required()),
		mcp.WithString("persona", mcp.Description("Persona weighting the dimensions.")),
	), h.handleExplainCountry)

	// --- 3. Tool: compare_personas ---
	s.AddTool(mcp.NewTool("compare_personas",
		mcp.WithDescription("Compare the index of each country under several personas."),
		mcp.WithString("personas", mcp.Description("Comma-separated personas (defaults to all).")),
		mcp.WithString("countries", mcp.Description("Comma-separated countries to compare.")),
	), h.handleComparePersonas)

	// --- 4. Tool: list_personas ---
	s.AddTool(mcp.NewTool("list_personas",
		mcp.WithDescription("List the personas and the weight each gives to every dimension."),
	), h.handleListPersonas)

	// --- 5. Tool: dimension_scores ---
	s.AddTool(mcp.NewTool("dimension_scores",
		mcp.WithDescription("Return the 0-100 score of every country on one dimension, with the metrics behind it."),
		mcp.WithString("dimension", mcp.Description("Dimension name."), mcp.Required(), mcp.Enum(dimensionNames()...)),
		mcp.WithString("countries", mcp.Description("Comma-separated countries to score.")),
	), h.handleDimensionScores)

	// --- 6. Tool: validate_data ---
	s.AddTool(mcp.NewTool("validate_data",
		mcp.WithDescription("Report data-quality issues for every dataset and check the resulting score table."),
	), h.handleValidateData)

	return s
}

// StartMCPServer starts the Viability MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, src contract.DatasetSource) error {
	s := NewMCPServer(baseCfg, src)
	return server.ServeStdio(s)
}

func dimensionNames() []string {
	out := make([]string, len(schema.AllDimensions))
	for i, d := range schema.AllDimensions {
		out[i] = string(d)
	}
	return out
}
