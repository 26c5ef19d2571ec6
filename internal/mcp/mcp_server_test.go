package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/viability/internal/contract"
	mcp_internal "github.com/huangsam/viability/internal/mcp"
	"github.com/huangsam/viability/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func row(values ...string) []schema.Cell {
	out := make([]schema.Cell, len(values))
	for i, v := range values {
		out[i] = schema.ParseCell(v)
	}
	return out
}

func testSource() *contract.MockDatasetSource {
	snap := schema.Snapshot{
		schema.EconomicDim: {
			"coal_rents": schema.NewDataset("coal_rents", []string{"Country", "Coal Rents Pct"}, [][]schema.Cell{
				row("India", "8"),
				row("China", "2"),
				row("Germany", "5"),
			}),
		},
	}
	src := &contract.MockDatasetSource{}
	src.On("Load", mock.Anything).Return(snap, nil)
	src.On("Name").Return("csv")
	return src
}

func baseConfig() *contract.Config {
	return &contract.Config{
		Persona:     schema.DefaultPersona,
		ResultLimit: 25,
		Precision:   1,
		Output:      schema.TextOut,
		Workers:     2,
	}
}

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(baseConfig(), testSource())
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	t.Run("explain_country missing country", func(t *testing.T) {
		res := callTool(t, "explain_country", map[string]any{"country": ""})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, resultText(res), "country is required")
	})

	t.Run("explain_country unknown country", func(t *testing.T) {
		res := callTool(t, "explain_country", map[string]any{"country": "Atlantis"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "explain failed")
	})

	t.Run("dimension_scores invalid dimension", func(t *testing.T) {
		res := callTool(t, "dimension_scores", map[string]any{"dimension": "vibes"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "invalid dimension")
	})
}

func TestMCPServerHandlers_Results(t *testing.T) {
	t.Run("score_countries", func(t *testing.T) {
		res := callTool(t, "score_countries", map[string]any{
			"persona":   "investor",
			"limit":     2.0,
			"ascending": true,
		})
		require.False(t, res.IsError, resultText(res))

		var payload struct {
			Persona   string                 `json:"persona"`
			Countries []schema.RankedCountry `json:"countries"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &payload))
		assert.Equal(t, schema.InvestorPersona, payload.Persona)
		require.Len(t, payload.Countries, 2)
		assert.LessOrEqual(t, payload.Countries[0].Index, payload.Countries[1].Index)
	})

	t.Run("explain_country", func(t *testing.T) {
		res := callTool(t, "explain_country", map[string]any{"country": "IND"})
		require.False(t, res.IsError, resultText(res))

		var ex schema.CountryExplanation
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &ex))
		assert.Equal(t, "India", ex.Breakdown.Country)
		assert.NotEmpty(t, ex.Metrics[schema.EconomicDim])
	})

	t.Run("compare_personas", func(t *testing.T) {
		res := callTool(t, "compare_personas", map[string]any{"personas": "ngo, investor"})
		require.False(t, res.IsError, resultText(res))

		var cmp schema.PersonaComparison
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &cmp))
		assert.Equal(t, []string{schema.NGOPersona, schema.InvestorPersona}, cmp.Personas)
	})

	t.Run("list_personas", func(t *testing.T) {
		res := callTool(t, "list_personas", map[string]any{})
		require.False(t, res.IsError, resultText(res))

		var personas []schema.PersonaInfo
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &personas))
		assert.Len(t, personas, len(schema.AllPersonas))
	})

	t.Run("dimension_scores", func(t *testing.T) {
		res := callTool(t, "dimension_scores", map[string]any{"dimension": "economic"})
		require.False(t, res.IsError, resultText(res))
		assert.Contains(t, resultText(res), `"India": 32`)
	})

	t.Run("validate_data", func(t *testing.T) {
		res := callTool(t, "validate_data", map[string]any{})
		require.False(t, res.IsError, resultText(res))

		var report schema.ValidationReport
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &report))
		assert.True(t, report.Scores.Valid)
		assert.Len(t, report.Datasets, 1)
	})
}
