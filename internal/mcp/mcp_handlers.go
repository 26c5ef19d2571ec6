package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/viability/core"
	"github.com/huangsam/viability/core/dimension"
	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	src     contract.DatasetSource
}

// scoreResponse is the score_countries payload.
type scoreResponse struct {
	RunID           string                       `json:"run_id"`
	Persona         string                       `json:"persona"`
	PersonaFallback bool                         `json:"persona_fallback,omitempty"`
	Weights         map[schema.Dimension]float64 `json:"weights"`
	Countries       []schema.RankedCountry       `json:"countries"`
	Warnings        []string                     `json:"warnings,omitempty"`
}

// dimensionResponse is the dimension_scores payload.
type dimensionResponse struct {
	Dimension     schema.Dimension                       `json:"dimension"`
	UsedFallback  bool                                   `json:"used_fallback"`
	Scores        map[string]float64                     `json:"scores"`
	Contributions map[string][]schema.MetricContribution `json:"contributions,omitempty"`
	Datasets      []schema.DatasetReport                 `json:"datasets,omitempty"`
}

// applyCommon copies the shared tool arguments onto a clone of the base config.
func (h *toolHandler) applyCommon(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("persona", ""); p != "" {
		cfg.Persona = p
	}
	if c := request.GetString("countries", ""); c != "" {
		cfg.Countries = contract.ParseList(c)
	}
	return cfg
}

func textResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleScoreCountries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.applyCommon(request)
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}
	cfg.Ascending = request.GetBool("ascending", cfg.Ascending)
	cfg.Explain = false

	report, err := core.GetScoreResults(ctx, cfg, h.src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	return textResult(scoreResponse{
		RunID:           report.Pass.RunID,
		Persona:         report.Pass.Persona,
		PersonaFallback: report.Pass.PersonaFallback,
		Weights:         report.Pass.Composite.Weights,
		Countries:       report.Ranked,
		Warnings:        report.Pass.Warnings,
	}), nil
}

func (h *toolHandler) handleExplainCountry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	country := request.GetString("country", "")
	if country == "" {
		return mcp.NewToolResultError("country is required"), nil
	}
	cfg := h.applyCommon(request)

	explanations, err := core.GetExplainResults(ctx, cfg, h.src, []string{country})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("explain failed: %v", err)), nil
	}
	return textResult(explanations[0]), nil
}

func (h *toolHandler) handleComparePersonas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.applyCommon(request)
	personas := contract.ParseList(request.GetString("personas", ""))

	cmp, err := core.GetComparisonResults(ctx, cfg, h.src, personas)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	return textResult(cmp), nil
}

func (h *toolHandler) handleListPersonas(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	personas, err := core.GetPersonaResults(h.baseCfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing personas failed: %v", err)), nil
	}
	return textResult(personas), nil
}

func (h *toolHandler) handleDimensionScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dim, err := dimension.ParseDimension(request.GetString("dimension", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid dimension: %v", err)), nil
	}
	cfg := h.applyCommon(request)

	pass, err := core.GetDimensionResults(ctx, cfg, h.src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	res := pass.Dimensions[dim]
	return textResult(dimensionResponse{
		Dimension:     dim,
		UsedFallback:  res.UsedFallback,
		Scores:        res.Scores,
		Contributions: res.Contributions,
		Datasets:      res.Datasets,
	}), nil
}

func (h *toolHandler) handleValidateData(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pass, err := core.GetDimensionResults(ctx, h.baseCfg.Clone(), h.src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
	}
	return textResult(core.BuildValidationReport(pass)), nil
}
