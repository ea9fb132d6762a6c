package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/whoknows/whoknows/core"
	"github.com/whoknows/whoknows/internal/contract"
	"github.com/whoknows/whoknows/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleWhoKnowsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath := request.GetString("file_path", "")
	if filePath == "" {
		return mcp.NewToolResultError("file_path is required"), nil
	}
	if repoPath := request.GetString("repo_path", ""); repoPath != "" && !filepath.IsAbs(filePath) {
		filePath = filepath.Join(repoPath, filePath)
	}

	cacheBackend := string(h.baseCfg.CacheBackend)
	if cacheBackend == "" {
		cacheBackend = string(schema.NoneBackend)
	}
	input := &contract.ConfigRawInput{
		FilePaths:      []string{filePath},
		Limit:          contract.DefaultResultLimit,
		Workers:        1,
		Output:         string(schema.JSONOut),
		Precision:      contract.DefaultPrecision,
		Color:          "no",
		WeightStr:      request.GetString("weight", ""),
		CacheBackend:   cacheBackend,
		CacheDBConnect: h.baseCfg.CacheDBConnect,
	}
	if l := request.GetInt("limit", 0); l > 0 {
		input.Limit = l
	}

	cfg := &contract.Config{IdentityKey: h.baseCfg.IdentityKey}
	client := contract.NewLocalGitClient()
	if err := contract.ProcessAndValidate(ctx, cfg, client, input); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	rankings, err := core.GetFileRankings(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}

	type jsonRanking struct {
		Path    string                        `json:"path"`
		Authors []schema.EnrichedAuthorResult `json:"authors"`
	}
	output := make([]jsonRanking, len(rankings))
	for i, r := range rankings {
		output[i] = jsonRanking{Path: r.Path, Authors: schema.EnrichAuthors(r.Authors)}
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
