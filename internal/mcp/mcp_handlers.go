package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// configFor clones the base config for the repository named in the request.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	repo, err := contract.ParseRepo(request.GetString("repo", ""))
	if err != nil {
		return nil, err
	}
	return h.baseCfg.CloneWithRepo(repo), nil
}

// run resolves the config, calls fetch and encodes its result as JSON text.
// Failures are reported as tool errors so the client can show them.
func run(ctx context.Context, h *toolHandler, request mcp.CallToolRequest, apply func(*contract.Config) error,
	fetch func(context.Context, *contract.Config, contract.SourceClient) (any, error),
) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if apply != nil {
		if err := apply(cfg); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}

	ctx = core.WithSuppressHeader(ctx)
	client, err := core.NewSourceClient(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	result, err := fetch(ctx, cfg, client)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// positive reads an optional positive integer argument into dst.
func positive(request mcp.CallToolRequest, name string, limit int, dst *int) error {
	v := request.GetInt(name, 0)
	if v == 0 {
		return nil
	}
	if v < 0 || v > limit {
		return fmt.Errorf("%s must be between 1 and %d (received %d)", name, limit, v)
	}
	*dst = v
	return nil
}

func (h *toolHandler) handleGetChurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apply := func(cfg *contract.Config) error {
		if b := request.GetString("branch", ""); b != "" {
			cfg.Branch = b
		}
		if err := positive(request, "commits", contract.MaxResultLimit, &cfg.ChurnCommits); err != nil {
			return err
		}
		if err := positive(request, "limit", contract.MaxResultLimit, &cfg.TopFiles); err != nil {
			return err
		}
		cfg.RiskyFiles = min(cfg.RiskyFiles, cfg.TopFiles)
		return nil
	}
	return run(ctx, h, request, apply, func(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (any, error) {
		return core.GetChurnResult(ctx, cfg, client, h.mgr)
	})
}

func (h *toolHandler) handleGetHeatmap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apply := func(cfg *contract.Config) error {
		cfg.Author = request.GetString("author", "")
		return positive(request, "days", contract.MaxHeatmapDays, &cfg.HeatmapDays)
	}
	return run(ctx, h, request, apply, func(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (any, error) {
		return core.GetHeatmapResult(ctx, cfg, client)
	})
}

func (h *toolHandler) handleGetBranches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return run(ctx, h, request, nil, func(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (any, error) {
		return core.GetBranchResult(ctx, cfg, client)
	})
}

func (h *toolHandler) handleGetPRs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return run(ctx, h, request, nil, func(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (any, error) {
		return core.GetPRResult(ctx, cfg, client)
	})
}

// handleGetOverview fails only when the repository itself cannot be loaded.
// Other failed sections are listed under "errors".
func (h *toolHandler) handleGetOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return run(ctx, h, request, nil, func(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (any, error) {
		result, err := core.GetOverview(ctx, cfg, client)
		if errors.Is(err, core.ErrRepositoryUnavailable) {
			return nil, err
		}
		body := struct {
			schema.OverviewResult
			Errors []string `json:"errors,omitempty"`
		}{OverviewResult: result}
		if err != nil {
			body.Errors = strings.Split(err.Error(), "\n")
		}
		return body, nil
	})
}

func (h *toolHandler) handleGetCommitDiff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apply := func(cfg *contract.Config) error {
		cfg.Base = request.GetString("base", "")
		cfg.Head = request.GetString("head", "")
		return nil
	}
	sha := request.GetString("sha", "")
	return run(ctx, h, request, apply, func(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (any, error) {
		return core.GetCommitDiffResult(ctx, cfg, client, sha)
	})
}

func (h *toolHandler) handleScanSecrets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sha := request.GetString("sha", "")
	apply := func(*contract.Config) error {
		if sha == "" {
			return fmt.Errorf("sha is required")
		}
		return nil
	}
	return run(ctx, h, request, apply, func(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (any, error) {
		result, err := core.GetCommitDiffResult(ctx, cfg, client, sha)
		return result.Findings, err
	})
}
