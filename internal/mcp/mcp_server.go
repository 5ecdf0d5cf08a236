// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// repoArg is the argument every tool uses to select a repository.
var repoArg = mcp.WithString("repo", mcp.Description("Repository as owner/name, e.g. golang/go."), mcp.Required())

// NewMCPServer initializes and configures the repolens MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"repolens",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("get_churn",
		mcp.WithDescription("Rank the files of a GitHub repository by recent churn and by risk score."),
		repoArg,
		mcp.WithString("branch", mcp.Description("Branch to sample commits from (defaults to the default branch).")),
		mcp.WithNumber("commits", mcp.Description("Number of recent commits to sample.")),
		mcp.WithNumber("limit", mcp.Description("Number of files in each ranking.")),
	), h.handleGetChurn)

	s.AddTool(mcp.NewTool("get_heatmap",
		mcp.WithDescription("Count commits per day over a recent window, for the whole repository or one author."),
		repoArg,
		mcp.WithString("author", mcp.Description("Only count commits by this login.")),
		mcp.WithNumber("days", mcp.Description("Window size in days (defaults to 90).")),
	), h.handleGetHeatmap)

	s.AddTool(mcp.NewTool("get_branches",
		mcp.WithDescription("Rank branches by recent commit activity with a 0-100 health score."),
		repoArg,
	), h.handleGetBranches)

	s.AddTool(mcp.NewTool("get_prs",
		mcp.WithDescription("Count open, closed and merged pull requests and rank their authors."),
		repoArg,
	), h.handleGetPRs)

	s.AddTool(mcp.NewTool("get_overview",
		mcp.WithDescription("Describe a repository: languages, top contributors, license, headline totals and dependency manifests."),
		repoArg,
	), h.handleGetOverview)

	s.AddTool(mcp.NewTool("get_commit_diff",
		mcp.WithDescription("Parse the patches of a commit, or of a base...head range, into side-by-side rows."),
		repoArg,
		mcp.WithString("sha", mcp.Description("Commit sha. Leave empty and set base and head to compare two refs.")),
		mcp.WithString("base", mcp.Description("Base ref of a compare range.")),
		mcp.WithString("head", mcp.Description("Head ref of a compare range.")),
	), h.handleGetCommitDiff)

	s.AddTool(mcp.NewTool("scan_secrets",
		mcp.WithDescription("Flag probable credentials in the patches of a commit. Findings are candidates for human review."),
		repoArg,
		mcp.WithString("sha", mcp.Description("Commit sha to scan."), mcp.Required()),
	), h.handleScanSecrets)

	return s
}

// StartMCPServer serves the repolens tools over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
