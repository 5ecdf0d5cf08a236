package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	mcp_internal "github.com/huangsam/repolens/internal/mcp"
	"github.com/huangsam/repolens/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testRepo = schema.RepoRef{Owner: "octo", Name: "hello"}

func baseConfig() *contract.Config {
	return &contract.Config{
		Workers:       1,
		ChurnCommits:  schema.DefaultChurnCommits,
		TopFiles:      schema.DefaultTopFiles,
		RiskyFiles:    schema.DefaultRiskyFiles,
		HeatmapDays:   schema.DefaultHeatmapDays,
		BranchCap:     schema.DefaultBranchCap,
		BranchPage:    schema.DefaultBranchPage,
		TopAuthors:    schema.DefaultTopAuthors,
		CommitListing: schema.DefaultCommitListing,
	}
}

// useClient swaps the source client factory for the duration of a test.
func useClient(t *testing.T, client contract.SourceClient) {
	prev := core.NewSourceClient
	core.NewSourceClient = func(context.Context, *contract.Config, contract.CacheManager) (contract.SourceClient, error) {
		return client, nil
	}
	t.Cleanup(func() { core.NewSourceClient = prev })
}

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "tool failures are reported in the result, not as errors")
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		expected string
	}{
		{"missing repo", "get_churn", map[string]any{}, "invalid parameters"},
		{"malformed repo", "get_branches", map[string]any{"repo": "not a repo"}, "invalid parameters"},
		{"days out of range", "get_heatmap", map[string]any{"repo": "octo/hello", "days": -5.0}, "days must be between 1"},
		{"limit out of range", "get_churn", map[string]any{"repo": "octo/hello", "limit": 5000.0}, "limit must be between 1"},
		{"secrets without sha", "scan_secrets", map[string]any{"repo": "octo/hello"}, "sha is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(res), tt.expected)
		})
	}
}

func TestGetPRsTool(t *testing.T) {
	client := &contract.MockSourceClient{}
	client.On("ListPullRequests", mock.Anything, testRepo).Return([]schema.PullRequest{
		{Number: 1, State: schema.OpenState, Author: "alice"},
	}, nil)
	useClient(t, client)

	res := callTool(t, "get_prs", map[string]any{"repo": "octo/hello"})
	require.False(t, res.IsError, resultText(res))

	var result schema.PRResult
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &result))
	assert.Equal(t, "octo/hello", result.Repo)
	assert.Equal(t, 1, result.Aggregate.Open)
}

func TestGetHeatmapToolAuthor(t *testing.T) {
	client := &contract.MockSourceClient{}
	client.On("ListCommits", mock.Anything, testRepo, mock.MatchedBy(func(q contract.CommitQuery) bool {
		return q.Author == "alice"
	})).Return([]schema.Commit{}, nil)
	useClient(t, client)

	res := callTool(t, "get_heatmap", map[string]any{"repo": "octo/hello", "author": "alice", "days": 7.0})
	require.False(t, res.IsError, resultText(res))

	var result schema.HeatmapResult
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &result))
	assert.Equal(t, "alice", result.Author)
	assert.Len(t, result.Cells, 7)
}

func TestScanSecretsTool(t *testing.T) {
	leak := "@@ -0,0 +1 @@\n+password=hunter2"
	client := &contract.MockSourceClient{}
	client.On("GetCommit", mock.Anything, testRepo, "abc").Return(schema.CommitDetail{
		Commit: schema.Commit{SHA: "abc"},
		Files:  []schema.Patch{{Filename: "app.ini", PatchText: &leak}},
	}, nil)
	useClient(t, client)

	res := callTool(t, "scan_secrets", map[string]any{"repo": "octo/hello", "sha": "abc"})
	require.False(t, res.IsError, resultText(res))

	var findings []schema.SecretFinding
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &findings))
	assert.Equal(t, []schema.SecretFinding{{Filename: "app.ini", Match: "password"}}, findings)
}

func TestToolReportsUpstreamFailure(t *testing.T) {
	client := &contract.MockSourceClient{}
	client.On("ListBranches", mock.Anything, testRepo).Return(nil, errors.New("rate limited"))
	useClient(t, client)

	res := callTool(t, "get_branches", map[string]any{"repo": "octo/hello"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "rate limited")
}

func TestGetOverviewTool(t *testing.T) {
	t.Run("partial sections", func(t *testing.T) {
		client := &contract.MockSourceClient{}
		client.On("GetRepository", mock.Anything, testRepo).Return(schema.Repository{DefaultBranch: "main"}, nil)
		client.On("ListLanguages", mock.Anything, testRepo).Return([]schema.LanguageShare{{Name: "Go", Bytes: 1}}, nil)
		client.On("ListContributors", mock.Anything, testRepo).Return([]schema.Contributor{{Login: "ann", Contributions: 3}}, nil)
		client.On("GetLicense", mock.Anything, testRepo).Return(nil, errors.New("license down"))
		client.On("ListCommits", mock.Anything, testRepo, mock.Anything).Return([]schema.Commit{}, nil)
		client.On("ListPullRequests", mock.Anything, testRepo).Return([]schema.PullRequest{}, nil)
		client.On("GetFileContent", mock.Anything, testRepo, mock.Anything, "").Return(schema.FileContent{}, nil)
		useClient(t, client)

		res := callTool(t, "get_overview", map[string]any{"repo": "octo/hello"})
		require.False(t, res.IsError, resultText(res))

		var result struct {
			schema.OverviewResult
			Errors []string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &result))
		assert.Equal(t, "main", result.DefaultBranch)
		assert.Equal(t, 100.0, result.Languages[0].Percent)
		assert.Len(t, result.Manifests, 3)
		assert.Equal(t, []string{"license: license down"}, result.Errors)
	})

	t.Run("missing repository", func(t *testing.T) {
		client := &contract.MockSourceClient{}
		client.On("GetRepository", mock.Anything, testRepo).Return(schema.Repository{}, errors.New("gone"))
		useClient(t, client)

		res := callTool(t, "get_overview", map[string]any{"repo": "octo/hello"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "failed to get repository octo/hello: gone")
	})
}
