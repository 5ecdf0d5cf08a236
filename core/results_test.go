package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/iocache"
	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testRepo = schema.RepoRef{Owner: "octo", Name: "hello"}

func testConfig() *contract.Config {
	return &contract.Config{
		Repo:          testRepo,
		Workers:       2,
		Output:        schema.TextOut,
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

func strPtr(s string) *string { return &s }

func filePatch(name string, adds, dels int) schema.Patch {
	return schema.Patch{Filename: name, Additions: adds, Deletions: dels, Changes: adds + dels, PatchText: strPtr("@@ -1 +1 @@\n-a\n+b")}
}

func TestGetChurnResult(t *testing.T) {
	cfg := testConfig()
	client := &contract.MockSourceClient{}
	client.On("ListCommits", mock.Anything, testRepo, contract.CommitQuery{PerPage: 80, Limit: 80}).
		Return([]schema.Commit{{SHA: "c1"}, {SHA: "c2"}, {SHA: "c3"}}, nil)
	client.On("GetCommit", mock.Anything, testRepo, "c1").
		Return(schema.CommitDetail{Commit: schema.Commit{SHA: "c1"}, Files: []schema.Patch{filePatch("a.go", 10, 0), filePatch("b.go", 1, 1)}}, nil)
	client.On("GetCommit", mock.Anything, testRepo, "c2").
		Return(schema.CommitDetail{}, errors.New("boom"))
	client.On("GetCommit", mock.Anything, testRepo, "c3").
		Return(schema.CommitDetail{Commit: schema.Commit{SHA: "c3"}, Files: []schema.Patch{filePatch("b.go", 5, 5)}}, nil)

	result, err := GetChurnResult(context.Background(), cfg, client, nil)
	require.NoError(t, err)

	assert.Equal(t, "octo/hello", result.Repo)
	assert.Equal(t, 2, result.CommitsSampled)
	assert.Equal(t, 1, result.CommitsSkipped)
	assert.Equal(t, 2, result.TotalFiles)
	require.Len(t, result.TopFiles, 2)
	assert.Equal(t, "b.go", result.TopFiles[0].Filename) // 12 changes
	assert.Equal(t, 2, result.TopFiles[0].EditCount)
	assert.Equal(t, "a.go", result.TopFiles[1].Filename) // 10 changes
	require.Len(t, result.RiskyFiles, 2)
	assert.Equal(t, "b.go", result.RiskyFiles[0].Filename)
	client.AssertExpectations(t)
}

func TestGetChurnResultRecordsHistory(t *testing.T) {
	cfg := testConfig()
	client := &contract.MockSourceClient{}
	client.On("ListCommits", mock.Anything, testRepo, mock.Anything).Return([]schema.Commit{{SHA: "c1"}}, nil)
	client.On("GetCommit", mock.Anything, testRepo, "c1").
		Return(schema.CommitDetail{Commit: schema.Commit{SHA: "c1"}, Files: []schema.Patch{filePatch("a.go", 3, 0), filePatch("b.go", 1, 0)}}, nil)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginRun", "octo/hello", mock.Anything, mock.Anything).Return(int64(7), nil)
	store.On("RecordFileChurn", int64(7), "octo/hello", mock.Anything, mock.Anything).Return(nil).Twice()
	store.On("EndRun", int64(7), mock.Anything, 1, 2).Return(nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetAnalysisStore").Return(store)

	_, err := GetChurnResult(context.Background(), cfg, client, mgr)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestGetChurnResultListFails(t *testing.T) {
	client := &contract.MockSourceClient{}
	client.On("ListCommits", mock.Anything, testRepo, mock.Anything).Return(nil, errors.New("403"))

	result, err := GetChurnResult(context.Background(), testConfig(), client, nil)
	assert.ErrorContains(t, err, "403")
	assert.NotNil(t, result.TopFiles)
	assert.NotNil(t, result.RiskyFiles)
}

func TestGetHeatmapResult(t *testing.T) {
	cfg := testConfig()
	cfg.HeatmapDays = 3
	cfg.Author = "alice"
	ref := time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC)
	ctx := WithReferenceTime(context.Background(), ref)

	client := &contract.MockSourceClient{}
	client.On("ListCommits", mock.Anything, testRepo, contract.CommitQuery{
		Author:  "alice",
		Since:   time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC),
		PerPage: 100,
		Limit:   100,
	}).Return([]schema.Commit{
		{SHA: "1", Author: "alice", Date: ref},
		{SHA: "2", Author: "alice", Date: ref.Add(-24 * time.Hour)},
		{SHA: "3", Author: "bob", Date: ref},
		{SHA: "4", Author: "alice", Date: ref.AddDate(0, 0, -10)},
	}, nil)

	result, err := GetHeatmapResult(ctx, cfg, client)
	require.NoError(t, err)
	assert.Equal(t, []schema.HeatCell{
		{Date: "2026-06-08", Count: 0},
		{Date: "2026-06-09", Count: 1},
		{Date: "2026-06-10", Count: 1},
	}, result.Cells)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "alice", result.Author)
	client.AssertExpectations(t)
}

func TestGetBranchResult(t *testing.T) {
	cfg := testConfig()
	client := &contract.MockSourceClient{}
	client.On("ListBranches", mock.Anything, testRepo).Return([]schema.Branch{
		{Name: "main", HeadSHA: "m"},
		{Name: "dev", HeadSHA: "d"},
		{Name: "broken", HeadSHA: "x"},
	}, nil)
	client.On("CountRecentCommits", mock.Anything, testRepo, "main", 30).Return(15, "m2", nil)
	client.On("CountRecentCommits", mock.Anything, testRepo, "dev", 30).Return(30, "d2", nil)
	client.On("CountRecentCommits", mock.Anything, testRepo, "broken", 30).Return(0, "", errors.New("500"))

	result, err := GetBranchResult(context.Background(), cfg, client)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Rankings.Ranked, 3)
	assert.Equal(t, "dev", result.Rankings.Ranked[0].Name)
	assert.Equal(t, "d2", result.Rankings.Ranked[0].LastCommitID)
	assert.Equal(t, "main", result.Rankings.Ranked[1].Name)
	assert.Equal(t, "broken", result.Rankings.Ranked[2].Name)
	assert.Equal(t, "x", result.Rankings.Ranked[2].LastCommitID)
	assert.Equal(t, map[string]int{"dev": 100, "main": 50, "broken": 0}, result.Rankings.Health)
}

func TestGetPRResult(t *testing.T) {
	merged := time.Now()
	client := &contract.MockSourceClient{}
	client.On("ListPullRequests", mock.Anything, testRepo).Return([]schema.PullRequest{
		{Number: 1, State: schema.OpenState, Author: "a"},
		{Number: 2, State: schema.ClosedState, Author: "b", MergedAt: &merged},
		{Number: 3, State: schema.ClosedState, Author: "a"},
	}, nil)

	result, err := GetPRResult(context.Background(), testConfig(), client)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Aggregate.Total)
	assert.Equal(t, 1, result.Aggregate.Open)
	assert.Equal(t, 2, result.Aggregate.Closed)
	assert.Equal(t, 1, result.Aggregate.Merged)
	assert.Equal(t, []schema.AuthorCount{{Author: "a", Count: 2}, {Author: "b", Count: 1}}, result.Aggregate.TopAuthors)
}

func TestGetCommitDiffResult(t *testing.T) {
	leak := "@@ -0,0 +1 @@\n+API_KEY=abc"
	detail := schema.CommitDetail{
		Commit: schema.Commit{SHA: "abc123", Author: "alice", Message: "add config"},
		Files: []schema.Patch{
			{Filename: "config.env", Status: schema.AddedStatus, Additions: 1, Changes: 1, PatchText: &leak},
			{Filename: "logo.png", Status: schema.AddedStatus},
		},
	}

	t.Run("commit", func(t *testing.T) {
		client := &contract.MockSourceClient{}
		client.On("GetCommit", mock.Anything, testRepo, "abc").Return(detail, nil)

		result, err := GetCommitDiffResult(context.Background(), testConfig(), client, "abc")
		require.NoError(t, err)
		assert.Equal(t, "abc123", result.Ref)
		assert.Equal(t, "alice", result.Author)
		require.Len(t, result.Files, 2)
		assert.Len(t, result.Files[0].Rows, 2)
		assert.True(t, result.Files[1].NoPatch)
		assert.Equal(t, []schema.SecretFinding{{Filename: "config.env", Match: "API_KEY"}}, result.Findings)
	})

	t.Run("compare", func(t *testing.T) {
		cfg := testConfig()
		cfg.Base, cfg.Head = "main", "feature"
		client := &contract.MockSourceClient{}
		client.On("Compare", mock.Anything, testRepo, "main", "feature").Return(detail.Files, nil)

		result, err := GetCommitDiffResult(context.Background(), cfg, client, "")
		require.NoError(t, err)
		assert.Equal(t, "main...feature", result.Ref)
		assert.Len(t, result.Files, 2)
	})

	t.Run("missing ref", func(t *testing.T) {
		_, err := GetCommitDiffResult(context.Background(), testConfig(), &contract.MockSourceClient{}, "")
		assert.ErrorContains(t, err, "--base and --head")
	})
}

func TestGetReportJoinsErrors(t *testing.T) {
	cfg := testConfig()
	client := &contract.MockSourceClient{}
	client.On("ListCommits", mock.Anything, testRepo, mock.Anything).Return([]schema.Commit{}, nil)
	client.On("ListBranches", mock.Anything, testRepo).Return(nil, errors.New("branches down"))
	client.On("ListPullRequests", mock.Anything, testRepo).Return([]schema.PullRequest{{State: schema.OpenState, Author: "a"}}, nil)
	client.On("GetRepository", mock.Anything, testRepo).Return(schema.Repository{}, errors.New("repo down"))

	report, err := GetReport(context.Background(), cfg, client, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "branches: ")
	assert.ErrorContains(t, err, "overview: failed to get repository octo/hello: repo down")
	assert.ErrorIs(t, err, ErrRepositoryUnavailable)
	assert.NotContains(t, err.Error(), "churn")
	assert.Equal(t, 1, report.PRs.Aggregate.Total)
	assert.Len(t, report.Heatmap.Cells, schema.DefaultHeatmapDays)
}

func TestPutFile(t *testing.T) {
	update := schema.FileUpdate{Path: "README.md", Content: "hi"}

	t.Run("updates existing file", func(t *testing.T) {
		client := &contract.MockSourceClient{}
		client.On("GetFileContent", mock.Anything, testRepo, "README.md", "").Return(schema.FileContent{SHA: "blob1"}, nil)
		client.On("PutFileContent", mock.Anything, testRepo, mock.MatchedBy(func(u schema.FileUpdate) bool {
			return u.SHA == "blob1"
		})).Return(schema.FileCommit{Path: "README.md", CommitSHA: "c9"}, nil)

		commit, err := PutFile(context.Background(), testConfig(), client, update)
		require.NoError(t, err)
		assert.Equal(t, "c9", commit.CommitSHA)
	})

	t.Run("lookup failure", func(t *testing.T) {
		client := &contract.MockSourceClient{}
		client.On("GetFileContent", mock.Anything, testRepo, "README.md", "").Return(schema.FileContent{}, errors.New("network"))

		_, err := PutFile(context.Background(), testConfig(), client, update)
		assert.ErrorContains(t, err, "failed to look up README.md")
		client.AssertNotCalled(t, "PutFileContent", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetSummary(t *testing.T) {
	text := "@@ -1 +1 @@\n-a\n+b"
	client := &contract.MockSourceClient{}
	client.On("GetCommit", mock.Anything, testRepo, "abc").Return(schema.CommitDetail{
		Commit: schema.Commit{SHA: "abc"},
		Files:  []schema.Patch{{Filename: "x.go", PatchText: &text}},
	}, nil)

	summarizer := &contract.MockSummarizer{}
	summarizer.On("Model").Return("test-model")
	summarizer.On("Summarize", mock.Anything, "--- a/x.go\n+++ b/x.go\n@@ -1 +1 @@\n-a\n+b\n").Return("Renames a to b.", nil)

	summary, err := GetSummary(context.Background(), testConfig(), client, summarizer, "abc")
	require.NoError(t, err)
	assert.Equal(t, schema.Summary{Repo: "octo/hello", Ref: "abc", Model: "test-model", Summary: "Renames a to b."}, summary)
}

func TestGetSummaryWarnsAboutCredentials(t *testing.T) {
	text := "@@ -0,0 +1 @@\n+password = \"hunter2\""
	client := &contract.MockSourceClient{}
	client.On("GetCommit", mock.Anything, testRepo, "abc").Return(schema.CommitDetail{
		Commit: schema.Commit{SHA: "abc"},
		Files:  []schema.Patch{{Filename: "config.py", PatchText: &text}},
	}, nil)

	summarizer := &contract.MockSummarizer{}
	summarizer.On("Model").Return("test-model")
	summarizer.On("Summarize", mock.Anything, mock.Anything).Return("Adds a config value.", nil)

	summary, err := GetSummary(context.Background(), testConfig(), client, summarizer, "abc")
	require.NoError(t, err, "a probable credential never blocks the summary")
	assert.Equal(t, "Adds a config value.", summary.Summary)
	assert.Contains(t, summary.Warning, "password")
	assert.Contains(t, summary.Warning, "test-model")
	summarizer.AssertExpectations(t)
}

func TestNewSummarizerDisabled(t *testing.T) {
	_, err := NewSummarizer(testConfig())
	assert.ErrorIs(t, err, ErrSummaryDisabled)
}
