package contract

import (
	"context"

	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/mock"
)

// MockSourceClient is a mock implementation of SourceClient for testing.
type MockSourceClient struct {
	mock.Mock
}

var _ SourceClient = &MockSourceClient{} // Compile-time check

// ListRepos implements the SourceClient interface.
func (m *MockSourceClient) ListRepos(ctx context.Context, owner string) ([]schema.Repository, error) {
	args := m.Called(ctx, owner)
	repos, _ := args.Get(0).([]schema.Repository)
	return repos, args.Error(1)
}

// ListCommits implements the SourceClient interface.
func (m *MockSourceClient) ListCommits(ctx context.Context, repo schema.RepoRef, query CommitQuery) ([]schema.Commit, error) {
	args := m.Called(ctx, repo, query)
	commits, _ := args.Get(0).([]schema.Commit)
	return commits, args.Error(1)
}

// ListBranches implements the SourceClient interface.
func (m *MockSourceClient) ListBranches(ctx context.Context, repo schema.RepoRef) ([]schema.Branch, error) {
	args := m.Called(ctx, repo)
	branches, _ := args.Get(0).([]schema.Branch)
	return branches, args.Error(1)
}

// ListPullRequests implements the SourceClient interface.
func (m *MockSourceClient) ListPullRequests(ctx context.Context, repo schema.RepoRef) ([]schema.PullRequest, error) {
	args := m.Called(ctx, repo)
	prs, _ := args.Get(0).([]schema.PullRequest)
	return prs, args.Error(1)
}

// ListContributors implements the SourceClient interface.
func (m *MockSourceClient) ListContributors(ctx context.Context, repo schema.RepoRef) ([]schema.Contributor, error) {
	args := m.Called(ctx, repo)
	contributors, _ := args.Get(0).([]schema.Contributor)
	return contributors, args.Error(1)
}

// ListLanguages implements the SourceClient interface.
func (m *MockSourceClient) ListLanguages(ctx context.Context, repo schema.RepoRef) ([]schema.LanguageShare, error) {
	args := m.Called(ctx, repo)
	languages, _ := args.Get(0).([]schema.LanguageShare)
	return languages, args.Error(1)
}

// GetRepository implements the SourceClient interface.
func (m *MockSourceClient) GetRepository(ctx context.Context, repo schema.RepoRef) (schema.Repository, error) {
	args := m.Called(ctx, repo)
	repository, _ := args.Get(0).(schema.Repository)
	return repository, args.Error(1)
}

// GetLicense implements the SourceClient interface.
func (m *MockSourceClient) GetLicense(ctx context.Context, repo schema.RepoRef) (*schema.License, error) {
	args := m.Called(ctx, repo)
	license, _ := args.Get(0).(*schema.License)
	return license, args.Error(1)
}

// GetCommit implements the SourceClient interface.
func (m *MockSourceClient) GetCommit(ctx context.Context, repo schema.RepoRef, sha string) (schema.CommitDetail, error) {
	args := m.Called(ctx, repo, sha)
	detail, _ := args.Get(0).(schema.CommitDetail)
	return detail, args.Error(1)
}

// CountRecentCommits implements the SourceClient interface.
func (m *MockSourceClient) CountRecentCommits(ctx context.Context, repo schema.RepoRef, branch string, perPage int) (int, string, error) {
	args := m.Called(ctx, repo, branch, perPage)
	return args.Int(0), args.String(1), args.Error(2)
}

// Compare implements the SourceClient interface.
func (m *MockSourceClient) Compare(ctx context.Context, repo schema.RepoRef, base, head string) ([]schema.Patch, error) {
	args := m.Called(ctx, repo, base, head)
	files, _ := args.Get(0).([]schema.Patch)
	return files, args.Error(1)
}

// GetFileContent implements the SourceClient interface.
func (m *MockSourceClient) GetFileContent(ctx context.Context, repo schema.RepoRef, path, ref string) (schema.FileContent, error) {
	args := m.Called(ctx, repo, path, ref)
	content, _ := args.Get(0).(schema.FileContent)
	return content, args.Error(1)
}

// PutFileContent implements the SourceClient interface.
func (m *MockSourceClient) PutFileContent(ctx context.Context, repo schema.RepoRef, update schema.FileUpdate) (schema.FileCommit, error) {
	args := m.Called(ctx, repo, update)
	commit, _ := args.Get(0).(schema.FileCommit)
	return commit, args.Error(1)
}

// MockSummarizer is a mock implementation of Summarizer for testing.
type MockSummarizer struct {
	mock.Mock
}

var _ Summarizer = &MockSummarizer{} // Compile-time check

// Summarize implements the Summarizer interface.
func (m *MockSummarizer) Summarize(ctx context.Context, diff string) (string, error) {
	args := m.Called(ctx, diff)
	return args.String(0), args.Error(1)
}

// Model implements the Summarizer interface.
func (m *MockSummarizer) Model() string {
	args := m.Called()
	return args.String(0)
}
