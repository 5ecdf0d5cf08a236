// Package contract provides interfaces and shared utilities for the repolens internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/repolens/schema"
)

// CommitQuery narrows a commit listing.
type CommitQuery struct {
	SHA     string    // Branch name or commit sha to list from (empty = default branch)
	Author  string    // Login or email of the commit author
	Since   time.Time // Only commits after this time (zero = no limit)
	PerPage int       // Page size requested from the API
	Limit   int       // Total number of commits wanted across pages
}

// SourceClient defines the operations needed from the repository hosting API.
// This allows the orchestration logic to be tested without network access.
type SourceClient interface {
	// --- Listing ---

	// ListRepos returns the public repositories of a user or organization.
	ListRepos(ctx context.Context, owner string) ([]schema.Repository, error)

	// ListCommits returns commits of a repository, newest first.
	ListCommits(ctx context.Context, repo schema.RepoRef, query CommitQuery) ([]schema.Commit, error)

	// ListBranches returns all branches with their head commit.
	ListBranches(ctx context.Context, repo schema.RepoRef) ([]schema.Branch, error)

	// ListPullRequests returns pull requests in every state.
	ListPullRequests(ctx context.Context, repo schema.RepoRef) ([]schema.PullRequest, error)

	// ListContributors returns contributors, most active first.
	ListContributors(ctx context.Context, repo schema.RepoRef) ([]schema.Contributor, error)

	// ListLanguages returns the bytes of code per language.
	ListLanguages(ctx context.Context, repo schema.RepoRef) ([]schema.LanguageShare, error)

	// --- Detail ---

	// GetRepository returns the metadata of one repository.
	GetRepository(ctx context.Context, repo schema.RepoRef) (schema.Repository, error)

	// GetLicense returns the detected license, or nil when there is none.
	GetLicense(ctx context.Context, repo schema.RepoRef) (*schema.License, error)

	// GetCommit returns a commit together with its file patches.
	GetCommit(ctx context.Context, repo schema.RepoRef, sha string) (schema.CommitDetail, error)

	// CountRecentCommits returns the number of commits on one page of a branch
	// and the id of the newest one.
	CountRecentCommits(ctx context.Context, repo schema.RepoRef, branch string, perPage int) (int, string, error)

	// Compare returns the files changed between two refs.
	Compare(ctx context.Context, repo schema.RepoRef, base, head string) ([]schema.Patch, error)

	// --- Contents ---

	// GetFileContent returns a decoded file at the given ref (empty = default branch).
	GetFileContent(ctx context.Context, repo schema.RepoRef, path, ref string) (schema.FileContent, error)

	// PutFileContent commits a new version of a file.
	PutFileContent(ctx context.Context, repo schema.RepoRef, update schema.FileUpdate) (schema.FileCommit, error)
}

// Summarizer turns a combined diff into a short natural language summary.
type Summarizer interface {
	Summarize(ctx context.Context, diff string) (string, error)
	Model() string
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResponseStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for recording churn runs.
type AnalysisStore interface {
	// BeginRun creates a new churn run and returns its unique ID
	BeginRun(repo string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, commitsSeen, filesRecorded int) error

	// RecordFileChurn stores the churn stat and risk score of one file
	RecordFileChurn(runID int64, repo string, file schema.RiskyFile, recorded time.Time) error

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.ChurnRunRecord, error)

	// GetAllFileChurn returns every recorded file row
	GetAllFileChurn() ([]schema.FileChurnRecord, error)

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// Close closes the underlying connection
	Close() error
}
