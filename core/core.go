// Package core orchestrates fetching from the source API, the pure analytics
// in its subpackages and the rendering of results.
package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/github"
	"github.com/huangsam/repolens/internal/outwriter"
	"github.com/huangsam/repolens/schema"
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// logHeader tells the user what is about to be fetched.
func logHeader(ctx context.Context, cfg *contract.Config, what string) {
	if shouldSuppressHeader(ctx) || cfg.Output != schema.TextOut {
		return
	}
	contract.Logger().Info().
		Str("repo", cfg.Repo.String()).
		Str("api", cfg.APIURL).
		Int("workers", cfg.Workers).
		Msg("Fetching " + what)
}

// ExecuteChurn prints the most changed and the riskiest files.
func ExecuteChurn(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	logHeader(ctx, cfg, "churn")
	client, err := NewSourceClient(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	result, err := GetChurnResult(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteChurn(result, cfg, time.Since(start))
}

// ExecuteHeatmap prints the daily commit activity of the repository or of cfg.Author.
func ExecuteHeatmap(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	logHeader(ctx, cfg, "heatmap")
	client, err := NewSourceClient(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	result, err := GetHeatmapResult(ctx, cfg, client)
	if err != nil {
		return err
	}
	return outwriter.WriteHeatmap(result, cfg)
}

// ExecuteBranches prints branches ranked by recent activity.
func ExecuteBranches(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	logHeader(ctx, cfg, "branches")
	client, err := NewSourceClient(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	result, err := GetBranchResult(ctx, cfg, client)
	if err != nil {
		return err
	}
	return outwriter.WriteBranches(result, cfg, time.Since(start))
}

// ExecutePRs prints pull request counts and top authors.
func ExecutePRs(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	logHeader(ctx, cfg, "pull requests")
	client, err := NewSourceClient(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	result, err := GetPRResult(ctx, cfg, client)
	if err != nil {
		return err
	}
	return outwriter.WritePRs(result, cfg)
}

// ExecuteOverview prints repository metadata, languages, contributors,
// license, totals and dependency manifests.
func ExecuteOverview(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	logHeader(ctx, cfg, "overview")
	client, err := NewSourceClient(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	result, err := GetOverview(ctx, cfg, client)
	if errors.Is(err, ErrRepositoryUnavailable) {
		return err
	}
	if err != nil {
		contract.LogWarn("Overview is incomplete", err)
	}
	return outwriter.WriteOverview(result, cfg)
}

// ExecuteReport prints every repository analytic. Sections that fail are
// logged and rendered empty.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	logHeader(ctx, cfg, "report")
	client, err := NewSourceClient(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	report, err := GetReport(ctx, cfg, client, mgr)
	if err != nil {
		contract.LogWarn("Report is incomplete", err)
	}
	return outwriter.WriteReport(report, cfg, time.Since(start))
}

// NewDiffExecutor returns an executor printing the side-by-side diff of sha,
// or of cfg.Base...cfg.Head when sha is empty.
func NewDiffExecutor(sha string) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
		client, err := NewSourceClient(ctx, cfg, mgr)
		if err != nil {
			return err
		}
		result, err := GetCommitDiffResult(ctx, cfg, client, sha)
		if err != nil {
			return err
		}
		return outwriter.WriteCommitDiff(result, cfg)
	}
}

// NewSecretsExecutor returns an executor printing probable credentials in a
// commit. Findings never change the exit status.
func NewSecretsExecutor(sha string) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
		client, err := NewSourceClient(ctx, cfg, mgr)
		if err != nil {
			return err
		}
		result, err := GetCommitDiffResult(ctx, cfg, client, sha)
		if err != nil {
			return err
		}
		return outwriter.WriteSecrets(result, cfg)
	}
}

// ExecuteRepos prints the repositories of cfg.Owner.
func ExecuteRepos(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.Owner == "" {
		return errors.New("an owner is required")
	}
	client, err := NewSourceClient(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	repos, err := client.ListRepos(ctx, cfg.Owner)
	if err != nil {
		return fmt.Errorf("failed to list repositories of %s: %w", cfg.Owner, err)
	}
	return outwriter.WriteRepos(repos, cfg)
}

// NewFileGetExecutor returns an executor printing a file at cfg.Branch.
func NewFileGetExecutor(path string) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
		client, err := NewSourceClient(ctx, cfg, mgr)
		if err != nil {
			return err
		}
		content, err := client.GetFileContent(ctx, cfg.Repo, path, cfg.Branch)
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", path, err)
		}
		return outwriter.WriteFileContent(content, cfg)
	}
}

// NewFilePutExecutor returns an executor committing the local file source
// to path in the repository. The current blob sha is looked up first so an
// existing file is updated rather than rejected.
func NewFilePutExecutor(path, source, message string) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", source, err)
		}
		client, err := NewSourceClient(ctx, cfg, mgr)
		if err != nil {
			return err
		}
		commit, err := PutFile(ctx, cfg, client, schema.FileUpdate{
			Path:    path,
			Message: message,
			Content: string(data),
			Branch:  cfg.Branch,
		})
		if err != nil {
			return err
		}
		return outwriter.WriteFileCommit(commit, cfg)
	}
}

// PutFile commits update, resolving the blob sha of an existing file when
// update.SHA is empty.
func PutFile(ctx context.Context, cfg *contract.Config, client contract.SourceClient, update schema.FileUpdate) (schema.FileCommit, error) {
	if update.SHA == "" {
		current, err := client.GetFileContent(ctx, cfg.Repo, update.Path, update.Branch)
		switch {
		case err == nil:
			update.SHA = current.SHA
		case github.StatusCode(err) != http.StatusNotFound:
			return schema.FileCommit{}, fmt.Errorf("failed to look up %s: %w", update.Path, err)
		}
	}
	commit, err := client.PutFileContent(ctx, cfg.Repo, update)
	if err != nil {
		return commit, fmt.Errorf("failed to save %s: %w", update.Path, err)
	}
	return commit, nil
}

// NewSummaryExecutor returns an executor printing a model summary of a commit.
func NewSummaryExecutor(sha string) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
		summarizer, err := NewSummarizer(cfg)
		if err != nil {
			return err
		}
		client, err := NewSourceClient(ctx, cfg, mgr)
		if err != nil {
			return err
		}
		summary, err := GetSummary(ctx, cfg, client, summarizer, sha)
		if err != nil {
			return err
		}
		return outwriter.WriteSummary(summary, cfg)
	}
}
