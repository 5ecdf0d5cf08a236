package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/huangsam/repolens/core/agg"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/github"
	"github.com/huangsam/repolens/schema"
)

// manifestCandidates are the dependency manifests looked up at the repository root.
var manifestCandidates = []string{"package.json", "pom.xml", "requirements.txt"}

const manifestHint = "Found manifest. Consider running a dependency scan."

// ErrRepositoryUnavailable marks an overview that could not load the repository itself.
var ErrRepositoryUnavailable = errors.New("failed to get repository")

// GetOverview collects the repository metadata, languages, top contributors,
// license, headline totals and dependency manifests. The metadata is required;
// the other sections load concurrently and a failed one is left empty with its
// error joined into the returned error.
func GetOverview(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (schema.OverviewResult, error) {
	result := schema.OverviewResult{
		Repo:         cfg.Repo.String(),
		Languages:    []schema.LanguageShare{},
		Contributors: []schema.Contributor{},
		Manifests:    []schema.ManifestHint{},
	}

	repo, err := client.GetRepository(ctx, cfg.Repo)
	if err != nil {
		return result, fmt.Errorf("%w %s: %w", ErrRepositoryUnavailable, cfg.Repo, err)
	}
	result.Description = repo.Description
	result.DefaultBranch = repo.DefaultBranch
	result.Stars = repo.Stars
	result.Forks = repo.Forks
	result.Totals.OpenIssues = repo.OpenIssues

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	collect := func(section string, err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", section, err))
		mu.Unlock()
	}

	wg.Go(func() {
		languages, err := client.ListLanguages(ctx, cfg.Repo)
		if err == nil {
			result.Languages = agg.LanguageShares(languages)
		}
		collect("languages", err)
	})
	wg.Go(func() {
		contributors, err := client.ListContributors(ctx, cfg.Repo)
		if err == nil {
			result.Contributors = agg.TopContributors(contributors, cfg.TopAuthors)
		}
		collect("contributors", err)
	})
	wg.Go(func() {
		var err error
		result.License, err = client.GetLicense(ctx, cfg.Repo)
		collect("license", err)
	})
	wg.Go(func() {
		commits, err := client.ListCommits(ctx, cfg.Repo, contract.CommitQuery{
			SHA:     cfg.Branch,
			PerPage: maxCommitsPage,
			Limit:   maxCommitsPage,
		})
		result.Totals.Commits = len(commits)
		collect("commits", err)
	})
	wg.Go(func() {
		prs, err := client.ListPullRequests(ctx, cfg.Repo)
		result.Totals.PullRequests = len(prs)
		collect("pull requests", err)
	})
	wg.Go(func() {
		result.Manifests = findManifests(ctx, cfg, client)
	})
	wg.Wait()

	return result, errors.Join(errs...)
}

// findManifests returns a hint for every manifest candidate present at the
// repository root, in candidate order. Lookups that fail for another reason
// than a missing file are logged and skipped.
func findManifests(ctx context.Context, cfg *contract.Config, client contract.SourceClient) []schema.ManifestHint {
	outcomes := fetchAll(ctx, cfg.Workers, manifestCandidates, func(ctx context.Context, path string) (schema.FileContent, error) {
		return client.GetFileContent(ctx, cfg.Repo, path, cfg.Branch)
	})

	hints := []schema.ManifestHint{}
	for i, o := range outcomes {
		switch {
		case o.err == nil:
			hints = append(hints, schema.ManifestHint{Path: manifestCandidates[i], Hint: manifestHint})
		case github.StatusCode(o.err) != http.StatusNotFound:
			contract.LogWarn("Cannot look up "+manifestCandidates[i], o.err)
		}
	}
	return hints
}
