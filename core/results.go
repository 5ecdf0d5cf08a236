package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/repolens/core/agg"
	"github.com/huangsam/repolens/core/patch"
	"github.com/huangsam/repolens/core/secret"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// maxCommitsPage is the largest page size the commits endpoint accepts.
const maxCommitsPage = 100

// GetChurnResult samples the newest cfg.ChurnCommits commits, fetches their
// file lists in parallel and ranks the files by churn and by risk.
// Commits that fail to load are logged and left out.
func GetChurnResult(ctx context.Context, cfg *contract.Config, client contract.SourceClient, mgr contract.CacheManager) (schema.ChurnResult, error) {
	result := schema.ChurnResult{
		Repo:       cfg.Repo.String(),
		Branch:     cfg.Branch,
		TopFiles:   []schema.FileChurnStat{},
		RiskyFiles: []schema.RiskyFile{},
	}

	commits, err := client.ListCommits(ctx, cfg.Repo, contract.CommitQuery{
		SHA:     cfg.Branch,
		PerPage: min(cfg.ChurnCommits, maxCommitsPage),
		Limit:   cfg.ChurnCommits,
	})
	if err != nil {
		return result, fmt.Errorf("failed to list commits of %s: %w", cfg.Repo, err)
	}

	run := beginChurnRun(analysisStoreOf(mgr), cfg)
	outcomes := fetchAll(ctx, cfg.Workers, commits, func(ctx context.Context, c schema.Commit) (schema.CommitDetail, error) {
		return client.GetCommit(ctx, cfg.Repo, c.SHA)
	})
	commitFiles := make([]schema.CommitFiles, 0, len(commits))
	for i, o := range outcomes {
		if o.err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping commit %s", commits[i].SHA), o.err)
			result.CommitsSkipped++
			continue
		}
		commitFiles = append(commitFiles, schema.CommitFiles{CommitID: o.value.SHA, Files: o.value.Files})
	}

	out := agg.AggregateChurn(commitFiles)
	result.CommitsSampled = len(commitFiles)
	result.TotalFiles = len(out.Order)
	result.TopFiles = agg.TopFiles(out, cfg.TopFiles)
	result.RiskyFiles = agg.RiskyFiles(out, cfg.RiskyFiles)
	result.GeneratedAt = time.Now().UTC()

	run.finish(cfg.Repo.String(), agg.RiskyFiles(out, len(out.Order)), len(commitFiles))
	return result, nil
}

// GetHeatmapResult counts commits per day over the last cfg.HeatmapDays days.
// When cfg.Author is set only that contributor's commits are counted.
func GetHeatmapResult(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (schema.HeatmapResult, error) {
	ref := referenceTime(ctx)
	result := schema.HeatmapResult{
		Repo:      cfg.Repo.String(),
		Author:    cfg.Author,
		Days:      cfg.HeatmapDays,
		Reference: ref,
		Cells:     []schema.HeatCell{},
	}

	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	commits, err := client.ListCommits(ctx, cfg.Repo, contract.CommitQuery{
		SHA:     cfg.Branch,
		Author:  cfg.Author,
		Since:   day.AddDate(0, 0, -(cfg.HeatmapDays - 1)),
		PerPage: min(cfg.CommitListing, maxCommitsPage),
		Limit:   cfg.CommitListing,
	})
	if err != nil {
		return result, fmt.Errorf("failed to list commits of %s: %w", cfg.Repo, err)
	}

	result.Cells = agg.BuildHeatmap(agg.CommitEvents(commits, cfg.Author), cfg.HeatmapDays, ref)
	result.Total = agg.HeatTotal(result.Cells)
	return result, nil
}

// GetBranchResult counts the recent commits of every branch in parallel and
// ranks the branches by activity. A branch that fails to load counts as 0.
func GetBranchResult(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (schema.BranchResult, error) {
	result := schema.BranchResult{
		Repo:     cfg.Repo.String(),
		Cap:      cfg.BranchCap,
		Rankings: agg.RankBranches(nil, cfg.BranchCap),
	}

	branches, err := client.ListBranches(ctx, cfg.Repo)
	if err != nil {
		return result, fmt.Errorf("failed to list branches of %s: %w", cfg.Repo, err)
	}

	type count struct {
		n    int
		head string
	}
	outcomes := fetchAll(ctx, cfg.Workers, branches, func(ctx context.Context, b schema.Branch) (count, error) {
		n, head, err := client.CountRecentCommits(ctx, cfg.Repo, b.Name, cfg.BranchPage)
		return count{n: n, head: head}, err
	})

	activities := make([]schema.BranchActivity, 0, len(branches))
	for i, o := range outcomes {
		activity := schema.BranchActivity{Name: branches[i].Name, LastCommitID: branches[i].HeadSHA}
		if o.err != nil {
			contract.LogWarn(fmt.Sprintf("Counting branch %s as inactive", branches[i].Name), o.err)
			result.Failed++
		} else {
			activity.RecentCommitCount = o.value.n
			if o.value.head != "" {
				activity.LastCommitID = o.value.head
			}
		}
		activities = append(activities, activity)
	}

	result.Rankings = agg.RankBranches(activities, cfg.BranchCap)
	return result, nil
}

// GetPRResult aggregates every pull request of the repository.
func GetPRResult(ctx context.Context, cfg *contract.Config, client contract.SourceClient) (schema.PRResult, error) {
	result := schema.PRResult{Repo: cfg.Repo.String(), Aggregate: agg.AggregatePRs(nil, cfg.TopAuthors)}

	prs, err := client.ListPullRequests(ctx, cfg.Repo)
	if err != nil {
		return result, fmt.Errorf("failed to list pull requests of %s: %w", cfg.Repo, err)
	}
	result.Aggregate = agg.AggregatePRs(prs, cfg.TopAuthors)
	return result, nil
}

// GetCommitDiffResult parses the patches of one commit, or of cfg.Base...cfg.Head
// when both refs are set, into side-by-side rows and scans them for secrets.
func GetCommitDiffResult(ctx context.Context, cfg *contract.Config, client contract.SourceClient, sha string) (schema.CommitDiffResult, error) {
	result := schema.CommitDiffResult{
		Repo:     cfg.Repo.String(),
		Files:    []schema.FileDiff{},
		Findings: []schema.SecretFinding{},
	}

	files, err := fetchPatches(ctx, cfg, client, sha, &result)
	if err != nil {
		return result, err
	}
	result.Files = patch.ProjectFiles(files)
	result.Findings = secret.Scan(files)
	return result, nil
}

// fetchPatches loads the file patches of a commit or a compare range and
// fills the identifying fields of result.
func fetchPatches(ctx context.Context, cfg *contract.Config, client contract.SourceClient, sha string, result *schema.CommitDiffResult) ([]schema.Patch, error) {
	if sha == "" && cfg.Base != "" && cfg.Head != "" {
		result.Ref = cfg.Base + "..." + cfg.Head
		files, err := client.Compare(ctx, cfg.Repo, cfg.Base, cfg.Head)
		if err != nil {
			return nil, fmt.Errorf("failed to compare %s: %w", result.Ref, err)
		}
		return files, nil
	}
	if sha == "" {
		return nil, errors.New("a commit sha or both --base and --head are required")
	}

	result.Ref = sha
	detail, err := client.GetCommit(ctx, cfg.Repo, sha)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	result.Ref = detail.SHA
	result.Author = detail.Login()
	result.Message = detail.Message
	return detail.Files, nil
}

// GetReport runs churn, heatmap, branch, pull request and overview analytics concurrently.
// Every section is attempted; the errors of failed sections are joined.
func GetReport(ctx context.Context, cfg *contract.Config, client contract.SourceClient, mgr contract.CacheManager) (schema.Report, error) {
	report := schema.Report{Repo: cfg.Repo.String()}

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
		var err error
		report.Churn, err = GetChurnResult(ctx, cfg, client, mgr)
		collect("churn", err)
	})
	wg.Go(func() {
		var err error
		report.Heatmap, err = GetHeatmapResult(ctx, cfg, client)
		collect("heatmap", err)
	})
	wg.Go(func() {
		var err error
		report.Branches, err = GetBranchResult(ctx, cfg, client)
		collect("branches", err)
	})
	wg.Go(func() {
		var err error
		report.PRs, err = GetPRResult(ctx, cfg, client)
		collect("prs", err)
	})
	wg.Go(func() {
		var err error
		report.Overview, err = GetOverview(ctx, cfg, client)
		collect("overview", err)
	})
	wg.Wait()

	report.GeneratedAt = time.Now().UTC()
	return report, errors.Join(errs...)
}

// GetSummary asks the summarizer for a short description of a commit.
func GetSummary(ctx context.Context, cfg *contract.Config, client contract.SourceClient, summarizer contract.Summarizer, sha string) (schema.Summary, error) {
	result := schema.Summary{Repo: cfg.Repo.String(), Model: summarizer.Model()}

	var diff schema.CommitDiffResult
	files, err := fetchPatches(ctx, cfg, client, sha, &diff)
	if err != nil {
		return result, err
	}
	result.Ref = diff.Ref

	combined := patch.Combined(files)
	if match := secret.ScanText(combined); match != "" {
		result.Warning = fmt.Sprintf("the diff sent to %s contains a probable credential (%s)", summarizer.Model(), match)
		contract.Logger().Warn().Str("ref", diff.Ref).Str("match", match).Msg("Sending a diff with a probable credential to the model")
	}
	text, err := summarizer.Summarize(ctx, combined)
	if err != nil {
		return result, fmt.Errorf("failed to summarize %s: %w", diff.Ref, err)
	}
	result.Summary = text
	return result, nil
}
