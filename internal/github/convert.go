package github

import (
	gh "github.com/google/go-github/v62/github"
	"github.com/huangsam/repolens/schema"
)

// Conversions from go-github models to repolens models. Only the fields
// repolens reads are carried over.

func toRepository(r *gh.Repository) schema.Repository {
	return schema.Repository{
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		Private:       r.GetPrivate(),
		DefaultBranch: r.GetDefaultBranch(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		UpdatedAt:     r.GetUpdatedAt().Time,
	}
}

func toCommit(rc *gh.RepositoryCommit) schema.Commit {
	meta := rc.GetCommit()
	return schema.Commit{
		SHA:        rc.GetSHA(),
		Author:     rc.GetAuthor().GetLogin(),
		AuthorName: meta.GetAuthor().GetName(),
		Date:       meta.GetAuthor().GetDate().Time,
		Message:    meta.GetMessage(),
	}
}

func toPullRequest(p *gh.PullRequest) schema.PullRequest {
	pr := schema.PullRequest{
		Number:    p.GetNumber(),
		Title:     p.GetTitle(),
		State:     schema.PRState(p.GetState()),
		Author:    p.GetUser().GetLogin(),
		CreatedAt: p.GetCreatedAt().Time,
	}
	if pr.Author == "" {
		pr.Author = schema.UnknownAuthor
	}
	if p.MergedAt != nil {
		merged := p.MergedAt.Time
		pr.MergedAt = &merged
	}
	return pr
}

func toPatches(files []*gh.CommitFile) []schema.Patch {
	patches := make([]schema.Patch, len(files))
	for i, f := range files {
		patches[i] = schema.Patch{
			Filename:  f.GetFilename(),
			Status:    schema.PatchStatus(f.GetStatus()),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Changes:   f.GetChanges(),
			PatchText: f.Patch,
		}
	}
	return patches
}
