package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v62/github"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// ListRepos returns up to one page of 100 repositories owned by owner.
func (c *Client) ListRepos(ctx context.Context, owner string) ([]schema.Repository, error) {
	raw, _, err := c.gh.Repositories.ListByUser(ctx, owner, &gh.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: maxPerPage},
	})
	if err != nil {
		return nil, err
	}
	repos := make([]schema.Repository, len(raw))
	for i, r := range raw {
		repos[i] = toRepository(r)
	}
	return repos, nil
}

// GetRepository returns the metadata of one repository.
func (c *Client) GetRepository(ctx context.Context, repo schema.RepoRef) (schema.Repository, error) {
	raw, _, err := c.gh.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return schema.Repository{}, err
	}
	return toRepository(raw), nil
}

// ListCommits pages through the commit listing until query.Limit commits were
// collected or the history is exhausted.
func (c *Client) ListCommits(ctx context.Context, repo schema.RepoRef, query contract.CommitQuery) ([]schema.Commit, error) {
	perPage := query.PerPage
	if perPage <= 0 {
		perPage = min(max(query.Limit, 1), maxPerPage)
	}
	opts := &gh.CommitsListOptions{
		SHA:         query.SHA,
		Author:      query.Author,
		ListOptions: gh.ListOptions{PerPage: min(perPage, maxPerPage)},
	}
	if !query.Since.IsZero() {
		opts.Since = query.Since.UTC()
	}

	commits := []schema.Commit{}
	for page := 1; ; page++ {
		raw, resp, err := c.gh.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, err
		}
		for _, rc := range raw {
			commits = append(commits, toCommit(rc))
		}
		if query.Limit > 0 && len(commits) >= query.Limit {
			break
		}
		if resp.NextPage == 0 {
			break
		}
		if page == maxPages {
			c.warnTruncated(repo.String()+" commits", len(commits))
			break
		}
		opts.Page = resp.NextPage
	}
	if query.Limit > 0 && len(commits) > query.Limit {
		commits = commits[:query.Limit]
	}
	return commits, nil
}

// GetCommit returns a commit and its files. Files whose patch the API omits
// (binary or oversized) carry a nil PatchText.
func (c *Client) GetCommit(ctx context.Context, repo schema.RepoRef, sha string) (schema.CommitDetail, error) {
	raw, _, err := c.gh.Repositories.GetCommit(ctx, repo.Owner, repo.Name, sha, nil)
	if err != nil {
		return schema.CommitDetail{}, err
	}
	return schema.CommitDetail{Commit: toCommit(raw), Files: toPatches(raw.Files)}, nil
}

// ListBranches returns every branch with its head sha.
func (c *Client) ListBranches(ctx context.Context, repo schema.RepoRef) ([]schema.Branch, error) {
	opts := &gh.BranchListOptions{ListOptions: gh.ListOptions{PerPage: maxPerPage}}
	branches := []schema.Branch{}
	for page := 1; ; page++ {
		raw, resp, err := c.gh.Repositories.ListBranches(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, err
		}
		for _, b := range raw {
			branches = append(branches, schema.Branch{Name: b.GetName(), HeadSHA: b.GetCommit().GetSHA()})
		}
		if resp.NextPage == 0 {
			break
		}
		if page == maxPages {
			c.warnTruncated(repo.String()+" branches", len(branches))
			break
		}
		opts.Page = resp.NextPage
	}
	return branches, nil
}

// CountRecentCommits returns the size of the first commit page of a branch
// and the sha of its newest commit.
func (c *Client) CountRecentCommits(ctx context.Context, repo schema.RepoRef, branch string, perPage int) (int, string, error) {
	raw, _, err := c.gh.Repositories.ListCommits(ctx, repo.Owner, repo.Name, &gh.CommitsListOptions{
		SHA:         branch,
		ListOptions: gh.ListOptions{PerPage: min(max(perPage, 1), maxPerPage)},
	})
	if err != nil {
		return 0, "", err
	}
	if len(raw) == 0 {
		return 0, "", nil
	}
	return len(raw), raw[0].GetSHA(), nil
}

// ListPullRequests returns pull requests in every state, newest first.
func (c *Client) ListPullRequests(ctx context.Context, repo schema.RepoRef) ([]schema.PullRequest, error) {
	opts := &gh.PullRequestListOptions{State: "all", ListOptions: gh.ListOptions{PerPage: maxPerPage}}
	prs := []schema.PullRequest{}
	for page := 1; ; page++ {
		raw, resp, err := c.gh.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, err
		}
		for _, p := range raw {
			prs = append(prs, toPullRequest(p))
		}
		if resp.NextPage == 0 {
			break
		}
		if page == maxPages {
			c.warnTruncated(repo.String()+" pull requests", len(prs))
			break
		}
		opts.Page = resp.NextPage
	}
	return prs, nil
}

// ListContributors returns the contributors of a repository, most active first.
func (c *Client) ListContributors(ctx context.Context, repo schema.RepoRef) ([]schema.Contributor, error) {
	opts := &gh.ListContributorsOptions{ListOptions: gh.ListOptions{PerPage: maxPerPage}}
	contributors := []schema.Contributor{}
	for page := 1; ; page++ {
		raw, resp, err := c.gh.Repositories.ListContributors(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, err
		}
		for _, u := range raw {
			contributors = append(contributors, schema.Contributor{Login: u.GetLogin(), Contributions: u.GetContributions()})
		}
		if resp.NextPage == 0 {
			break
		}
		if page == maxPages {
			c.warnTruncated(repo.String()+" contributors", len(contributors))
			break
		}
		opts.Page = resp.NextPage
	}
	return contributors, nil
}

// ListLanguages returns the bytes of code per language, in no particular order.
func (c *Client) ListLanguages(ctx context.Context, repo schema.RepoRef) ([]schema.LanguageShare, error) {
	raw, _, err := c.gh.Repositories.ListLanguages(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}
	languages := make([]schema.LanguageShare, 0, len(raw))
	for name, bytes := range raw {
		languages = append(languages, schema.LanguageShare{Name: name, Bytes: bytes})
	}
	return languages, nil
}

// GetLicense returns the detected license, or nil when the repository has none.
func (c *Client) GetLicense(ctx context.Context, repo schema.RepoRef) (*schema.License, error) {
	raw, _, err := c.gh.Repositories.License(ctx, repo.Owner, repo.Name)
	if StatusCode(err) == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	license := raw.GetLicense()
	return &schema.License{Key: license.GetKey(), Name: license.GetName(), SPDXID: license.GetSPDXID()}, nil
}

// Compare returns the files changed between base and head.
func (c *Client) Compare(ctx context.Context, repo schema.RepoRef, base, head string) ([]schema.Patch, error) {
	raw, _, err := c.gh.Repositories.CompareCommits(ctx, repo.Owner, repo.Name, base, head, nil)
	if err != nil {
		return nil, err
	}
	return toPatches(raw.Files), nil
}

// GetFileContent returns a decoded file. Contents are never served from the
// cache so the returned sha is current for a following PutFileContent.
func (c *Client) GetFileContent(ctx context.Context, repo schema.RepoRef, path, ref string) (schema.FileContent, error) {
	var opts *gh.RepositoryContentGetOptions
	if ref != "" {
		opts = &gh.RepositoryContentGetOptions{Ref: ref}
	}
	file, dir, _, err := c.gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, opts)
	if err != nil {
		return schema.FileContent{}, err
	}
	if file == nil || dir != nil {
		return schema.FileContent{}, fmt.Errorf("%s is a dir, not a file", path)
	}
	if file.GetType() != "file" {
		return schema.FileContent{}, fmt.Errorf("%s is a %s, not a file", path, file.GetType())
	}
	decoded, err := file.GetContent()
	if err != nil {
		return schema.FileContent{}, fmt.Errorf("decode content of %s: %w", path, err)
	}
	return schema.FileContent{Path: file.GetPath(), SHA: file.GetSHA(), Size: file.GetSize(), Content: decoded}, nil
}

// PutFileContent creates a file, or updates it when update.SHA is set, with
// a single commit.
func (c *Client) PutFileContent(ctx context.Context, repo schema.RepoRef, update schema.FileUpdate) (schema.FileCommit, error) {
	if update.Path == "" {
		return schema.FileCommit{}, errors.New("file path is required")
	}
	message := update.Message
	if message == "" {
		message = "Update " + update.Path
	}
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: []byte(update.Content),
	}
	if update.Branch != "" {
		opts.Branch = gh.String(update.Branch)
	}

	var (
		raw *gh.RepositoryContentResponse
		err error
	)
	if update.SHA == "" {
		raw, _, err = c.gh.Repositories.CreateFile(ctx, repo.Owner, repo.Name, escapePath(update.Path), opts)
	} else {
		opts.SHA = gh.String(update.SHA)
		raw, _, err = c.gh.Repositories.UpdateFile(ctx, repo.Owner, repo.Name, escapePath(update.Path), opts)
	}
	if err != nil {
		return schema.FileCommit{}, err
	}
	return schema.FileCommit{
		Path:       raw.GetContent().GetPath(),
		ContentSHA: raw.GetContent().GetSHA(),
		CommitSHA:  raw.Commit.GetSHA(),
		Message:    raw.Commit.GetMessage(),
	}, nil
}

// escapePath escapes every segment of a slash separated file path. The write
// endpoints of go-github take the path verbatim.
func escapePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
