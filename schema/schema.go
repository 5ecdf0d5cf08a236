// Package schema has models and constants for all parts of repolens.
package schema

import "time"

// Patch is one file entry of a commit as reported by the source API.
// A nil PatchText means the API omitted the patch (binary or oversized file).
type Patch struct {
	Filename  string      `json:"filename"`
	Status    PatchStatus `json:"status"`
	Additions int         `json:"additions"`
	Deletions int         `json:"deletions"`
	Changes   int         `json:"changes"`
	PatchText *string     `json:"patch,omitempty"`
}

// HasPatch reports whether the API returned patch text for the file.
func (p Patch) HasPatch() bool {
	return p.PatchText != nil
}

// Text returns the patch text, or an empty string when it is absent.
func (p Patch) Text() string {
	if p.PatchText == nil {
		return ""
	}
	return *p.PatchText
}

// Line is a single classified line of a hunk.
type Line struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// Hunk is an ordered run of lines that always starts with exactly one header line.
type Hunk struct {
	Lines []Line `json:"lines"`
}

// Header returns the verbatim header text of the hunk.
func (h Hunk) Header() string {
	if len(h.Lines) == 0 || h.Lines[0].Kind != HeaderLine {
		return ""
	}
	return h.Lines[0].Text
}

// DiffRow is one row of a two-column (original/changed) diff rendering.
type DiffRow struct {
	Left  string  `json:"left"`
	Right string  `json:"right"`
	Kind  RowKind `json:"kind"`
}

// FileDiff bundles the parsed and projected diff of one file.
// NoPatch is set when the source did not provide patch text.
type FileDiff struct {
	Filename  string      `json:"filename"`
	Status    PatchStatus `json:"status"`
	Additions int         `json:"additions"`
	Deletions int         `json:"deletions"`
	Hunks     []Hunk      `json:"hunks"`
	Rows      []DiffRow   `json:"rows"`
	NoPatch   bool        `json:"no_patch"`
}

// CommitFiles pairs a commit id with the files it touched.
type CommitFiles struct {
	CommitID string  `json:"commit_id"`
	Files    []Patch `json:"files"`
}

// FileChurnStat holds per-file sums across the examined commit set.
type FileChurnStat struct {
	Filename  string `json:"filename"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	EditCount int    `json:"edit_count"`
}

// RiskyFile is a churn stat together with its derived risk score.
type RiskyFile struct {
	FileChurnStat
	Score float64 `json:"score"`
}

// ChurnOutput is the result of one churn aggregation.
// Order lists filenames in first-seen order and drives stable tie-breaking.
type ChurnOutput struct {
	Files map[string]FileChurnStat `json:"files"`
	Order []string                 `json:"order"`
}

// Ordered returns the stats in first-seen order.
func (o *ChurnOutput) Ordered() []FileChurnStat {
	if o == nil {
		return []FileChurnStat{}
	}
	stats := make([]FileChurnStat, 0, len(o.Order))
	for _, name := range o.Order {
		stats = append(stats, o.Files[name])
	}
	return stats
}

// HeatCell is the event count of one calendar day (YYYY-MM-DD).
type HeatCell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Commit is a commit listing entry.
type Commit struct {
	SHA        string    `json:"sha"`
	Author     string    `json:"author"`      // Login on the hosting service, may be empty
	AuthorName string    `json:"author_name"` // Name from the commit metadata
	Date       time.Time `json:"date"`
	Message    string    `json:"message"`
}

// Login returns the author login, falling back to the commit author name.
func (c Commit) Login() string {
	if c.Author != "" {
		return c.Author
	}
	return c.AuthorName
}

// CommitDetail is a commit with its file list.
type CommitDetail struct {
	Commit
	Files []Patch `json:"files"`
}

// Branch is a branch listing entry.
type Branch struct {
	Name    string `json:"name"`
	HeadSHA string `json:"head_sha"`
}

// BranchActivity is the recent activity of one branch.
type BranchActivity struct {
	Name              string `json:"name"`
	RecentCommitCount int    `json:"recent_commit_count"`
	LastCommitID      string `json:"last_commit_id"`
}

// BranchRanking holds branches sorted by activity and their health scores (0-100).
type BranchRanking struct {
	Ranked []BranchActivity `json:"ranked"`
	Health map[string]int   `json:"health"`
}

// PullRequest is a pull request listing entry.
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     PRState    `json:"state"`
	Author    string     `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
}

// AuthorCount is one entry of an author ranking.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// PRAggregate summarizes a list of pull requests.
// Closed and Merged overlap: a merged pull request is also closed.
type PRAggregate struct {
	Total      int           `json:"total"`
	Open       int           `json:"open"`
	Closed     int           `json:"closed"`
	Merged     int           `json:"merged"`
	TopAuthors []AuthorCount `json:"top_authors"`
}

// SecretFinding is the first probable credential match in a file's patch.
type SecretFinding struct {
	Filename string `json:"filename"`
	Match    string `json:"match"`
}

// Repository is a repository listing entry.
type Repository struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	Private       bool      `json:"private"`
	DefaultBranch string    `json:"default_branch"`
	Language      string    `json:"language"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	OpenIssues    int       `json:"open_issues"` // GitHub counts open pull requests as issues
	UpdatedAt     time.Time `json:"updated_at"`
}

// LanguageShare is the size of one language in a repository.
type LanguageShare struct {
	Name    string  `json:"name"`
	Bytes   int     `json:"bytes"`
	Percent float64 `json:"percent"`
}

// Contributor is a contributor listing entry.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// License is the detected license of a repository.
type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id"`
}

// ManifestHint flags a dependency manifest found at the repository root.
type ManifestHint struct {
	Path string `json:"path"`
	Hint string `json:"hint"`
}

// FileContent is a decoded file from the contents API.
type FileContent struct {
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int    `json:"size"`
	Content string `json:"content"`
}

// FileUpdate describes a commit-on-save through the contents API.
// An empty SHA creates the file.
type FileUpdate struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

// FileCommit is the outcome of a FileUpdate.
type FileCommit struct {
	Path       string `json:"path"`
	ContentSHA string `json:"content_sha"`
	CommitSHA  string `json:"commit_sha"`
	Message    string `json:"message"`
}

// RepoRef identifies a repository on the hosting service.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns the "owner/name" form.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}
