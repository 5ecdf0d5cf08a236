package schema

import "time"

// ChurnResult is the envelope of the churn command.
type ChurnResult struct {
	Repo           string          `json:"repo"`
	Branch         string          `json:"branch,omitempty"`
	CommitsSampled int             `json:"commits_sampled"`
	CommitsSkipped int             `json:"commits_skipped"`
	TotalFiles     int             `json:"total_files"`
	TopFiles       []FileChurnStat `json:"top_files"`
	RiskyFiles     []RiskyFile     `json:"risky_files"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// HeatmapResult is the envelope of the heatmap command.
// Author is empty for the repository-wide heatmap.
type HeatmapResult struct {
	Repo      string     `json:"repo"`
	Author    string     `json:"author,omitempty"`
	Days      int        `json:"days"`
	Reference time.Time  `json:"reference"`
	Total     int        `json:"total"`
	Cells     []HeatCell `json:"cells"`
}

// BranchResult is the envelope of the branches command.
type BranchResult struct {
	Repo     string        `json:"repo"`
	Cap      int           `json:"cap"`
	Failed   int           `json:"failed"`
	Rankings BranchRanking `json:"rankings"`
}

// PRResult is the envelope of the prs command.
type PRResult struct {
	Repo      string      `json:"repo"`
	Aggregate PRAggregate `json:"aggregate"`
}

// CommitDiffResult is the envelope of the diff and secrets commands.
// Ref is a commit sha or a "base...head" range.
type CommitDiffResult struct {
	Repo     string          `json:"repo"`
	Ref      string          `json:"ref"`
	Author   string          `json:"author,omitempty"`
	Message  string          `json:"message,omitempty"`
	Files    []FileDiff      `json:"files"`
	Findings []SecretFinding `json:"findings"`
}

// Report bundles every repository-level analytic in one envelope.
type Report struct {
	Repo        string         `json:"repo"`
	GeneratedAt time.Time      `json:"generated_at"`
	Churn       ChurnResult    `json:"churn"`
	Heatmap     HeatmapResult  `json:"heatmap"`
	Branches    BranchResult   `json:"branches"`
	PRs         PRResult       `json:"prs"`
	Overview    OverviewResult `json:"overview"`
}

// OverviewTotals holds the headline counts of a repository.
// Commits counts the newest commit page only.
type OverviewTotals struct {
	Commits      int `json:"commits"`
	OpenIssues   int `json:"open_issues"`
	PullRequests int `json:"pull_requests"`
}

// OverviewResult is the envelope of the overview command.
// License is nil when the repository has none.
type OverviewResult struct {
	Repo          string          `json:"repo"`
	Description   string          `json:"description,omitempty"`
	DefaultBranch string          `json:"default_branch"`
	Stars         int             `json:"stars"`
	Forks         int             `json:"forks"`
	License       *License        `json:"license"`
	Languages     []LanguageShare `json:"languages"`
	Contributors  []Contributor   `json:"contributors"`
	Totals        OverviewTotals  `json:"totals"`
	Manifests     []ManifestHint  `json:"manifests"`
}

// Summary is the model generated summary of a commit.
// Warning is set when the diff sent to the model looked like it held a credential.
type Summary struct {
	Repo    string `json:"repo"`
	Ref     string `json:"ref"`
	Model   string `json:"model"`
	Summary string `json:"summary"`
	Warning string `json:"warning,omitempty"`
}

// GetPlainLabel returns a plain text label for a risk score relative to the
// highest score of the same result set.
func GetPlainLabel(score, highest float64) string {
	if highest <= 0 {
		return "Low"
	}
	ratio := score / highest * 100
	switch {
	case ratio >= 80:
		return "Critical"
	case ratio >= 60:
		return "High"
	case ratio >= 40:
		return "Moderate"
	default:
		return "Low"
	}
}
