package cmd

import (
	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/spf13/cobra"
)

// churnCmd ranks files by how much they changed in recent commits.
var churnCmd = &cobra.Command{
	Use:   "churn <owner/name>",
	Short: "Show the most changed and the riskiest files.",
	Long: `Sample the most recent commits of a branch and aggregate per-file churn.

Files are ranked twice:
- by total changed lines
- by risk score, which grows with changed lines and with how often a file is edited

Examples:
  # Top files of the last 80 commits on the default branch
  repolens churn golang/go

  # A bigger sample on a release branch, exported as CSV
  repolens churn golang/go --branch release-branch.go1.25 --churn-commits 200 --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteChurn(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run churn analysis", err)
		}
	},
}

// heatmapCmd shows daily commit activity.
var heatmapCmd = &cobra.Command{
	Use:   "heatmap <owner/name>",
	Short: "Show daily commit activity as a calendar heatmap.",
	Long: `Count commits per calendar day (UTC) over a trailing window.

Use --author to draw the heatmap of a single contributor.

Examples:
  # Repository activity over the last 90 days
  repolens heatmap golang/go

  # One contributor over a year
  repolens heatmap golang/go --author rsc --days 365 --commit-listing 500`,
	Args:    cobra.ExactArgs(1),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHeatmap(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build heatmap", err)
		}
	},
}

// branchesCmd ranks branches by recent activity.
var branchesCmd = &cobra.Command{
	Use:   "branches <owner/name>",
	Short: "Rank branches by recent activity and health.",
	Long: `Count the recent commits of every branch and derive a 0-100 health score.

A branch with --branch-cap or more recent commits is fully healthy.
Branches whose history cannot be fetched count as inactive.

Examples:
  repolens branches golang/go
  repolens branches golang/go --branch-cap 10 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBranches(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot rank branches", err)
		}
	},
}

// prsCmd aggregates pull requests.
var prsCmd = &cobra.Command{
	Use:   "prs <owner/name>",
	Short: "Count pull requests by state and rank their authors.",
	Long: `Summarize pull requests of every state.

Merged pull requests are also counted as closed.

Examples:
  repolens prs golang/go
  repolens prs golang/go --authors 10`,
	Args:    cobra.ExactArgs(1),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePRs(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot aggregate pull requests", err)
		}
	},
}

// reportCmd runs every analytic at once.
var reportCmd = &cobra.Command{
	Use:   "report <owner/name>",
	Short: "Run churn, heatmap, branch and pull request analytics together.",
	Long: `Fetch every repository analytic concurrently and print them in one report.

Sections that fail are reported as warnings and left empty.

Examples:
  repolens report golang/go
  repolens report golang/go --output json --output-file report.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build report", err)
		}
	},
}

// overviewCmd summarizes what a repository is made of.
var overviewCmd = &cobra.Command{
	Use:   "overview <owner/name>",
	Short: "Show languages, top contributors, license and dependency manifests.",
	Long: `Describe a repository at a glance.

The overview lists the language breakdown, the top contributors, the license,
totals for recent commits, open issues and pull requests, and flags dependency
manifests (package.json, pom.xml, requirements.txt) found at the root.

Sections that fail are reported as warnings and left empty.

Examples:
  repolens overview golang/go
  repolens overview golang/go --authors 10 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteOverview(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build overview", err)
		}
	},
}
