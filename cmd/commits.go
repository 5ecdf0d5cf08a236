package cmd

import (
	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/spf13/cobra"
)

// diffCmd renders a side-by-side diff.
var diffCmd = &cobra.Command{
	Use:   "diff <owner/name> [sha]",
	Short: "Show the side-by-side diff of a commit or of two refs.",
	Long: `Render every file of a commit as original and changed columns.

Without a sha, --base and --head are compared instead.
Binary and oversized files are listed without a patch.

Examples:
  repolens diff golang/go 3f2a9b1
  repolens diff golang/go --base go1.24.0 --head go1.25.0`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.NewDiffExecutor(optionalArg(args, 1))(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot render diff", err)
		}
	},
}

// secretsCmd scans a commit for probable credentials.
var secretsCmd = &cobra.Command{
	Use:   "secrets <owner/name> [sha]",
	Short: "Flag probable credentials added or removed by a commit.",
	Long: `Scan the patch of every file for keywords and token prefixes that usually mark secrets.

This is a triage aid. Findings are printed but never change the exit status.

Examples:
  repolens secrets golang/go 3f2a9b1
  repolens secrets golang/go --base main --head feature --output json`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.NewSecretsExecutor(optionalArg(args, 1))(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot scan for secrets", err)
		}
	},
}

// summaryCmd asks a chat model to summarize a commit.
var summaryCmd = &cobra.Command{
	Use:   "summary <owner/name> <sha>",
	Short: "Summarize a commit with an OpenAI compatible model.",
	Long: `Send the combined diff of a commit to a chat model and print its summary.

Requires --openai-key (or REPOLENS_OPENAI_KEY).

Examples:
  repolens summary golang/go 3f2a9b1
  repolens summary golang/go 3f2a9b1 --openai-url http://localhost:11434/v1 --openai-model llama3`,
	Args:    cobra.ExactArgs(2),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.NewSummaryExecutor(args[1])(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot summarize commit", err)
		}
	},
}

// optionalArg returns args[i] or an empty string.
func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
