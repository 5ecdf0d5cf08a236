// Package cmd defines the command-line interface for repolens.
package cmd

import (
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(churnCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(branchesCmd)
	rootCmd.AddCommand(prsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(secretsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)

	// Add the file subcommands to the parent file command
	fileCmd.AddCommand(fileGetCmd)
	fileCmd.AddCommand(filePutCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("token", "", "GitHub token (defaults to REPOLENS_TOKEN or GITHUB_TOKEN)")
	flags.String("api-url", contract.DefaultAPIURL, "Base URL of the GitHub REST API")
	flags.Int("workers", contract.DefaultWorkers, "Number of concurrent API requests")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("log-level", "info", "Log level: debug or info or warn or error")
	flags.String("cache-backend", string(schema.SQLiteBackend), "Response cache backend: sqlite or mysql or postgresql or none")
	flags.String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("cache-ttl", contract.DefaultCacheTTL.String(), "How long cached API responses stay fresh")
	flags.String("analysis-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	flags.String("analysis-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	flags.Int("churn-commits", schema.DefaultChurnCommits, "Number of recent commits sampled for churn")
	flags.Int("top", schema.DefaultTopFiles, "Number of most changed files to show")
	flags.Int("risky", schema.DefaultRiskyFiles, "Number of riskiest files to show")
	flags.Int("days", schema.DefaultHeatmapDays, "Heatmap window in days")
	flags.Int("branch-cap", schema.DefaultBranchCap, "Recent commit count that means full branch health")
	flags.Int("branch-page", schema.DefaultBranchPage, "Commits fetched per branch to measure recent activity")
	flags.Int("authors", schema.DefaultTopAuthors, "Number of top pull request authors and contributors to show")
	flags.Int("commit-listing", schema.DefaultCommitListing, "Number of commits fetched for the heatmap")
	flags.String("branch", "", "Branch or ref to read from (default branch when empty)")
	flags.String("author", "", "Restrict the heatmap to one contributor login")
	flags.String("base", "", "Base ref for diff comparisons")
	flags.String("head", "", "Head ref for diff comparisons")
	flags.String("openai-key", "", "API key enabling commit summaries")
	flags.String("openai-model", contract.DefaultOpenAIModel, "Chat model used for commit summaries")
	flags.String("openai-url", "", "Base URL of an OpenAI compatible API")
	flags.String("addr", contract.DefaultAddr, "Listen address of the HTTP API")
	flags.String("allowed-origin", "", "Comma-separated CORS origins of the HTTP API (default localhost only)")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of filePutCmd to Viper
	filePutCmd.Flags().String("source", "", "Local file whose contents are committed")
	filePutCmd.Flags().String("message", "", "Commit message (default: Update <path>)")
	if err := viper.BindPFlags(filePutCmd.Flags()); err != nil {
		contract.LogFatal("Error binding file put flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
