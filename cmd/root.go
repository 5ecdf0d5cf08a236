package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/iocache"
	"github.com/huangsam/repolens/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// cacheManager is the global persistence manager instance.
var cacheManager contract.CacheManager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "repolens",
	Short:              "Analyze GitHub repository activity from the REST API.",
	Long:               `Repolens turns commits, branches and pull requests into churn, risk, activity and health insights.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env file is the common case
	_ = godotenv.Load()

	setConfigFile()

	viper.SetEnvPrefix("REPOLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api-url", contract.DefaultAPIURL)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", "info")
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("cache-ttl", contract.DefaultCacheTTL.String())
	viper.SetDefault("analysis-backend", "")
	viper.SetDefault("analysis-db-connect", "")
	viper.SetDefault("churn-commits", schema.DefaultChurnCommits)
	viper.SetDefault("top", schema.DefaultTopFiles)
	viper.SetDefault("risky", schema.DefaultRiskyFiles)
	viper.SetDefault("days", schema.DefaultHeatmapDays)
	viper.SetDefault("branch-cap", schema.DefaultBranchCap)
	viper.SetDefault("branch-page", schema.DefaultBranchPage)
	viper.SetDefault("authors", schema.DefaultTopAuthors)
	viper.SetDefault("commit-listing", schema.DefaultCommitListing)
	viper.SetDefault("openai-model", contract.DefaultOpenAIModel)
	viper.SetDefault("addr", contract.DefaultAddr)
}

// setConfigFile points viper at --config or at .repolens.yaml in the
// current or home directory.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".repolens")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile reads the config file if present.
func loadConfigFile() error {
	setConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the stores.
func sharedSetup() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if input.Token == "" {
		input.Token = os.Getenv("GITHUB_TOKEN")
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	color.NoColor = !cfg.UseColors
	contract.SetLogLevel(cfg.LogLevel)

	// 4. Initialize persistence layer with validated config
	if err := iocache.InitCaching(cfg.CacheBackend, cfg.CacheDBConnect, cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	cacheManager = iocache.Manager
	return nil
}

// Positional arguments are handled by the wrappers below (which Viper doesn't do).

// repoSetupWrapper treats the first positional argument as owner/name.
func repoSetupWrapper(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("a repository (owner/name) is required")
	}
	input.RepoStr = args[0]
	return sharedSetup()
}

// ownerSetupWrapper treats the first positional argument as a user or organization.
func ownerSetupWrapper(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("an owner is required")
	}
	input.OwnerStr = args[0]
	return sharedSetup()
}

// serviceSetupWrapper is used by long running servers that take the
// repository per request.
func serviceSetupWrapper(_ *cobra.Command, _ []string) error {
	return sharedSetup()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
