package cmd

import (
	"errors"

	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// reposCmd lists the repositories of a user or organization.
var reposCmd = &cobra.Command{
	Use:   "repos <owner>",
	Short: "List the repositories of a user or organization.",
	Long: `List public repositories of an owner, plus private ones the token can see.

Examples:
  repolens repos golang
  repolens repos golang --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: ownerSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRepos(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list repositories", err)
		}
	},
}

// fileCmd reads and writes repository files through the contents API.
var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Read or commit a single repository file",
	Long: `Read a file at a ref, or commit new contents of a file.

Subcommands:
  get - Print a file
  put - Commit a local file to the repository`,
}

// fileGetCmd prints a file.
var fileGetCmd = &cobra.Command{
	Use:   "get <owner/name> <path>",
	Short: "Print a repository file",
	Long: `Print the decoded contents of a file.

Examples:
  repolens file get golang/go README.md
  repolens file get golang/go src/go.mod --branch release-branch.go1.25`,
	Args:    cobra.ExactArgs(2),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.NewFileGetExecutor(args[1])(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot get file", err)
		}
	},
}

// filePutCmd commits a local file.
var filePutCmd = &cobra.Command{
	Use:   "put <owner/name> <path>",
	Short: "Commit a local file to the repository",
	Long: `Create or update a file with the contents of a local file.

The current blob sha is looked up automatically, so existing files are updated.

Examples:
  repolens file put me/notes README.md --source ./README.md --message "Refresh readme"`,
	Args:    cobra.ExactArgs(2),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		source := viper.GetString("source")
		if source == "" {
			contract.LogFatal("Cannot put file", errors.New("--source is required"))
		}
		message := viper.GetString("message")
		if message == "" {
			message = "Update " + args[1]
		}
		if err := core.NewFilePutExecutor(args[1], source, message)(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot put file", err)
		}
	},
}
