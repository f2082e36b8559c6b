package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gitlab-mcp",
	Short: "MCP gateway for the GitLab REST API",
	Long: `gitlab-mcp exposes the GitLab REST API as MCP tools, so AI assistants
can manage projects, issues, merge requests, pipelines and repositories
through a single server. It speaks stdio for editor-embedded clients and
SSE or streamable HTTP for network clients.

Running gitlab-mcp without a subcommand starts the stdio transport.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid arguments, failed upstream calls)
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v // Set cobra's version field as well
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Set up version template
	rootCmd.SetVersionTemplate(`{{printf "gitlab-mcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal above to avoid an
	// initialization cycle (runStdio -> newGateway -> rootCmd.Version).
	rootCmd.RunE = runStdio

	rootCmd.PersistentFlags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newStdioCmd())
	rootCmd.AddCommand(newSSECmd())
	rootCmd.AddCommand(newStreamableHTTPCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
