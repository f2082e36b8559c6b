package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestSetVersion(t *testing.T) {
	// Test setting version
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
}

func TestRootCommand(t *testing.T) {
	// Test root command properties
	if rootCmd.Use != "gitlab-mcp" {
		t.Errorf("Expected Use to be 'gitlab-mcp', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}

	// Bare invocation starts the stdio transport
	if rootCmd.RunE == nil {
		t.Error("Expected RunE function to be set")
	}
}

func TestVersionTemplate(t *testing.T) {
	// Create a new command to test version template
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}

	// Set the same version template as in Execute()
	testCmd.SetVersionTemplate(`{{printf "gitlab-mcp version %s\n" .Version}}`)

	// Capture output
	var buf bytes.Buffer
	testCmd.SetOut(&buf)

	// Execute version command
	testCmd.SetArgs([]string{"--version"})
	err := testCmd.Execute()
	if err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	output := buf.String()
	expected := "gitlab-mcp version 1.0.0\n"
	if output != expected {
		t.Errorf("Expected version output %q, got %q", expected, output)
	}
}

func TestSubcommands(t *testing.T) {
	// Test that subcommands are added
	commands := rootCmd.Commands()

	expectedCommands := []string{"stdio", "sse", "streamable-http", "version", "self-update"}
	foundCommands := make(map[string]bool)

	for _, cmd := range commands {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestTransportCommandFlags(t *testing.T) {
	for _, name := range []string{"sse", "streamable-http"} {
		var found *cobra.Command
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = cmd
				break
			}
		}
		if found == nil {
			t.Fatalf("Expected %s command to be registered", name)
		}

		for _, flag := range []string{"host", "port"} {
			if found.Flags().Lookup(flag) == nil {
				t.Errorf("Expected %s command to have --%s flag", name, flag)
			}
		}
	}

	if rootCmd.PersistentFlags().Lookup("debug") == nil {
		t.Error("Expected root command to have persistent --debug flag")
	}
}

func TestRootCommandHelp(t *testing.T) {
	// Test that help can be generated without error
	var buf bytes.Buffer

	// Create a new command to avoid affecting the global one
	testRootCmd := &cobra.Command{
		Use:   "gitlab-mcp",
		Short: "MCP gateway for the GitLab REST API",
		Long: `gitlab-mcp exposes the GitLab REST API as MCP tools, so AI assistants
can manage projects, issues, merge requests, pipelines and repositories
through a single server.`,
		SilenceUsage: true,
	}

	testRootCmd.SetOut(&buf)
	testRootCmd.SetArgs([]string{"--help"})

	err := testRootCmd.Execute()
	if err != nil {
		t.Fatalf("Error executing help command: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "gitlab-mcp") {
		t.Errorf("Help output should contain 'gitlab-mcp'. Got: %q", output)
	}

	if !strings.Contains(output, "exposes the GitLab REST API") {
		t.Errorf("Help output should contain the long description. Got: %q", output)
	}
}
