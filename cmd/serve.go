package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gitlabmcp/internal/config"
	"gitlabmcp/internal/credentials"
	"gitlabmcp/internal/server"
	"gitlabmcp/internal/tools"
	"gitlabmcp/pkg/logging"
)

// serveHost and servePort override the configured listen address for the
// HTTP-based transports. Empty / zero means use the configuration file value.
var (
	serveHost string
	servePort int
)

// serveDebug enables verbose logging across the application.
// This helps troubleshoot credential resolution and upstream API behavior.
var serveDebug bool

// newGateway loads configuration, builds the operation catalog and wires
// both into a gateway server. All transport commands share this setup; only
// the transport they then start differs.
//
// Logs always go to stderr. On the stdio transport stdout carries the MCP
// protocol stream, so writing logs there would corrupt the session.
func newGateway() (*server.GatewayServer, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := logging.ParseLevel(cfg.Server.LogLevel)
	if serveDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	reg, err := tools.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build operation catalog: %w", err)
	}

	return server.New(
		server.Config{Host: host, Port: port, Version: rootCmd.Version},
		reg,
		credentials.DefaultsFromConfig(cfg),
	), nil
}

func newStdioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout",
		Long: `Starts the gateway on the stdio transport. This is the mode editor-embedded
MCP clients use: the client spawns the process and exchanges protocol
messages over stdin and stdout. The server runs until the client closes
the stream.`,
		Args: cobra.NoArgs,
		RunE: runStdio,
	}
	return cmd
}

func runStdio(cmd *cobra.Command, args []string) error {
	gateway, err := newGateway()
	if err != nil {
		return err
	}
	return gateway.ServeStdio()
}

func newSSECmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sse",
		Short: "Serve MCP over SSE",
		Long: `Starts the gateway on the SSE transport. Clients connect to the /sse
endpoint for the event stream and post protocol messages to /message.
Per-request GitLab credentials can be supplied through the GITLAB_TOKEN
and GITLAB_URL request headers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocking(func(g *server.GatewayServer) error { return g.StartSSE() })
		},
	}
	addServeFlags(cmd)
	return cmd
}

func newStreamableHTTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streamable-http",
		Short: "Serve MCP over streamable HTTP",
		Long: `Starts the gateway on the streamable HTTP transport at the /mcp endpoint.
Per-request GitLab credentials can be supplied through the GITLAB_TOKEN
and GITLAB_URL request headers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocking(func(g *server.GatewayServer) error { return g.StartStreamableHTTP() })
		},
	}
	addServeFlags(cmd)
	return cmd
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (default from configuration)")
	cmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from configuration)")
}

// runBlocking starts an HTTP transport and keeps it running until SIGINT or
// SIGTERM, then shuts it down cleanly.
func runBlocking(start func(*server.GatewayServer) error) error {
	gateway, err := newGateway()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- start(gateway)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logging.Info("Server", "Received %s, shutting down", sig)
		if err := gateway.Stop(context.Background()); err != nil {
			return err
		}
		return <-errCh
	}
}
