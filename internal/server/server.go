// Package server exposes the operation catalog over the MCP protocol. One
// shared MCP server carries every registered operation; the three transports
// (stdio, SSE, streamable HTTP) are thin shells around it, so a call produces
// the same payload no matter which transport delivered it.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"gitlabmcp/internal/apperr"
	"gitlabmcp/internal/credentials"
	"gitlabmcp/internal/registry"
	"gitlabmcp/pkg/logging"
)

const (
	serverName = "gitlab-mcp"
	subsystem  = "Server"

	sseEndpoint        = "/sse"
	messageEndpoint    = "/message"
	streamableEndpoint = "/mcp"

	keepAliveInterval = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config holds the network settings for the HTTP-based transports. Stdio
// ignores them.
type Config struct {
	Host    string
	Port    int
	Version string
}

// GatewayServer binds the operation registry to an MCP server and runs it
// over the selected transport.
type GatewayServer struct {
	config   Config
	registry *registry.Registry
	defaults credentials.Defaults
	mcp      *mcpserver.MCPServer

	mu         sync.Mutex
	sse        *mcpserver.SSEServer
	streamable *mcpserver.StreamableHTTPServer
}

// New builds the MCP server and registers one tool per catalog entry. The
// tool set is fixed from this point on.
func New(cfg Config, reg *registry.Registry, defaults credentials.Defaults) *GatewayServer {
	g := &GatewayServer{
		config:   cfg,
		registry: reg,
		defaults: defaults,
	}

	g.mcp = mcpserver.NewMCPServer(
		serverName,
		cfg.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	for _, d := range reg.Descriptors() {
		g.mcp.AddTool(toolFromDescriptor(d), g.handlerFor(d.Name))
	}
	return g
}

// handlerFor adapts a catalog operation to the MCP tool call contract.
// Operation failures become tool error results carrying the error envelope,
// never protocol-level errors, so clients always get a well-formed response.
func (g *GatewayServer) handlerFor(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		creds, err := credentials.Resolve(g.defaults, credentials.OverrideFrom(ctx))
		if err != nil {
			logging.Warn(subsystem, "Credential resolution failed for %s: %v", name, err)
			return mcp.NewToolResultError(apperr.Envelope(err)), nil
		}

		result, err := g.registry.Dispatch(ctx, name, request.GetArguments(), creds)
		if err != nil {
			logging.Warn(subsystem, "Operation %s failed: %v", name, err)
			return mcp.NewToolResultError(apperr.Envelope(err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	}
}

// toolFromDescriptor converts a catalog schema into the MCP tool schema the
// client sees during discovery.
func toolFromDescriptor(d registry.Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}
	for _, f := range d.Args {
		props := []mcp.PropertyOption{mcp.Description(f.Description)}
		if f.Required {
			props = append(props, mcp.Required())
		}

		switch f.Type {
		case registry.FieldInteger, registry.FieldNumber:
			opts = append(opts, mcp.WithNumber(f.Name, props...))
		case registry.FieldBoolean:
			opts = append(opts, mcp.WithBoolean(f.Name, props...))
		default:
			if len(f.Enum) > 0 {
				props = append(props, mcp.Enum(f.Enum...))
			}
			if def, ok := f.Default.(string); ok {
				props = append(props, mcp.DefaultString(def))
			}
			opts = append(opts, mcp.WithString(f.Name, props...))
		}
	}
	return mcp.NewTool(d.Name, opts...)
}

// overrideFromRequest stashes any per-request credential headers on the
// context so dispatch can resolve them. It is installed as the context func
// on both HTTP transports.
func overrideFromRequest(ctx context.Context, r *http.Request) context.Context {
	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}
	return credentials.WithOverride(ctx, credentials.OverrideFromHeaders(headers))
}

// ServeStdio runs the server over stdin/stdout and blocks until the client
// disconnects. Logs must already be routed to stderr; stdout belongs to the
// protocol.
func (g *GatewayServer) ServeStdio() error {
	logging.Info(subsystem, "Serving MCP over stdio")
	return mcpserver.ServeStdio(g.mcp)
}

func (g *GatewayServer) newSSEServer(baseURL string) *mcpserver.SSEServer {
	return mcpserver.NewSSEServer(
		g.mcp,
		mcpserver.WithBaseURL(baseURL),
		mcpserver.WithSSEEndpoint(sseEndpoint),
		mcpserver.WithMessageEndpoint(messageEndpoint),
		mcpserver.WithKeepAlive(true),
		mcpserver.WithKeepAliveInterval(keepAliveInterval),
		mcpserver.WithSSEContextFunc(overrideFromRequest),
	)
}

func (g *GatewayServer) newStreamableServer() *mcpserver.StreamableHTTPServer {
	return mcpserver.NewStreamableHTTPServer(
		g.mcp,
		mcpserver.WithEndpointPath(streamableEndpoint),
		mcpserver.WithHTTPContextFunc(overrideFromRequest),
	)
}

// SSEHandler returns the SSE transport as an http.Handler so it can be
// mounted under an existing routing surface instead of a dedicated listener.
func (g *GatewayServer) SSEHandler() http.Handler {
	return g.newSSEServer(fmt.Sprintf("http://%s", g.addr()))
}

// StreamableHTTPHandler is the streamable HTTP counterpart of SSEHandler.
func (g *GatewayServer) StreamableHTTPHandler() http.Handler {
	return g.newStreamableServer()
}

// StartSSE serves the SSE transport on the configured host and port,
// blocking until Stop is called or the listener fails.
func (g *GatewayServer) StartSSE() error {
	addr := g.addr()
	baseURL := fmt.Sprintf("http://%s", addr)

	g.mu.Lock()
	if g.sse != nil || g.streamable != nil {
		g.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	g.sse = g.newSSEServer(baseURL)
	sse := g.sse
	g.mu.Unlock()

	logging.Info(subsystem, "Serving MCP over SSE on %s%s", baseURL, sseEndpoint)
	if err := sse.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartStreamableHTTP serves the streamable HTTP transport on the configured
// host and port, blocking until Stop is called or the listener fails.
func (g *GatewayServer) StartStreamableHTTP() error {
	addr := g.addr()

	g.mu.Lock()
	if g.sse != nil || g.streamable != nil {
		g.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	g.streamable = g.newStreamableServer()
	streamable := g.streamable
	g.mu.Unlock()

	logging.Info(subsystem, "Serving MCP over streamable HTTP on http://%s%s", addr, streamableEndpoint)
	if err := streamable.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts down whichever HTTP transport is running. Stopping a server
// that never started is a no-op.
func (g *GatewayServer) Stop(ctx context.Context) error {
	g.mu.Lock()
	sse := g.sse
	streamable := g.streamable
	g.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if sse != nil {
		logging.Info(subsystem, "Stopping SSE server")
		return sse.Shutdown(shutdownCtx)
	}
	if streamable != nil {
		logging.Info(subsystem, "Stopping streamable HTTP server")
		return streamable.Shutdown(shutdownCtx)
	}
	return nil
}

func (g *GatewayServer) addr() string {
	return fmt.Sprintf("%s:%d", g.config.Host, g.config.Port)
}
