package config

// GitLabMCPConfig is the top-level configuration structure for gitlab-mcp.
type GitLabMCPConfig struct {
	GitLab GitLabConfig `yaml:"gitlab"`
	Server ServerConfig `yaml:"server"`
}

// GitLabConfig holds the process-wide credential defaults. Both fields can
// come from config files but the GITLAB_TOKEN / GITLAB_URL environment
// variables always win. The values are read once at startup and never
// mutated by an invocation.
type GitLabConfig struct {
	URL   string `yaml:"url,omitempty"`   // Base instance URL (default: https://gitlab.com)
	Token string `yaml:"token,omitempty"` // Personal or CI access token
}

const (
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStdio is the standard I/O transport.
	TransportStdio = "stdio"
)

// ServerConfig defines how the HTTP-based transports bind.
type ServerConfig struct {
	Host     string `yaml:"host,omitempty"`     // Host to bind to (default: localhost)
	Port     int    `yaml:"port,omitempty"`     // Port for the SSE / streamable HTTP endpoint (default: 8000)
	LogLevel string `yaml:"logLevel,omitempty"` // debug, info, warn or error (default: info)
}
