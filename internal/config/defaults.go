package config

const (
	// DefaultGitLabURL is the canonical public instance used when no
	// configuration or environment override supplies a base URL.
	DefaultGitLabURL = "https://gitlab.com"

	// DefaultHost and DefaultPort are where the HTTP-based transports bind.
	DefaultHost = "localhost"
	DefaultPort = 8000

	// DefaultLogLevel keeps routine request logging out of the way.
	DefaultLogLevel = "info"
)

// GetDefaultConfig returns the built-in configuration baseline. It carries
// no token: credentials come from the environment, config files, or
// per-request headers.
func GetDefaultConfig() GitLabMCPConfig {
	return GitLabMCPConfig{
		GitLab: GitLabConfig{
			URL: DefaultGitLabURL,
		},
		Server: ServerConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			LogLevel: DefaultLogLevel,
		},
	}
}
