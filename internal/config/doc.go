// Package config provides configuration management for gitlab-mcp.
//
// This package implements a layered configuration system that allows users to
// customize gitlab-mcp's behavior through YAML files and environment
// variables. Configuration is loaded from multiple sources and merged in a
// specific order, with later sources overriding earlier ones.
//
// # Configuration Layers
//
// Configuration is loaded and merged in the following order:
//
//  1. Default Configuration (embedded in binary)
//     - Canonical public instance URL (https://gitlab.com)
//     - localhost:8000 bind address for the HTTP transports
//
//  2. User Configuration (~/.config/gitlab-mcp/config.yaml)
//     - User-specific settings that apply to all projects
//
//  3. Project Configuration (./.gitlab-mcp/config.yaml)
//     - Project-specific settings in the current directory
//     - Allows teams to share configuration via version control
//
//  4. Environment Variables (GITLAB_TOKEN, GITLAB_URL)
//     - Always win over any file-provided value
//
// # Configuration Structure
//
//	gitlab:
//	  url: "https://gitlab.example.com"
//	  token: "glpat-..."
//	server:
//	  host: "localhost"
//	  port: 8000
//
// The resolved configuration is read once at process start and treated as
// immutable for the process lifetime; per-request credential overrides are
// handled separately by the credentials package.
package config
