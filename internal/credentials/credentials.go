// Package credentials resolves which token and base URL apply to one tool
// invocation. Process-wide defaults are established once at startup from the
// configuration; the two HTTP-based transports may additionally carry a
// per-request override in the GITLAB_TOKEN / GITLAB_URL request headers.
package credentials

import (
	"context"
	"strings"

	"gitlabmcp/internal/apperr"
	"gitlabmcp/internal/config"
)

// Header names recognized as per-request overrides. Matching is
// case-insensitive, mirroring HTTP header semantics.
const (
	HeaderToken = "GITLAB_TOKEN"
	HeaderURL   = "GITLAB_URL"
)

// Context is the resolved credential pair for one invocation.
type Context struct {
	BaseURL string
	Token   string
}

// Defaults are the channel defaults from the process configuration. Set
// once at init, read-only afterwards.
type Defaults struct {
	BaseURL string
	Token   string
}

// DefaultsFromConfig extracts the channel defaults from a loaded config.
func DefaultsFromConfig(cfg config.GitLabMCPConfig) Defaults {
	return Defaults{BaseURL: cfg.GitLab.URL, Token: cfg.GitLab.Token}
}

// Override is the header-carried credential attached to a single request.
// It is only present for the SSE and streamable HTTP transports; the stdio
// transport has no per-call override channel.
type Override struct {
	Token   string
	BaseURL string
}

// OverrideFromHeaders extracts an override from header-like key/value
// pairs using case-insensitive key matching.
func OverrideFromHeaders(headers map[string]string) Override {
	var o Override
	for key, value := range headers {
		switch {
		case strings.EqualFold(strings.TrimSpace(key), HeaderToken):
			o.Token = value
		case strings.EqualFold(strings.TrimSpace(key), HeaderURL):
			o.BaseURL = value
		}
	}
	return o
}

// Resolve produces the effective credential pair for one invocation.
//
// If the override supplies a token it wins entirely: the override token and
// any override base URL apply. Otherwise the channel defaults are used. An
// override base URL without a token is ignored; credentials are resolved as
// a unit, never mixed. A missing token from both sources is a hard failure
// before any remote call is attempted.
func Resolve(defaults Defaults, override Override) (Context, error) {
	baseURL := defaults.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultGitLabURL
	}

	if override.Token != "" {
		if override.BaseURL != "" {
			baseURL = override.BaseURL
		}
		return Context{BaseURL: baseURL, Token: override.Token}, nil
	}

	if defaults.Token == "" {
		return Context{}, apperr.New(apperr.KindAuth, "missing credential")
	}
	return Context{BaseURL: baseURL, Token: defaults.Token}, nil
}

type contextKey struct{}

// WithOverride stashes a per-request override on ctx. The transport layers
// install this from incoming request headers before dispatch.
func WithOverride(ctx context.Context, override Override) context.Context {
	return context.WithValue(ctx, contextKey{}, override)
}

// OverrideFrom returns the override stashed on ctx, if any. The zero value
// means no per-request credential was carried.
func OverrideFrom(ctx context.Context) Override {
	if o, ok := ctx.Value(contextKey{}).(Override); ok {
		return o
	}
	return Override{}
}
