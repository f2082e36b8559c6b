// Package tools defines the static operation catalog: every GitLab API
// operation the gateway exposes, with its argument schema and handler. All
// remote operations share one generic forwarding handler built from their
// descriptor; only the clone operations and a few response-shaping cases
// carry custom logic.
package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"gitlabmcp/internal/apperr"
	"gitlabmcp/internal/credentials"
	"gitlabmcp/internal/gitlab"
	"gitlabmcp/internal/registry"
)

// forwardOptions tune how descriptor arguments become wire parameters.
type forwardOptions struct {
	// extras are fixed fields always merged into the query (GET/DELETE) or
	// body (POST/PUT), e.g. membership=true on project listings.
	extras map[string]interface{}
	// rename maps an argument name to its wire name when they differ.
	rename map[string]string
}

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// forward builds the gateway-forwarding handler for a descriptor: path
// parameters are substituted into the target path template and the
// remaining arguments become query parameters or a JSON request body
// depending on the HTTP method.
func forward(d registry.Descriptor, opts forwardOptions) registry.Handler {
	return func(ctx context.Context, args map[string]interface{}, creds credentials.Context) (json.RawMessage, error) {
		client := gitlab.NewClient(creds)

		path, remaining, err := expandPath(d.Path, args)
		if err != nil {
			return nil, err
		}

		wire := make(map[string]interface{}, len(remaining)+len(opts.extras))
		for name, value := range remaining {
			if renamed, ok := opts.rename[name]; ok {
				name = renamed
			}
			wire[name] = value
		}
		for name, value := range opts.extras {
			wire[name] = value
		}

		switch d.Method {
		case http.MethodGet, http.MethodDelete:
			query := toQuery(wire)
			if d.Paginated {
				return client.GetPaginated(ctx, path, query)
			}
			return client.Do(ctx, d.Method, path, query, nil)
		default:
			return client.Do(ctx, d.Method, path, nil, wire)
		}
	}
}

// expandPath substitutes {placeholder} path parameters from args and
// returns the concrete path plus the arguments not consumed by it. Path
// parameter values are escaped so file paths, branch and tag names travel
// safely inside one URL segment.
func expandPath(template string, args map[string]interface{}) (string, map[string]interface{}, error) {
	remaining := make(map[string]interface{}, len(args))
	for name, value := range args {
		remaining[name] = value
	}

	var expandErr error
	path := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.Trim(match, "{}")
		value, ok := remaining[name]
		if !ok {
			expandErr = apperr.New(apperr.KindValidation, "missing required argument %q", name)
			return match
		}
		delete(remaining, name)
		return url.PathEscape(paramString(value))
	})
	if expandErr != nil {
		return "", nil, expandErr
	}
	return path, remaining, nil
}

func toQuery(wire map[string]interface{}) url.Values {
	query := url.Values{}
	for name, value := range wire {
		query.Set(name, paramString(value))
	}
	return query
}

func paramString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// fileContent fetches a repository file and decodes its base64 content in
// place, so callers receive the file text rather than the raw encoding.
func fileContent(ctx context.Context, args map[string]interface{}, creds credentials.Context) (json.RawMessage, error) {
	client := gitlab.NewClient(creds)

	path, remaining, err := expandPath("/projects/{project_id}/repository/files/{file_path}", args)
	if err != nil {
		return nil, err
	}

	raw, err := client.Get(ctx, path, toQuery(remaining))
	if err != nil {
		return nil, err
	}

	var file map[string]interface{}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, apperr.New(apperr.KindTransport, "unexpected file payload: %v", err)
	}
	encoded, _ := file["content"].(string)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperr.New(apperr.KindTransport, "unable to decode file content: %v", err)
	}
	file["content"] = string(decoded)
	delete(file, "encoding")

	result, err := json.Marshal(file)
	if err != nil {
		return nil, apperr.New(apperr.KindTransport, "failed to encode file payload: %v", err)
	}
	return json.RawMessage(result), nil
}

// listProjects scopes the project listing with mutually exclusive query
// parameters: owned=true narrows to owned projects, otherwise
// membership=true lists everything the caller is a member of.
func listProjects(ctx context.Context, args map[string]interface{}, creds credentials.Context) (json.RawMessage, error) {
	client := gitlab.NewClient(creds)

	query := url.Values{}
	if owned, _ := args["owned"].(bool); owned {
		query.Set("owned", "true")
	} else {
		query.Set("membership", "true")
	}
	return client.GetPaginated(ctx, "/projects", query)
}

// commitActions builds the single-action commit payload of create_commit:
// the file arguments become one entry in the commit's actions array.
func commitActions(ctx context.Context, args map[string]interface{}, creds credentials.Context) (json.RawMessage, error) {
	client := gitlab.NewClient(creds)

	path, remaining, err := expandPath("/projects/{project_id}/repository/commits", args)
	if err != nil {
		return nil, err
	}

	action := remaining["action"]
	entry := map[string]interface{}{
		"action":    action,
		"file_path": remaining["file_path"],
	}
	if action != "delete" {
		entry["content"] = remaining["file_content"]
	}

	body := map[string]interface{}{
		"branch":         remaining["branch"],
		"commit_message": remaining["commit_message"],
		"actions":        []interface{}{entry},
	}
	return client.Do(ctx, http.MethodPost, path, nil, body)
}
