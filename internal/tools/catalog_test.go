package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlabmcp/internal/apperr"
	"gitlabmcp/internal/credentials"
)

// recordedRequest captures what the gateway actually sent upstream.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]interface{}
}

// newRecordingGitLab returns a fake GitLab endpoint that records every
// request and answers with the given payload.
func newRecordingGitLab(t *testing.T, payload string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  map[string]string{},
		}
		for name := range r.URL.Query() {
			rec.Query[name] = r.URL.Query().Get(name)
		}
		if r.Body != nil {
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				rec.Body = body
			}
		}
		requests = append(requests, rec)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func testCreds(baseURL string) credentials.Context {
	return credentials.Context{BaseURL: baseURL, Token: "glpat-test"}
}

func TestNewRegistry_CatalogComplete(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	descriptors := r.Descriptors()
	assert.Len(t, descriptors, 46)

	names := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Description, "operation %s has no description", d.Name)
		names[d.Name] = true
	}
	assert.Len(t, names, 46)

	for _, expected := range []string{
		"create_project", "list_projects", "search_projects", "get_project",
		"get_project_issues", "close_issue", "create_merge_request",
		"compare_branches", "create_commit", "get_file_content",
		"trigger_pipeline", "retry_pipeline", "cancel_pipeline",
		"list_groups", "list_group_projects", "get_current_user",
		"clone_repository", "clone_group_repositories",
	} {
		assert.True(t, names[expected], "operation %s missing from catalog", expected)
	}
}

func TestDispatch_GetForwardsPathQueryAndDefaults(t *testing.T) {
	srv, requests := newRecordingGitLab(t, `[{"iid":1}]`)
	r, err := NewRegistry()
	require.NoError(t, err)

	result, err := r.Dispatch(context.Background(), "get_project_issues",
		map[string]interface{}{"project_id": 42}, testCreds(srv.URL))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"iid":1}]`, string(result))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v4/projects/42/issues", req.Path)
	assert.Equal(t, "opened", req.Query["state"])
	assert.Equal(t, "100", req.Query["per_page"])
}

func TestDispatch_PostSendsBodyWithExtras(t *testing.T) {
	srv, requests := newRecordingGitLab(t, `{"id":7,"name":"demo"}`)
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "create_project",
		map[string]interface{}{"name": "demo"}, testCreds(srv.URL))
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v4/projects", req.Path)
	assert.Equal(t, "demo", req.Body["name"])
	assert.Equal(t, "", req.Body["description"])
	assert.Equal(t, "private", req.Body["visibility"])
	assert.Equal(t, true, req.Body["initialize_with_readme"])
}

func TestDispatch_ListProjectsScopeIsExclusive(t *testing.T) {
	srv, requests := newRecordingGitLab(t, `[{"id":1}]`)
	r, err := NewRegistry()
	require.NoError(t, err)

	// Default scope lists memberships without an owned parameter.
	_, err = r.Dispatch(context.Background(), "list_projects",
		map[string]interface{}{}, testCreds(srv.URL))
	require.NoError(t, err)

	// Owned scope replaces the membership parameter entirely.
	_, err = r.Dispatch(context.Background(), "list_projects",
		map[string]interface{}{"owned": true}, testCreds(srv.URL))
	require.NoError(t, err)

	require.Len(t, *requests, 2)
	membership := (*requests)[0]
	assert.Equal(t, "true", membership.Query["membership"])
	assert.NotContains(t, membership.Query, "owned")

	owned := (*requests)[1]
	assert.Equal(t, "true", owned.Query["owned"])
	assert.NotContains(t, owned.Query, "membership")
}

func TestDispatch_QueryArgumentsRenamed(t *testing.T) {
	srv, requests := newRecordingGitLab(t, `{"commits":[]}`)
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "compare_branches",
		map[string]interface{}{"project_id": 3, "from_branch": "main", "to_branch": "dev"},
		testCreds(srv.URL))
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/api/v4/projects/3/repository/compare", req.Path)
	assert.Equal(t, "main", req.Query["from"])
	assert.Equal(t, "dev", req.Query["to"])
	assert.NotContains(t, req.Query, "from_branch")
}

func TestDispatch_BodyArgumentsRenamed(t *testing.T) {
	srv, requests := newRecordingGitLab(t, `{"name":"feature"}`)
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "create_branch",
		map[string]interface{}{"project_id": 3, "branch_name": "feature"},
		testCreds(srv.URL))
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "feature", req.Body["branch"])
	assert.Equal(t, "main", req.Body["ref"])
	assert.NotContains(t, req.Body, "branch_name")
}

func TestDispatch_PathParametersEscaped(t *testing.T) {
	srv, requests := newRecordingGitLab(t, `{"success":true}`)
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "delete_branch",
		map[string]interface{}{"project_id": 3, "branch_name": "feature/login"},
		testCreds(srv.URL))
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.Equal(t, "/api/v4/projects/3/repository/branches/feature%2Flogin", (*requests)[0].Path)
}

func TestDispatch_ValidationFailureNeverReachesNetwork(t *testing.T) {
	srv, requests := newRecordingGitLab(t, `{}`)
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "create_issue",
		map[string]interface{}{"project_id": 42}, testCreds(srv.URL))
	require.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Empty(t, *requests)
}

func TestFileContent_DecodesBase64InPlace(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("package main\n"))
	srv, requests := newRecordingGitLab(t,
		`{"file_name":"main.go","content":"`+encoded+`","encoding":"base64","ref":"main"}`)
	r, err := NewRegistry()
	require.NoError(t, err)

	result, err := r.Dispatch(context.Background(), "get_file_content",
		map[string]interface{}{"project_id": 5, "file_path": "cmd/main.go"},
		testCreds(srv.URL))
	require.NoError(t, err)

	var file map[string]interface{}
	require.NoError(t, json.Unmarshal(result, &file))
	assert.Equal(t, "package main\n", file["content"])
	assert.NotContains(t, file, "encoding")
	assert.Equal(t, "main.go", file["file_name"])

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/api/v4/projects/5/repository/files/cmd%2Fmain.go", req.Path)
	assert.Equal(t, "main", req.Query["ref"])
}

func TestCommitActions_BuildsActionsArray(t *testing.T) {
	srv, requests := newRecordingGitLab(t, `{"id":"abc123"}`)
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "create_commit",
		map[string]interface{}{
			"project_id":     5,
			"branch":         "main",
			"commit_message": "add readme",
			"file_path":      "README.md",
			"file_content":   "# Demo",
		}, testCreds(srv.URL))
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/api/v4/projects/5/repository/commits", req.Path)
	assert.Equal(t, "main", req.Body["branch"])
	assert.Equal(t, "add readme", req.Body["commit_message"])

	actions, ok := req.Body["actions"].([]interface{})
	require.True(t, ok)
	require.Len(t, actions, 1)
	action := actions[0].(map[string]interface{})
	assert.Equal(t, "create", action["action"])
	assert.Equal(t, "README.md", action["file_path"])
	assert.Equal(t, "# Demo", action["content"])
}

func TestCommitActions_DeleteOmitsContent(t *testing.T) {
	srv, requests := newRecordingGitLab(t, `{"id":"abc123"}`)
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "create_commit",
		map[string]interface{}{
			"project_id":     5,
			"branch":         "main",
			"commit_message": "drop stale file",
			"file_path":      "old.txt",
			"action":         "delete",
		}, testCreds(srv.URL))
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	actions := (*requests)[0].Body["actions"].([]interface{})
	require.Len(t, actions, 1)
	action := actions[0].(map[string]interface{})
	assert.Equal(t, "delete", action["action"])
	assert.NotContains(t, action, "content")
}
