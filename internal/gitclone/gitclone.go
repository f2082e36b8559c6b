// Package gitclone implements the two local side-effecting operations:
// cloning one repository and cloning every repository in a group. Both
// resolve clone URLs through the API gateway and then drive the external
// git binary as a scoped subprocess.
package gitclone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gitlabmcp/internal/apperr"
	"gitlabmcp/internal/credentials"
	"gitlabmcp/internal/gitlab"
	"gitlabmcp/pkg/logging"
)

const subsystem = "GitClone"

// cloneTimeout bounds one git clone subprocess. The process handle is
// reaped on every exit path; a timeout kills the process group via the
// command context.
const cloneTimeout = 5 * time.Minute

// For mocking in tests
var execLookPath = exec.LookPath
var runGitClone = func(ctx context.Context, cloneURL, destination string) error {
	cmd := exec.CommandContext(ctx, "git", "clone", cloneURL, destination)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("clone timed out after %s", cloneTimeout)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%s", detail)
	}
	return nil
}

// projectInfo is the subset of project metadata clone operations need.
type projectInfo struct {
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	HTTPURLToRepo     string `json:"http_url_to_repo"`
	SSHURLToRepo      string `json:"ssh_url_to_repo"`
}

// cloneOutcome is one entry in the batch result and also the payload of a
// single-repository clone.
type cloneOutcome struct {
	Project   string `json:"project"`
	LocalPath string `json:"local_path"`
	Cloned    bool   `json:"cloned"`
	Error     string `json:"error,omitempty"`
}

// CloneRepository resolves the project's clone URL via one metadata fetch
// and materializes the repository at the requested destination.
func CloneRepository(ctx context.Context, args map[string]interface{}, creds credentials.Context) (json.RawMessage, error) {
	client := gitlab.NewClient(creds)

	projectID, _ := args["project_id"].(int64)
	raw, err := client.Get(ctx, fmt.Sprintf("/projects/%d", projectID), nil)
	if err != nil {
		return nil, err
	}
	var project projectInfo
	if err := json.Unmarshal(raw, &project); err != nil {
		return nil, apperr.New(apperr.KindTransport, "unexpected project payload: %v", err)
	}

	useSSH, _ := args["use_ssh"].(bool)
	localPath, _ := args["local_path"].(string)
	if localPath == "" {
		localPath = "./" + project.Name
	}

	if err := cloneOne(ctx, project, localPath, useSSH, creds.Token); err != nil {
		return nil, err
	}

	outcome := cloneOutcome{Project: project.PathWithNamespace, LocalPath: localPath, Cloned: true}
	result, err := json.Marshal(outcome)
	if err != nil {
		return nil, apperr.New(apperr.KindTransport, "failed to encode clone result: %v", err)
	}
	return json.RawMessage(result), nil
}

// CloneGroupRepositories lists every project under a group and clones each
// one, continuing past individual failures. The result is one outcome per
// project, in listing order, rather than an abort on first failure.
func CloneGroupRepositories(ctx context.Context, args map[string]interface{}, creds credentials.Context) (json.RawMessage, error) {
	client := gitlab.NewClient(creds)

	groupID, _ := args["group_id"].(int64)
	raw, err := client.GetPaginated(ctx, fmt.Sprintf("/groups/%d/projects", groupID), nil)
	if err != nil {
		return nil, err
	}
	var projects []projectInfo
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, apperr.New(apperr.KindTransport, "unexpected group projects payload: %v", err)
	}

	basePath, _ := args["base_path"].(string)
	if basePath == "" {
		basePath = "./repos"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, apperr.New(apperr.KindLocalExec, "failed to create base directory %s: %v", basePath, err)
	}

	outcomes := make([]cloneOutcome, 0, len(projects))
	for _, project := range projects {
		localPath := filepath.Join(basePath, project.Name)
		outcome := cloneOutcome{Project: project.PathWithNamespace, LocalPath: localPath}
		if err := cloneOne(ctx, project, localPath, false, creds.Token); err != nil {
			outcome.Error = apperr.From(err).Message
			logging.Warn(subsystem, "clone of %s failed: %v", project.PathWithNamespace, err)
		} else {
			outcome.Cloned = true
		}
		outcomes = append(outcomes, outcome)
	}

	result, err := json.Marshal(outcomes)
	if err != nil {
		return nil, apperr.New(apperr.KindTransport, "failed to encode clone outcomes: %v", err)
	}
	return json.RawMessage(result), nil
}

// cloneOne runs a single bounded git clone after checking the destination
// and the presence of the git binary.
func cloneOne(ctx context.Context, project projectInfo, destination string, useSSH bool, token string) error {
	if err := checkDestination(destination); err != nil {
		return err
	}
	if _, err := execLookPath("git"); err != nil {
		return apperr.New(apperr.KindLocalExec, "git binary not found in PATH")
	}

	cloneURL := project.HTTPURLToRepo
	if useSSH {
		cloneURL = project.SSHURLToRepo
	} else if token != "" {
		cloneURL = strings.Replace(cloneURL, "https://", "https://gitlab-ci-token:"+token+"@", 1)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, cloneTimeout)
	defer cancel()

	logging.Debug(subsystem, "cloning %s into %s", project.PathWithNamespace, destination)
	if err := runGitClone(cloneCtx, cloneURL, destination); err != nil {
		return apperr.New(apperr.KindLocalExec, "git clone failed: %s", redactToken(err.Error(), token))
	}
	return nil
}

// checkDestination rejects a destination that already contains data so a
// clone never silently mixes into an existing tree.
func checkDestination(destination string) error {
	entries, err := os.ReadDir(destination)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperr.New(apperr.KindLocalExec, "cannot inspect destination %s: %v", destination, err)
	}
	if len(entries) > 0 {
		return apperr.New(apperr.KindConflict, "destination %s already contains a non-empty directory", destination)
	}
	return nil
}

// redactToken keeps credentials out of error details; git echoes the full
// remote URL on failure.
func redactToken(message, token string) string {
	if token == "" {
		return message
	}
	return strings.ReplaceAll(message, token, "[REDACTED]")
}
