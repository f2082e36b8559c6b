package tools

import (
	"net/http"

	"gitlabmcp/internal/gitclone"
	"gitlabmcp/internal/registry"
)

// Schema field shorthands. The catalog below is long enough that the
// long-form struct literals would drown the actual operation definitions.

func reqInt(name, description string) registry.Field {
	return registry.Field{Name: name, Type: registry.FieldInteger, Required: true, Description: description}
}

func reqStr(name, description string) registry.Field {
	return registry.Field{Name: name, Type: registry.FieldString, Required: true, Description: description}
}

func optStr(name, description string) registry.Field {
	return registry.Field{Name: name, Type: registry.FieldString, Description: description}
}

func defStr(name, description, def string) registry.Field {
	return registry.Field{Name: name, Type: registry.FieldString, Description: description, Default: def}
}

func optBool(name, description string) registry.Field {
	return registry.Field{Name: name, Type: registry.FieldBoolean, Description: description}
}

func enumStr(name, description, def string, values ...string) registry.Field {
	return registry.Field{Name: name, Type: registry.FieldString, Description: description, Default: def, Enum: values}
}

func optEnum(name, description string, values ...string) registry.Field {
	return registry.Field{Name: name, Type: registry.FieldString, Description: description, Enum: values}
}

type catalogEntry struct {
	descriptor registry.Descriptor
	options    forwardOptions
	handler    registry.Handler // Overrides the generic forwarder when set
}

// catalog returns every operation the gateway exposes, in a stable order.
func catalog() []catalogEntry {
	return []catalogEntry{
		// Projects
		{
			descriptor: registry.Descriptor{
				Name:        "create_project",
				Description: "Create a new GitLab project",
				Method:      http.MethodPost,
				Path:        "/projects",
				Args: []registry.Field{
					reqStr("name", "Project name"),
					defStr("description", "Project description", ""),
					enumStr("visibility", "Project visibility", "private", "private", "internal", "public"),
				},
			},
			options: forwardOptions{extras: map[string]interface{}{"initialize_with_readme": true}},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "delete_project",
				Description: "Delete a GitLab project",
				Method:      http.MethodDelete,
				Path:        "/projects/{project_id}",
				Args:        []registry.Field{reqInt("project_id", "GitLab project ID")},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "update_project",
				Description: "Update project settings",
				Method:      http.MethodPut,
				Path:        "/projects/{project_id}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					optStr("name", "New project name"),
					optStr("description", "New description"),
					optEnum("visibility", "New visibility", "private", "internal", "public"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "fork_project",
				Description: "Fork a project",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/fork",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID to fork"),
					optStr("namespace", "Target namespace"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "archive_project",
				Description: "Archive a project",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/archive",
				Args:        []registry.Field{reqInt("project_id", "GitLab project ID")},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "unarchive_project",
				Description: "Unarchive a project",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/unarchive",
				Args:        []registry.Field{reqInt("project_id", "GitLab project ID")},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "get_project",
				Description: "Get metadata for a single project",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}",
				Args:        []registry.Field{reqInt("project_id", "GitLab project ID")},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "list_projects",
				Description: "List GitLab projects the caller is a member of",
				Method:      http.MethodGet,
				Path:        "/projects",
				Paginated:   true,
				Args:        []registry.Field{optBool("owned", "Only show owned projects")},
			},
			handler: listProjects,
		},
		{
			descriptor: registry.Descriptor{
				Name:        "search_projects",
				Description: "Search for projects by name",
				Method:      http.MethodGet,
				Path:        "/projects",
				Paginated:   true,
				Args:        []registry.Field{reqStr("query", "Search query")},
			},
			options: forwardOptions{rename: map[string]string{"query": "search"}},
		},

		// Issues
		{
			descriptor: registry.Descriptor{
				Name:        "get_project_issues",
				Description: "Get issues for a GitLab project",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/issues",
				Paginated:   true,
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					enumStr("state", "Issue state", "opened", "opened", "closed", "all"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "create_issue",
				Description: "Create a new issue in a GitLab project",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/issues",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("title", "Issue title"),
					defStr("description", "Issue description", ""),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "update_issue",
				Description: "Update an issue",
				Method:      http.MethodPut,
				Path:        "/projects/{project_id}/issues/{issue_iid}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqInt("issue_iid", "Issue IID"),
					optStr("title", "New title"),
					optStr("description", "New description"),
					optEnum("state_event", "State change", "close", "reopen"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "close_issue",
				Description: "Close an issue",
				Method:      http.MethodPut,
				Path:        "/projects/{project_id}/issues/{issue_iid}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqInt("issue_iid", "Issue IID"),
				},
			},
			options: forwardOptions{extras: map[string]interface{}{"state_event": "close"}},
		},

		// Merge requests
		{
			descriptor: registry.Descriptor{
				Name:        "get_merge_requests",
				Description: "Get merge requests for a GitLab project",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/merge_requests",
				Paginated:   true,
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					enumStr("state", "Merge request state", "opened", "opened", "closed", "merged", "all"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "create_merge_request",
				Description: "Create a merge request",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/merge_requests",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("source_branch", "Source branch"),
					reqStr("target_branch", "Target branch"),
					reqStr("title", "Merge request title"),
					defStr("description", "Merge request description", ""),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "merge_merge_request",
				Description: "Merge a merge request",
				Method:      http.MethodPut,
				Path:        "/projects/{project_id}/merge_requests/{merge_request_iid}/merge",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqInt("merge_request_iid", "Merge request IID"),
					optStr("merge_commit_message", "Custom merge commit message"),
				},
			},
		},

		// Branches
		{
			descriptor: registry.Descriptor{
				Name:        "get_project_branches",
				Description: "Get branches for a GitLab project",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/repository/branches",
				Paginated:   true,
				Args:        []registry.Field{reqInt("project_id", "GitLab project ID")},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "create_branch",
				Description: "Create a new branch",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/repository/branches",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("branch_name", "New branch name"),
					defStr("ref", "Source branch or commit", "main"),
				},
			},
			options: forwardOptions{rename: map[string]string{"branch_name": "branch"}},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "delete_branch",
				Description: "Delete a branch",
				Method:      http.MethodDelete,
				Path:        "/projects/{project_id}/repository/branches/{branch_name}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("branch_name", "Branch name to delete"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "compare_branches",
				Description: "Compare two branches",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/repository/compare",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("from_branch", "Source branch"),
					reqStr("to_branch", "Target branch"),
				},
			},
			options: forwardOptions{rename: map[string]string{"from_branch": "from", "to_branch": "to"}},
		},

		// Commits
		{
			descriptor: registry.Descriptor{
				Name:        "get_commits",
				Description: "Get recent commits for a project",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/repository/commits",
				Paginated:   true,
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					defStr("ref_name", "Branch name", "main"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "create_commit",
				Description: "Create a commit with a single file change",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/repository/commits",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("branch", "Target branch"),
					reqStr("commit_message", "Commit message"),
					reqStr("file_path", "Path to the file"),
					defStr("file_content", "File content", ""),
					enumStr("action", "File action", "create", "create", "update", "delete"),
				},
			},
			handler: commitActions,
		},
		{
			descriptor: registry.Descriptor{
				Name:        "revert_commit",
				Description: "Revert a commit",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/repository/commits/{commit_sha}/revert",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("commit_sha", "Commit SHA to revert"),
					reqStr("branch", "Target branch for the revert"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "cherry_pick_commit",
				Description: "Cherry-pick a commit",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/repository/commits/{commit_sha}/cherry_pick",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("commit_sha", "Commit SHA to cherry-pick"),
					reqStr("branch", "Target branch for the cherry-pick"),
				},
			},
		},

		// Repository files
		{
			descriptor: registry.Descriptor{
				Name:        "get_repository_files",
				Description: "List repository files and directories",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/repository/tree",
				Paginated:   true,
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					defStr("path", "Directory path", ""),
					defStr("ref", "Branch or tag reference", "main"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "get_file_content",
				Description: "Get decoded content of a repository file",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/repository/files/{file_path}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("file_path", "Path to the file"),
					defStr("ref", "Branch or tag reference", "main"),
				},
			},
			handler: fileContent,
		},
		{
			descriptor: registry.Descriptor{
				Name:        "create_file",
				Description: "Create a new file in the repository",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/repository/files/{file_path}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("file_path", "Path for the new file"),
					reqStr("content", "File content"),
					reqStr("branch", "Target branch"),
					reqStr("commit_message", "Commit message"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "update_file",
				Description: "Update an existing file in the repository",
				Method:      http.MethodPut,
				Path:        "/projects/{project_id}/repository/files/{file_path}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("file_path", "Path to the file"),
					reqStr("content", "New file content"),
					reqStr("branch", "Target branch"),
					reqStr("commit_message", "Commit message"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "delete_file",
				Description: "Delete a file from the repository",
				Method:      http.MethodDelete,
				Path:        "/projects/{project_id}/repository/files/{file_path}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("file_path", "Path to the file"),
					reqStr("branch", "Target branch"),
					reqStr("commit_message", "Commit message"),
				},
			},
		},

		// Tags
		{
			descriptor: registry.Descriptor{
				Name:        "get_repository_tags",
				Description: "Get repository tags",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/repository/tags",
				Paginated:   true,
				Args:        []registry.Field{reqInt("project_id", "GitLab project ID")},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "create_tag",
				Description: "Create a new tag",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/repository/tags",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("tag_name", "Tag name"),
					reqStr("ref", "Source branch or commit"),
					defStr("message", "Tag message", ""),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "delete_tag",
				Description: "Delete a tag",
				Method:      http.MethodDelete,
				Path:        "/projects/{project_id}/repository/tags/{tag_name}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqStr("tag_name", "Tag name to delete"),
				},
			},
		},

		// Pipelines
		{
			descriptor: registry.Descriptor{
				Name:        "get_pipelines",
				Description: "Get CI/CD pipelines for a GitLab project",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/pipelines",
				Paginated:   true,
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					enumStr("status", "Pipeline status", "running",
						"running", "pending", "success", "failed", "canceled", "skipped"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "get_pipeline_jobs",
				Description: "Get jobs for a specific pipeline",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/pipelines/{pipeline_id}/jobs",
				Paginated:   true,
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqInt("pipeline_id", "Pipeline ID"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "trigger_pipeline",
				Description: "Trigger a new pipeline",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/pipeline",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					defStr("ref", "Branch or tag to run the pipeline on", "main"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "retry_pipeline",
				Description: "Retry the failed jobs of a pipeline",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/pipelines/{pipeline_id}/retry",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqInt("pipeline_id", "Pipeline ID"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "cancel_pipeline",
				Description: "Cancel a running pipeline",
				Method:      http.MethodPost,
				Path:        "/projects/{project_id}/pipelines/{pipeline_id}/cancel",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					reqInt("pipeline_id", "Pipeline ID"),
				},
			},
		},

		// Groups
		{
			descriptor: registry.Descriptor{
				Name:        "list_groups",
				Description: "List GitLab groups",
				Method:      http.MethodGet,
				Path:        "/groups",
				Paginated:   true,
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "get_group_members",
				Description: "Get members of a GitLab group",
				Method:      http.MethodGet,
				Path:        "/groups/{group_id}/members",
				Paginated:   true,
				Args:        []registry.Field{reqInt("group_id", "GitLab group ID")},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "list_group_projects",
				Description: "List all projects under a group",
				Method:      http.MethodGet,
				Path:        "/groups/{group_id}/projects",
				Paginated:   true,
				Args:        []registry.Field{reqInt("group_id", "GitLab group ID")},
			},
		},

		// Users
		{
			descriptor: registry.Descriptor{
				Name:        "get_current_user",
				Description: "Get current user information",
				Method:      http.MethodGet,
				Path:        "/user",
			},
		},

		// Milestones, labels, webhooks
		{
			descriptor: registry.Descriptor{
				Name:        "get_project_milestones",
				Description: "Get project milestones",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/milestones",
				Paginated:   true,
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					enumStr("state", "Milestone state", "active", "active", "closed", "all"),
				},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "get_project_labels",
				Description: "Get project labels",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/labels",
				Paginated:   true,
				Args:        []registry.Field{reqInt("project_id", "GitLab project ID")},
			},
		},
		{
			descriptor: registry.Descriptor{
				Name:        "list_project_hooks",
				Description: "List project webhooks",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}/hooks",
				Paginated:   true,
				Args:        []registry.Field{reqInt("project_id", "GitLab project ID")},
			},
		},

		// Clone operations (local side-effecting)
		{
			descriptor: registry.Descriptor{
				Name:        "clone_repository",
				Description: "Clone a GitLab repository to a local path",
				Method:      http.MethodGet,
				Path:        "/projects/{project_id}",
				Args: []registry.Field{
					reqInt("project_id", "GitLab project ID"),
					optStr("local_path", "Local directory path (defaults to the project name)"),
					optBool("use_ssh", "Use the SSH URL instead of HTTPS"),
				},
			},
			handler: gitclone.CloneRepository,
		},
		{
			descriptor: registry.Descriptor{
				Name:        "clone_group_repositories",
				Description: "Clone all repositories from a GitLab group",
				Method:      http.MethodGet,
				Path:        "/groups/{group_id}/projects",
				Paginated:   true,
				Args: []registry.Field{
					reqInt("group_id", "GitLab group ID"),
					defStr("base_path", "Base directory for cloned repositories", "./repos"),
				},
			},
			handler: gitclone.CloneGroupRepositories,
		},
	}
}

// RegisterAll builds the full catalog into a registry. A duplicate name in
// the catalog is a startup-time configuration error.
func RegisterAll(r *registry.Registry) error {
	for _, entry := range catalog() {
		handler := entry.handler
		if handler == nil {
			handler = forward(entry.descriptor, entry.options)
		}
		if err := r.Register(entry.descriptor, handler); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry builds and populates the process-wide registry. It is the
// startup entry point the transports share.
func NewRegistry() (*registry.Registry, error) {
	r := registry.New()
	if err := RegisterAll(r); err != nil {
		return nil, err
	}
	return r, nil
}
