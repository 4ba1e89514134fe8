package interfaces

import (
	"context"

	"github.com/skillsync/skillsync/pkg/domain/model"
)

// HostingClient defines the outbound surface to the source hosting API.
// Every call carries a bounded timeout via ctx; implementations attach
// the fixed client identifier and optional bearer credential.
type HostingClient interface {
	// GetRepository fetches repository metadata. A non-success status
	// yields types.ErrRepoNotFound.
	GetRepository(ctx context.Context, owner, name string) (*model.RepoMeta, error)

	// ListLanguages returns the per-language byte counts
	ListLanguages(ctx context.Context, owner, name string) (map[string]int, error)

	// GetTree fetches the full file tree in one recursive call. A
	// truncated tree is returned as-is, not treated as an error.
	GetTree(ctx context.Context, owner, name, ref string) (*model.RepoTree, error)

	// GetFileContent returns the decoded content of a file
	GetFileContent(ctx context.Context, owner, name, path string) (string, error)

	// CountCommits returns the total commit count, filtered to author
	// when non-empty, using pagination metadata rather than paging
	// through all commits.
	CountCommits(ctx context.Context, owner, name, author string) (int, error)

	// ListUserRepos lists the repositories owned by a hosting user
	ListUserRepos(ctx context.Context, username string) ([]model.RepoRef, error)

	// CreateHook registers a repository webhook. Returns
	// types.ErrHookExists when an identical hook is already present.
	CreateHook(ctx context.Context, owner, name, url, secret string, events []string) (int64, error)

	// ListHooks lists webhooks registered on a repository
	ListHooks(ctx context.Context, owner, name string) ([]model.HookInfo, error)

	// DeleteHook removes a repository webhook
	DeleteHook(ctx context.Context, owner, name string, hookID int64) error
}
