package github

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/domain/interfaces"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
	"golang.org/x/oauth2"
)

// callTimeout bounds every individual outbound call
const callTimeout = 15 * time.Second

type client struct {
	gh *github.Client
}

// Option is a functional option for the GitHub client
type Option func(*config)

type config struct {
	httpClient *http.Client
	baseURL    string
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at a non-default API endpoint, used by
// tests and GitHub Enterprise installs
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// NewClient creates a HostingClient backed by the GitHub REST API. The
// token is optional; unauthenticated clients work with a lower rate
// limit.
func NewClient(token string, opts ...Option) (interfaces.HostingClient, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	hc := cfg.httpClient
	if hc == nil && token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	}

	gh := github.NewClient(hc)
	gh.UserAgent = types.ServiceName + "/" + types.Version

	if cfg.baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(cfg.baseURL, cfg.baseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub API base URL", goerr.V("url", cfg.baseURL))
		}
	}

	return &client{gh: gh}, nil
}

// GetRepository fetches repository metadata. Any non-success status is
// reported as types.ErrRepoNotFound so callers can skip the repository.
func (c *client) GetRepository(ctx context.Context, owner, name string) (*model.RepoMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, goerr.Wrap(types.ErrRepoNotFound, "repository metadata fetch failed",
				goerr.V("owner", owner), goerr.V("repo", name))
		}
		return nil, goerr.Wrap(err, "failed to fetch repository",
			goerr.V("owner", owner), goerr.V("repo", name))
	}

	return &model.RepoMeta{
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		Description:   repo.GetDescription(),
		Stars:         repo.GetStargazersCount(),
		PushedAt:      repo.GetPushedAt().Time,
		Homepage:      repo.GetHomepage(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

func (c *client) ListLanguages(ctx context.Context, owner, name string) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	langs, _, err := c.gh.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list languages",
			goerr.V("owner", owner), goerr.V("repo", name))
	}
	return langs, nil
}

// GetTree fetches the full tree in one recursive call. Truncation is
// reported, not treated as an error.
func (c *client) GetTree(ctx context.Context, owner, name, ref string) (*model.RepoTree, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	tree, _, err := c.gh.Git.GetTree(ctx, owner, name, ref, true)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch repository tree",
			goerr.V("owner", owner), goerr.V("repo", name), goerr.V("ref", ref))
	}

	paths := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			paths = append(paths, entry.GetPath())
		}
	}
	return &model.RepoTree{
		Paths:     paths,
		Truncated: tree.GetTruncated(),
	}, nil
}

func (c *client) GetFileContent(ctx context.Context, owner, name, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch file content",
			goerr.V("owner", owner), goerr.V("repo", name), goerr.V("path", path))
	}
	if file == nil {
		return "", goerr.New("path is not a file",
			goerr.V("owner", owner), goerr.V("repo", name), goerr.V("path", path))
	}

	content, err := file.GetContent()
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode file content", goerr.V("path", path))
	}
	return content, nil
}

// CountCommits requests a single commit page and reads the last-page
// number from the pagination metadata, avoiding a walk over the full
// history. An empty repository counts as zero.
func (c *client) CountCommits(ctx context.Context, owner, name, author string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	}
	if author != "" {
		opts.Author = author
	}

	commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		// 409 is GitHub's "Git Repository is empty"
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return 0, nil
		}
		return 0, goerr.Wrap(err, "failed to count commits",
			goerr.V("owner", owner), goerr.V("repo", name), goerr.V("author", author))
	}

	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(commits), nil
}

func (c *client) ListUserRepos(ctx context.Context, username string) ([]model.RepoRef, error) {
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "pushed",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var refs []model.RepoRef
	for {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		repos, resp, err := c.gh.Repositories.ListByUser(callCtx, username, opts)
		cancel()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list user repositories", goerr.V("username", username))
		}

		for _, r := range repos {
			refs = append(refs, model.RepoRef{
				Owner: r.GetOwner().GetLogin(),
				Name:  r.GetName(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return refs, nil
}

func (c *client) CreateHook(ctx context.Context, owner, name, url, secret string, events []string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	hook := &github.Hook{
		Active: github.Ptr(true),
		Events: events,
		Config: &github.HookConfig{
			URL:         github.Ptr(url),
			ContentType: github.Ptr("json"),
			Secret:      github.Ptr(secret),
			InsecureSSL: github.Ptr("0"),
		},
	}

	created, resp, err := c.gh.Repositories.CreateHook(ctx, owner, name, hook)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity &&
			strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return 0, goerr.Wrap(types.ErrHookExists, "hook registration rejected",
				goerr.V("owner", owner), goerr.V("repo", name))
		}
		return 0, goerr.Wrap(err, "failed to create webhook",
			goerr.V("owner", owner), goerr.V("repo", name))
	}
	return created.GetID(), nil
}

func (c *client) ListHooks(ctx context.Context, owner, name string) ([]model.HookInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	hooks, _, err := c.gh.Repositories.ListHooks(ctx, owner, name, &github.ListOptions{PerPage: 100})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list webhooks",
			goerr.V("owner", owner), goerr.V("repo", name))
	}

	infos := make([]model.HookInfo, 0, len(hooks))
	for _, h := range hooks {
		infos = append(infos, model.HookInfo{
			ID:     h.GetID(),
			URL:    h.GetConfig().GetURL(),
			Events: h.Events,
			Active: h.GetActive(),
		})
	}
	return infos, nil
}

// DeleteHook removes a webhook. A hook that is already gone is success.
func (c *client) DeleteHook(ctx context.Context, owner, name string, hookID int64) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := c.gh.Repositories.DeleteHook(ctx, owner, name, hookID)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to delete webhook",
			goerr.V("owner", owner), goerr.V("repo", name), goerr.V("hook_id", hookID))
	}
	return nil
}
