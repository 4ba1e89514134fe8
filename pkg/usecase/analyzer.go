package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/domain/interfaces"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"golang.org/x/sync/errgroup"
)

// RepoAnalyzer collects raw facts for one repository: metadata,
// languages, file-tree markers, commit counts, and README content. It
// has no cross-repo or cross-skill logic.
type RepoAnalyzer struct {
	hosting interfaces.HostingClient
}

// NewRepoAnalyzer creates a new RepoAnalyzer
func NewRepoAnalyzer(hosting interfaces.HostingClient) *RepoAnalyzer {
	return &RepoAnalyzer{hosting: hosting}
}

// Analyze fetches and derives all facts for a repository. The metadata
// call is the only fatal one: it returns types.ErrRepoNotFound (wrapped)
// so the caller can skip the repository. Failures of individual
// follow-up calls are absorbed: the affected fact defaults to its zero
// value and the analysis proceeds.
func (a *RepoAnalyzer) Analyze(ctx context.Context, ref model.RepoRef, username string) (*model.RepoFacts, error) {
	logger := ctxlog.From(ctx)

	meta, err := a.hosting.GetRepository(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch repository metadata", goerr.V("repo", ref.FullName()))
	}

	facts := &model.RepoFacts{
		Owner:       meta.Owner,
		Name:        meta.Name,
		Description: meta.Description,
		Stars:       meta.Stars,
		PushedAt:    meta.PushedAt,
	}

	var tree *model.RepoTree

	// Independent outbound calls for one repository run concurrently.
	// Each goroutine absorbs its own failure (log-and-continue).
	eg, gctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		langs, err := a.hosting.ListLanguages(gctx, ref.Owner, ref.Name)
		if err != nil {
			logger.Warn("Failed to fetch languages", "repo", ref.FullName(), "error", err)
			return nil
		}
		facts.Languages = langs
		return nil
	})

	eg.Go(func() error {
		t, err := a.hosting.GetTree(gctx, ref.Owner, ref.Name, meta.DefaultBranch)
		if err != nil {
			logger.Warn("Failed to fetch file tree", "repo", ref.FullName(), "error", err)
			return nil
		}
		if t.Truncated {
			logger.Warn("File tree truncated, proceeding with partial list", "repo", ref.FullName())
		}
		tree = t
		return nil
	})

	eg.Go(func() error {
		total, err := a.hosting.CountCommits(gctx, ref.Owner, ref.Name, "")
		if err != nil {
			logger.Warn("Failed to count commits", "repo", ref.FullName(), "error", err)
			return nil
		}
		facts.TotalCommits = total
		return nil
	})

	if username != "" {
		eg.Go(func() error {
			mine, err := a.hosting.CountCommits(gctx, ref.Owner, ref.Name, username)
			if err != nil {
				logger.Warn("Failed to count user commits", "repo", ref.FullName(), "user", username, "error", err)
				return nil
			}
			facts.UserCommits = mine
			return nil
		})
	}

	_ = eg.Wait()

	// Pagination probes can disagree when commits land mid-analysis
	if facts.UserCommits > facts.TotalCommits {
		facts.UserCommits = facts.TotalCommits
	}

	if tree != nil {
		a.analyzeTree(ctx, ref, tree.Paths, facts)
	}

	if facts.LiveDemoURL == "" && meta.Homepage != "" {
		facts.LiveDemoURL = meta.Homepage
	}

	return facts, nil
}

// analyzeTree derives the file-tree facts: frameworks from manifests
// that are actually present, test and deployment markers, and README
// content with its hash
func (a *RepoAnalyzer) analyzeTree(ctx context.Context, ref model.RepoRef, paths []string, facts *model.RepoFacts) {
	logger := ctxlog.From(ctx)

	facts.HasTests = detectTestMarkers(paths)
	facts.HasDeployment = detectDeploymentMarkers(paths)

	// Manifests are fetched only when the tree proves they exist,
	// avoiding wasted calls
	if p := findManifestPath(paths, "package.json"); p != "" {
		if manifest, err := a.hosting.GetFileContent(ctx, ref.Owner, ref.Name, p); err != nil {
			logger.Warn("Failed to fetch package.json", "repo", ref.FullName(), "error", err)
		} else {
			facts.Frameworks = append(facts.Frameworks, detectJSFrameworks(manifest)...)
		}
	}
	if p := findManifestPath(paths, "requirements.txt"); p != "" {
		if reqs, err := a.hosting.GetFileContent(ctx, ref.Owner, ref.Name, p); err != nil {
			logger.Warn("Failed to fetch requirements.txt", "repo", ref.FullName(), "error", err)
		} else {
			facts.Frameworks = append(facts.Frameworks, detectPythonLibraries(reqs)...)
		}
	}

	if p := findReadmePath(paths); p != "" {
		content, err := a.hosting.GetFileContent(ctx, ref.Owner, ref.Name, p)
		if err != nil {
			logger.Warn("Failed to fetch README", "repo", ref.FullName(), "error", err)
			return
		}
		sum := sha256.Sum256([]byte(content))
		facts.HasReadme = true
		facts.Readme = content
		facts.ReadmeSHA = hex.EncodeToString(sum[:])
		facts.LiveDemoURL = detectLiveDemoURL(content)
	}
}
