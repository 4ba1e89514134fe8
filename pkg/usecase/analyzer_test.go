package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
	"github.com/skillsync/skillsync/pkg/usecase"
)

func TestRepoAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()

	readme := "# webapp\n\n[Live Demo](https://webapp.vercel.app)\n\nBuilt with React."
	hosting := newFakeHosting()
	hosting.addRepo(&model.RepoMeta{
		Owner:         "alice",
		Name:          "webapp",
		Description:   "A dashboard",
		Stars:         42,
		PushedAt:      time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		DefaultBranch: "main",
	})
	hosting.languages["alice/webapp"] = map[string]int{"JavaScript": 5000}
	hosting.trees["alice/webapp"] = &model.RepoTree{
		Paths: []string{
			"README.md",
			"package.json",
			"src/App.jsx",
			"src/App.test.jsx",
			"Dockerfile",
		},
	}
	hosting.files["alice/webapp"] = map[string]string{
		"README.md":    readme,
		"package.json": `{"dependencies":{"react":"^18.0.0","left-pad":"1.0.0"}}`,
	}
	hosting.total["alice/webapp"] = 200
	hosting.byAuthor["alice/webapp@alice"] = 150

	analyzer := usecase.NewRepoAnalyzer(hosting)
	facts, err := analyzer.Analyze(ctx, model.RepoRef{Owner: "alice", Name: "webapp"}, "alice")
	gt.NoError(t, err)

	gt.Equal(t, facts.Owner, "alice")
	gt.Equal(t, facts.Name, "webapp")
	gt.Equal(t, facts.Stars, 42)
	gt.Equal(t, facts.TotalCommits, 200)
	gt.Equal(t, facts.UserCommits, 150)
	gt.Equal(t, facts.Languages, map[string]int{"JavaScript": 5000})
	gt.Equal(t, facts.Frameworks, []string{"React"})
	gt.True(t, facts.HasTests)
	gt.True(t, facts.HasDeployment)
	gt.True(t, facts.HasReadme)
	gt.Equal(t, facts.Readme, readme)
	gt.Equal(t, facts.LiveDemoURL, "https://webapp.vercel.app")

	sum := sha256.Sum256([]byte(readme))
	gt.Equal(t, facts.ReadmeSHA, hex.EncodeToString(sum[:]))
}

func TestRepoAnalyzer_NotFound(t *testing.T) {
	analyzer := usecase.NewRepoAnalyzer(newFakeHosting())

	_, err := analyzer.Analyze(context.Background(), model.RepoRef{Owner: "ghost", Name: "missing"}, "ghost")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrRepoNotFound))
}

func TestRepoAnalyzer_UserCommitsClamped(t *testing.T) {
	hosting := newFakeHosting()
	hosting.addRepo(&model.RepoMeta{Owner: "bob", Name: "repo", DefaultBranch: "main"})
	hosting.total["bob/repo"] = 10
	// Pagination probes can disagree when commits land mid-analysis
	hosting.byAuthor["bob/repo@bob"] = 15

	analyzer := usecase.NewRepoAnalyzer(hosting)
	facts, err := analyzer.Analyze(context.Background(), model.RepoRef{Owner: "bob", Name: "repo"}, "bob")
	gt.NoError(t, err)
	gt.Equal(t, facts.UserCommits, 10)
}

func TestRepoAnalyzer_HomepageFallback(t *testing.T) {
	hosting := newFakeHosting()
	hosting.addRepo(&model.RepoMeta{
		Owner:         "carol",
		Name:          "site",
		Homepage:      "https://example.com",
		DefaultBranch: "main",
	})
	hosting.trees["carol/site"] = &model.RepoTree{
		Paths: []string{"README.md"},
	}
	hosting.files["carol/site"] = map[string]string{
		"README.md": "Just a plain description, no links",
	}

	analyzer := usecase.NewRepoAnalyzer(hosting)
	facts, err := analyzer.Analyze(context.Background(), model.RepoRef{Owner: "carol", Name: "site"}, "")
	gt.NoError(t, err)
	gt.Equal(t, facts.LiveDemoURL, "https://example.com")
}

func TestRepoAnalyzer_PythonRequirements(t *testing.T) {
	hosting := newFakeHosting()
	hosting.addRepo(&model.RepoMeta{Owner: "dan", Name: "mlproj", DefaultBranch: "main"})
	hosting.trees["dan/mlproj"] = &model.RepoTree{
		Paths: []string{"requirements.txt", "train.py", "tests/test_train.py"},
	}
	hosting.files["dan/mlproj"] = map[string]string{
		"requirements.txt": "Django==4.2\nscikit_learn>=1.3\n# comment\ntorch[cuda]\nunknown-pkg==1.0\n",
	}

	analyzer := usecase.NewRepoAnalyzer(hosting)
	facts, err := analyzer.Analyze(context.Background(), model.RepoRef{Owner: "dan", Name: "mlproj"}, "")
	gt.NoError(t, err)
	gt.Equal(t, facts.Frameworks, []string{"Django", "scikit-learn", "PyTorch"})
	gt.True(t, facts.HasTests)
	gt.False(t, facts.HasDeployment)
}

func TestRepoAnalyzer_TruncatedTreeProceeds(t *testing.T) {
	hosting := newFakeHosting()
	hosting.addRepo(&model.RepoMeta{Owner: "eve", Name: "big", DefaultBranch: "main"})
	hosting.trees["eve/big"] = &model.RepoTree{
		Paths:     []string{"main.go", "main_test.go"},
		Truncated: true,
	}

	analyzer := usecase.NewRepoAnalyzer(hosting)
	facts, err := analyzer.Analyze(context.Background(), model.RepoRef{Owner: "eve", Name: "big"}, "")
	gt.NoError(t, err)
	gt.True(t, facts.HasTests)
}
