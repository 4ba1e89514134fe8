package model

import "time"

// RepoRef identifies a repository on the hosting provider
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepoMeta is the repository metadata record from the hosting API
type RepoMeta struct {
	Owner         string
	Name          string
	Description   string
	Stars         int
	PushedAt      time.Time
	Homepage      string
	DefaultBranch string
}

// RepoTree is the recursive file tree of a repository. Truncated is set
// when the hosting API could not return the full tree; analysis proceeds
// with the partial list.
type RepoTree struct {
	Paths     []string
	Truncated bool
}

// HookInfo describes a webhook registered on a repository
type HookInfo struct {
	ID     int64
	URL    string
	Events []string
	Active bool
}

// RepoFacts holds the raw facts RepoAnalyzer collects for one repository.
// It is produced fresh on every pipeline run, never mutated after
// construction, and discarded once aggregation completes.
type RepoFacts struct {
	Owner        string
	Name         string
	Description  string
	Stars        int
	PushedAt     time.Time
	TotalCommits int
	UserCommits  int // commits attributable to the tracked user, always <= TotalCommits

	Languages  map[string]int // language name -> byte count
	Frameworks []string

	HasReadme bool
	Readme    string
	ReadmeSHA string // SHA-256 of the README content, key for the narrative cache

	HasTests      bool
	HasDeployment bool
	LiveDemoURL   string
}

func (f *RepoFacts) FullName() string {
	return f.Owner + "/" + f.Name
}

// HasProductionMarker reports whether the repository shows any sign of
// being deployed: a deployment file or a live demo URL.
func (f *RepoFacts) HasProductionMarker() bool {
	return f.HasDeployment || f.LiveDemoURL != ""
}
