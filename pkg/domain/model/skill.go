package model

import "time"

// StrongestRepo summarizes the single repository that contributes the
// most weight (stars + user commits) to a skill.
type StrongestRepo struct {
	Name        string `firestore:"name" json:"name"`
	Stars       int    `firestore:"stars" json:"stars"`
	Commits     int    `firestore:"commits" json:"commits"`
	HasReadme   bool   `firestore:"has_readme" json:"has_readme"`
	HasLiveDemo bool   `firestore:"has_live_demo" json:"has_live_demo"`
	Description string `firestore:"description" json:"description"`
}

// SkillEvidence is the aggregated, per-skill evidence bundle derived
// from one or more repositories. One record per user x skill, recomputed
// wholesale and upserted on every pipeline run.
type SkillEvidence struct {
	UserID string `firestore:"user_id" json:"user_id"`
	Skill  string `firestore:"skill" json:"skill"`

	RepoCount            int  `firestore:"repo_count" json:"repo_count"`
	TotalCommits         int  `firestore:"total_commits" json:"total_commits"`
	TotalStars           int  `firestore:"total_stars" json:"total_stars"`
	HasProductionProject bool `firestore:"has_production_project" json:"has_production_project"`
	LanguagePercent      int  `firestore:"language_percent" json:"language_percent"`
	MentionedInReadme    bool `firestore:"mentioned_in_readme" json:"mentioned_in_readme"`
	HasTests             bool `firestore:"has_tests" json:"has_tests"`

	// LastUsed is the newest backing repository's push date, YYYY-MM
	LastUsed string `firestore:"last_used" json:"last_used"`

	Strongest StrongestRepo `firestore:"strongest" json:"strongest"`

	// ReadmeSHA keys the cached narrative; Narrative is the model
	// generated one-sentence summary, empty when enrichment failed
	ReadmeSHA string `firestore:"readme_sha" json:"readme_sha"`
	Narrative string `firestore:"narrative" json:"narrative"`

	UpdatedAt time.Time `firestore:"updated_at" json:"updated_at"`
}

// VerifiedSkillClaim is the externally visible artifact: one claim per
// user x skill, created on first detection and updated on every re-run.
// Claims are never hard-deleted while the skill remains detected.
type VerifiedSkillClaim struct {
	UserID     string    `firestore:"user_id" json:"user_id"`
	Skill      string    `firestore:"skill" json:"skill"`
	Verified   bool      `firestore:"verified" json:"verified"`
	Confidence int       `firestore:"confidence" json:"confidence"`
	Label      string    `firestore:"label" json:"label"`
	Source     string    `firestore:"source" json:"source"`
	Tips       []string  `firestore:"tips,omitempty" json:"tips,omitempty"`
	VerifiedAt time.Time `firestore:"verified_at" json:"verified_at"`
	UpdatedAt  time.Time `firestore:"updated_at" json:"updated_at"`
}

// ClaimSourceGitHub tags claims produced by the GitHub pipeline
const ClaimSourceGitHub = "github"
