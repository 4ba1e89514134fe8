package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/skillsync/skillsync/pkg/domain/model"
)

// VerificationThreshold is the fixed confidence score at or above which
// a skill claim is surfaced as verified.
const VerificationThreshold = 30

// tipThreshold is the score below which improvement tips are generated
const tipThreshold = 80

// ScoredSkill pairs an evidence bundle with its confidence score
type ScoredSkill struct {
	Evidence *model.SkillEvidence
	Score    int
}

// Score computes the 0-100 confidence score for an evidence bundle.
// Pure and deterministic for a fixed "now"; the additive total is
// clamped, never normalized.
func Score(ev *model.SkillEvidence, now time.Time) int {
	score := 0

	// Base presence
	if ev.RepoCount >= 1 {
		score += 10
	}

	// Corroborating repos beyond the first, capped at 40
	if ev.RepoCount > 1 {
		score += min(8*(ev.RepoCount-1), 40)
	}

	// Commit volume, 5 points per 50 commits, capped at 25
	score += min(5*(ev.TotalCommits/50), 25)

	// Stars bucket, highest applicable only
	switch {
	case ev.TotalStars >= 200:
		score += 15
	case ev.TotalStars >= 50:
		score += 10
	case ev.TotalStars >= 10:
		score += 5
	}

	if ev.HasProductionProject {
		score += 10
	}
	if ev.MentionedInReadme {
		score += 3
	}
	if ev.HasTests {
		score += 5
	}

	if months, ok := monthsSince(ev.LastUsed, now); ok {
		switch {
		case months <= 3:
			score += 5
		case months <= 12:
			score += 2
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Verified reports whether a score meets the verification threshold
func Verified(score int) bool {
	return score >= VerificationThreshold
}

// Label builds the display string embedding the evidence, e.g.
// "React — verified via 2 repo(s), 120+ commits, production project with
// 80 stars, last used 2026-07 (55/100)". When no clauses apply the dash
// and clause list are omitted entirely.
func Label(ev *model.SkillEvidence, score int) string {
	var clauses []string

	if ev.RepoCount > 0 {
		clauses = append(clauses, fmt.Sprintf("%d repo(s)", ev.RepoCount))
	}
	if ev.TotalCommits > 0 {
		clauses = append(clauses, fmt.Sprintf("%d+ commits", roundCommits(ev.TotalCommits)))
	}
	if ev.HasProductionProject {
		if ev.TotalStars > 0 {
			clauses = append(clauses, fmt.Sprintf("production project with %d stars", ev.TotalStars))
		} else {
			clauses = append(clauses, "production project")
		}
	}
	if ev.LastUsed != "" {
		clauses = append(clauses, "last used "+ev.LastUsed)
	}

	if len(clauses) == 0 {
		return fmt.Sprintf("%s (%d/100)", ev.Skill, score)
	}
	return fmt.Sprintf("%s — verified via %s (%d/100)", ev.Skill, strings.Join(clauses, ", "), score)
}

// ImprovementTips emits actionable suggestions for skills scoring below
// the tip threshold, in a fixed order. Each tip is independent.
func ImprovementTips(ev *model.SkillEvidence, score int) []string {
	if score >= tipThreshold {
		return nil
	}

	var tips []string
	if !ev.HasProductionProject {
		tips = append(tips, fmt.Sprintf("Deploy a %s project and add a live demo link to its README", ev.Skill))
	}
	if ev.TotalCommits < 50 {
		tips = append(tips, fmt.Sprintf("Increase commit activity on your %s repositories", ev.Skill))
	}
	if ev.TotalStars < 10 && ev.RepoCount < 3 {
		tips = append(tips, fmt.Sprintf("Add more projects that use %s", ev.Skill))
	}
	if ev.Strongest.Name != "" && !ev.Strongest.HasReadme {
		tips = append(tips, fmt.Sprintf("Add a README to %s", ev.Strongest.Name))
	}
	return tips
}

// roundCommits rounds down to the nearest 10 under 1000, nearest 100 at
// or above 1000
func roundCommits(n int) int {
	if n >= 1000 {
		return n / 100 * 100
	}
	return n / 10 * 10
}

// monthsSince parses a YYYY-MM month and returns the number of whole
// calendar months between it and now
func monthsSince(month string, now time.Time) (int, bool) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, false
	}
	return (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month()), true
}
