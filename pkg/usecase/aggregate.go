package usecase

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/skillsync/skillsync/pkg/domain/model"
)

// skillAccumulator collects per-skill facts while iterating repositories
type skillAccumulator struct {
	evidence      *model.SkillEvidence
	languageBytes int
	lastPush      time.Time
	strongest     *model.RepoFacts
	strongestRank int
}

// AggregateSkills groups per-repository facts into per-skill evidence
// bundles. A skill is a language key from the byte-count map or a
// detected framework; a repository contributes to every skill it
// exhibits. Output order is first-seen, so results are deterministic.
func AggregateSkills(userID string, facts []*model.RepoFacts) []*model.SkillEvidence {
	totalBytes := 0
	for _, f := range facts {
		for _, b := range f.Languages {
			totalBytes += b
		}
	}

	accums := map[string]*skillAccumulator{}
	var order []string

	for _, f := range facts {
		langs := make([]string, 0, len(f.Languages))
		for lang := range f.Languages {
			langs = append(langs, lang)
		}
		sort.Strings(langs)

		for _, lang := range langs {
			acc := contribute(accums, &order, userID, lang, f)
			acc.languageBytes += f.Languages[lang]
		}
		for _, fw := range f.Frameworks {
			contribute(accums, &order, userID, fw, f)
		}
	}

	evidences := make([]*model.SkillEvidence, 0, len(order))
	for _, skill := range order {
		acc := accums[skill]
		ev := acc.evidence

		if !acc.lastPush.IsZero() {
			ev.LastUsed = acc.lastPush.Format("2006-01")
		}
		if totalBytes > 0 {
			ev.LanguagePercent = int(math.Round(float64(acc.languageBytes) / float64(totalBytes) * 100))
		}
		if acc.strongest != nil {
			ev.Strongest = model.StrongestRepo{
				Name:        acc.strongest.FullName(),
				Stars:       acc.strongest.Stars,
				Commits:     acc.strongest.UserCommits,
				HasReadme:   acc.strongest.HasReadme,
				HasLiveDemo: acc.strongest.LiveDemoURL != "",
				Description: acc.strongest.Description,
			}
			ev.ReadmeSHA = acc.strongest.ReadmeSHA
		}
		evidences = append(evidences, ev)
	}
	return evidences
}

// contribute folds one repository into the accumulator for a skill,
// creating the accumulator on first sight
func contribute(accums map[string]*skillAccumulator, order *[]string, userID, skill string, f *model.RepoFacts) *skillAccumulator {
	acc, ok := accums[skill]
	if !ok {
		acc = &skillAccumulator{
			evidence: &model.SkillEvidence{
				UserID: userID,
				Skill:  skill,
			},
		}
		accums[skill] = acc
		*order = append(*order, skill)
	}

	ev := acc.evidence
	ev.RepoCount++
	ev.TotalCommits += f.UserCommits
	ev.TotalStars += f.Stars
	ev.HasProductionProject = ev.HasProductionProject || f.HasProductionMarker()
	ev.HasTests = ev.HasTests || f.HasTests

	if f.HasReadme && strings.Contains(strings.ToLower(f.Readme), strings.ToLower(skill)) {
		ev.MentionedInReadme = true
	}
	if f.PushedAt.After(acc.lastPush) {
		acc.lastPush = f.PushedAt
	}

	// Strongest repo maximizes stars + user commits; ties keep the
	// first-seen repository
	rank := f.Stars + f.UserCommits
	if acc.strongest == nil || rank > acc.strongestRank {
		acc.strongest = f
		acc.strongestRank = rank
	}
	return acc
}
