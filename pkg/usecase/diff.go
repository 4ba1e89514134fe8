package usecase

import "github.com/skillsync/skillsync/pkg/domain/model"

// strengthenMargin filters out small score fluctuations: a prior claim
// must be exceeded by strictly more than this many points to count as
// strengthened.
const strengthenMargin = 3

// DetectChanges diffs a freshly scored skill set against the previously
// persisted claims. A skill with no prior claim is "added"; a skill
// whose new score exceeds the prior by more than the margin is
// "strengthened". Unrelated field changes never produce a delta.
func DetectChanges(prev []*model.VerifiedSkillClaim, scored []ScoredSkill) model.ChangeDelta {
	prior := make(map[string]*model.VerifiedSkillClaim, len(prev))
	for _, c := range prev {
		prior[c.Skill] = c
	}

	var delta model.ChangeDelta
	for _, s := range scored {
		before, ok := prior[s.Evidence.Skill]
		if !ok {
			delta.Added = append(delta.Added, s.Evidence.Skill)
			continue
		}
		if s.Score > before.Confidence+strengthenMargin {
			delta.Strengthened = append(delta.Strengthened, model.SkillChange{
				Skill: s.Evidence.Skill,
				From:  before.Confidence,
				To:    s.Score,
			})
		}
	}
	return delta
}
