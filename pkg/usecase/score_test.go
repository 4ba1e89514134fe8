package usecase_test

import (
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/usecase"
)

var scoreNow = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		ev   model.SkillEvidence
		want int
	}{
		{
			name: "single repo baseline",
			ev:   model.SkillEvidence{RepoCount: 1},
			want: 10,
		},
		{
			name: "repo bonus capped at 40",
			ev:   model.SkillEvidence{RepoCount: 10},
			want: 50, // 10 base + min(8*9, 40)
		},
		{
			name: "commit bonus capped at 25",
			ev:   model.SkillEvidence{RepoCount: 1, TotalCommits: 1000},
			want: 35,
		},
		{
			name: "stars use highest bucket only",
			ev:   model.SkillEvidence{RepoCount: 1, TotalStars: 250},
			want: 25,
		},
		{
			name: "strong evidence across all axes",
			ev: model.SkillEvidence{
				RepoCount:            2,
				TotalCommits:         120,
				TotalStars:           80,
				HasProductionProject: true,
				MentionedInReadme:    true,
				HasTests:             true,
				LastUsed:             "2026-07",
			},
			// 10 + 8 + 10 + 10 + 10 + 3 + 5 + 5
			want: 61,
		},
		{
			name: "stale usage earns no recency points",
			ev:   model.SkillEvidence{RepoCount: 1, LastUsed: "2024-01"},
			want: 10,
		},
		{
			name: "usage within a year earns two points",
			ev:   model.SkillEvidence{RepoCount: 1, LastUsed: "2025-12"},
			want: 12,
		},
		{
			name: "everything maxed clamps at 100",
			ev: model.SkillEvidence{
				RepoCount:            20,
				TotalCommits:         5000,
				TotalStars:           1000,
				HasProductionProject: true,
				MentionedInReadme:    true,
				HasTests:             true,
				LastUsed:             "2026-08",
			},
			want: 100,
		},
		{
			name: "no evidence",
			ev:   model.SkillEvidence{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.Score(&tt.ev, scoreNow)
			if got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}

			// Deterministic for a fixed clock
			if again := usecase.Score(&tt.ev, scoreNow); again != got {
				t.Errorf("Score() not deterministic: %d then %d", got, again)
			}
		})
	}
}

func TestVerified(t *testing.T) {
	ev := &model.SkillEvidence{
		RepoCount:    1, // 10
		TotalCommits: 100, // +10
		HasTests:     true, // +5
		TotalStars:   10, // +5
	}
	score := usecase.Score(ev, scoreNow)
	gt.Equal(t, score, 30)
	gt.True(t, usecase.Verified(score))

	ev.TotalStars = 9
	score = usecase.Score(ev, scoreNow)
	gt.Equal(t, score, 25)
	gt.False(t, usecase.Verified(score))
}

func TestLabel(t *testing.T) {
	ev := &model.SkillEvidence{
		Skill:                "React",
		RepoCount:            2,
		TotalCommits:         123,
		TotalStars:           80,
		HasProductionProject: true,
		LastUsed:             "2026-07",
	}

	label := usecase.Label(ev, 55)
	gt.Equal(t, label, "React — verified via 2 repo(s), 120+ commits, production project with 80 stars, last used 2026-07 (55/100)")

	t.Run("no clauses omits the via section", func(t *testing.T) {
		empty := &model.SkillEvidence{Skill: "Go"}
		gt.Equal(t, usecase.Label(empty, 0), "Go (0/100)")
	})

	t.Run("commit rounding switches to hundreds above 1000", func(t *testing.T) {
		big := &model.SkillEvidence{Skill: "Go", TotalCommits: 1234}
		label := usecase.Label(big, 20)
		if !strings.Contains(label, "1200+ commits") {
			t.Errorf("Label() = %q, want 1200+ commits clause", label)
		}
	})

	t.Run("production project without stars", func(t *testing.T) {
		ev := &model.SkillEvidence{Skill: "Go", HasProductionProject: true}
		label := usecase.Label(ev, 20)
		if !strings.Contains(label, "production project (") && !strings.Contains(label, "production project,") {
			t.Errorf("Label() = %q, want bare production project clause", label)
		}
	})
}

func TestImprovementTips(t *testing.T) {
	t.Run("high score yields no tips", func(t *testing.T) {
		ev := &model.SkillEvidence{Skill: "Go"}
		gt.Equal(t, len(usecase.ImprovementTips(ev, 85)), 0)
	})

	t.Run("weak evidence yields independent tips in order", func(t *testing.T) {
		ev := &model.SkillEvidence{
			Skill:        "Go",
			RepoCount:    1,
			TotalCommits: 10,
			TotalStars:   2,
			Strongest:    model.StrongestRepo{Name: "alice/tool", HasReadme: false},
		}
		tips := usecase.ImprovementTips(ev, 15)
		gt.Equal(t, len(tips), 4)
		if !strings.Contains(tips[0], "Deploy") {
			t.Errorf("tips[0] = %q, want deployment tip first", tips[0])
		}
		if !strings.Contains(tips[3], "alice/tool") {
			t.Errorf("tips[3] = %q, want README tip naming the repo", tips[3])
		}
	})

	t.Run("satisfied axes produce no tip", func(t *testing.T) {
		ev := &model.SkillEvidence{
			Skill:                "Go",
			RepoCount:            5,
			TotalCommits:         500,
			TotalStars:           100,
			HasProductionProject: true,
			Strongest:            model.StrongestRepo{Name: "alice/tool", HasReadme: true},
		}
		gt.Equal(t, len(usecase.ImprovementTips(ev, 70)), 0)
	})
}
