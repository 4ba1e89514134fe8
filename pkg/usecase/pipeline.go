package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/skillsync/skillsync/pkg/domain/interfaces"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

const (
	// analyzeConcurrency bounds concurrent per-repo analysis
	analyzeConcurrency = 4

	// analyzeBatchSize and analyzeCooldown implement the deliberate
	// throttle against the hosting API rate limit: a short pause
	// after every batch of repositories
	analyzeBatchSize = 20
	analyzeCooldown  = 2 * time.Second
)

// PipelineRunner orchestrates one user's verification run:
// fetch -> aggregate -> score -> enrich -> diff -> persist -> notify.
type PipelineRunner struct {
	store    interfaces.Store
	hosting  interfaces.HostingClient
	analyzer *RepoAnalyzer
	enricher *NarrativeEnricher

	now         func() time.Time
	concurrency int
	cooldown    time.Duration
}

// PipelineOption is a functional option for PipelineRunner
type PipelineOption func(*PipelineRunner)

// WithClock overrides the time source, used by tests
func WithClock(now func() time.Time) PipelineOption {
	return func(p *PipelineRunner) {
		p.now = now
	}
}

// WithCooldown overrides the inter-batch pause
func WithCooldown(d time.Duration) PipelineOption {
	return func(p *PipelineRunner) {
		p.cooldown = d
	}
}

// NewPipeline creates a new PipelineRunner
func NewPipeline(store interfaces.Store, hosting interfaces.HostingClient, llmClient gollem.LLMClient, opts ...PipelineOption) (*PipelineRunner, error) {
	enricher, err := NewNarrativeEnricher(store, llmClient)
	if err != nil {
		return nil, err
	}

	p := &PipelineRunner{
		store:       store,
		hosting:     hosting,
		analyzer:    NewRepoAnalyzer(hosting),
		enricher:    enricher,
		now:         time.Now,
		concurrency: analyzeConcurrency,
		cooldown:    analyzeCooldown,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes the pipeline for one user. A run record is created
// before any I/O so partial failures stay auditable. A trigger arriving
// while a run is already in progress for the user is dropped, never
// executed concurrently against the same claim set.
func (uc *PipelineRunner) Run(ctx context.Context, userID string, trigger model.TriggerKind) error {
	logger := ctxlog.From(ctx)

	inProgress, err := uc.store.FindRunningRun(ctx, userID)
	if err != nil {
		return goerr.Wrap(err, "failed to check for running pipeline", goerr.V("user_id", userID))
	}
	if inProgress != nil {
		logger.Warn("Pipeline already running for user, dropping trigger",
			"user_id", userID, "trigger", trigger, "running_since", inProgress.StartedAt)
		return nil
	}

	run := &model.PipelineRunRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Trigger:   trigger,
		Status:    model.RunStatusRunning,
		StartedAt: uc.now(),
	}
	if err := uc.store.CreateRun(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to create pipeline run record", goerr.V("user_id", userID))
	}

	logger.Info("Pipeline run started", "run_id", run.ID, "user_id", userID, "trigger", trigger)

	if err := uc.execute(ctx, run); err != nil {
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		run.FinishedAt = uc.now()
		if uerr := uc.store.UpdateRun(ctx, run); uerr != nil {
			logger.Error("Failed to record pipeline failure", "run_id", run.ID, "error", uerr)
		}
		return err
	}

	logger.Info("Pipeline run completed",
		"run_id", run.ID, "user_id", userID, "changes_found", run.ChangesFound)
	return nil
}

func (uc *PipelineRunner) execute(ctx context.Context, run *model.PipelineRunRecord) error {
	user, err := uc.store.GetUser(ctx, run.UserID)
	if err != nil {
		return goerr.Wrap(err, "failed to load user", goerr.V("user_id", run.UserID))
	}
	if user.HostingLogin == "" {
		return goerr.Wrap(types.ErrNoHostingLogin, "cannot analyze repositories", goerr.V("user_id", user.ID))
	}

	repos, err := uc.hosting.ListUserRepos(ctx, user.HostingLogin)
	if err != nil {
		return goerr.Wrap(err, "failed to list repositories", goerr.V("login", user.HostingLogin))
	}

	facts := uc.analyzeRepos(ctx, repos, user.HostingLogin)
	evidences := AggregateSkills(user.ID, facts)

	now := uc.now()

	// Zero detected skills is a valid "nothing to report" outcome
	if len(evidences) > 0 {
		if err := uc.persistSkills(ctx, run, user, facts, evidences, now); err != nil {
			return err
		}
	}

	user.LastSyncedAt = now
	if err := uc.store.SaveUser(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to update last-synced timestamp", goerr.V("user_id", user.ID))
	}

	run.Status = model.RunStatusCompleted
	run.FinishedAt = uc.now()
	if err := uc.store.UpdateRun(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to finalize pipeline run record", goerr.V("run_id", run.ID))
	}
	return nil
}

// persistSkills scores, enriches, diffs, and upserts the computed skill
// set, creating a notification only for a non-empty delta
func (uc *PipelineRunner) persistSkills(ctx context.Context, run *model.PipelineRunRecord, user *model.User, facts []*model.RepoFacts, evidences []*model.SkillEvidence, now time.Time) error {
	readmeBySHA := map[string]string{}
	for _, f := range facts {
		if f.ReadmeSHA != "" {
			readmeBySHA[f.ReadmeSHA] = f.Readme
		}
	}
	uc.enricher.Enrich(ctx, evidences, readmeBySHA)

	scored := make([]ScoredSkill, 0, len(evidences))
	for _, ev := range evidences {
		scored = append(scored, ScoredSkill{Evidence: ev, Score: Score(ev, now)})
	}

	prev, err := uc.store.ListClaims(ctx, user.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to load prior claims", goerr.V("user_id", user.ID))
	}
	priorBySkill := make(map[string]*model.VerifiedSkillClaim, len(prev))
	for _, c := range prev {
		priorBySkill[c.Skill] = c
	}

	delta := DetectChanges(prev, scored)

	for _, s := range scored {
		s.Evidence.UpdatedAt = now
		if err := uc.store.UpsertEvidence(ctx, s.Evidence); err != nil {
			return goerr.Wrap(err, "failed to upsert skill evidence",
				goerr.V("user_id", user.ID), goerr.V("skill", s.Evidence.Skill))
		}

		claim := &model.VerifiedSkillClaim{
			UserID:     user.ID,
			Skill:      s.Evidence.Skill,
			Verified:   Verified(s.Score),
			Confidence: s.Score,
			Label:      Label(s.Evidence, s.Score),
			Source:     model.ClaimSourceGitHub,
			Tips:       ImprovementTips(s.Evidence, s.Score),
			VerifiedAt: now,
			UpdatedAt:  now,
		}
		if prior, ok := priorBySkill[claim.Skill]; ok {
			claim.VerifiedAt = prior.VerifiedAt
		}
		if err := uc.store.UpsertClaim(ctx, claim); err != nil {
			return goerr.Wrap(err, "failed to upsert skill claim",
				goerr.V("user_id", user.ID), goerr.V("skill", claim.Skill))
		}
	}

	if !delta.Empty() {
		notification := &model.ChangeNotification{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Message:   notificationMessage(delta),
			Delta:     delta,
			CreatedAt: now,
		}
		if err := uc.store.CreateNotification(ctx, notification); err != nil {
			return goerr.Wrap(err, "failed to create change notification", goerr.V("user_id", user.ID))
		}
	}

	history := &model.ProfileUpdateHistory{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		ReposAnalyzed:  len(facts),
		SkillsDetected: len(scored),
		Delta:          delta,
		CreatedAt:      now,
	}
	if err := uc.store.CreateHistory(ctx, history); err != nil {
		return goerr.Wrap(err, "failed to create profile history entry", goerr.V("user_id", user.ID))
	}

	run.ChangesFound = !delta.Empty()
	return nil
}

// analyzeRepos runs per-repo analysis with bounded concurrency, pausing
// after each batch to respect the hosting API rate limit. A repo whose
// analysis fails is skipped; results keep input order.
func (uc *PipelineRunner) analyzeRepos(ctx context.Context, repos []model.RepoRef, username string) []*model.RepoFacts {
	logger := ctxlog.From(ctx)
	results := make([]*model.RepoFacts, len(repos))
	var mu sync.Mutex

	for start := 0; start < len(repos); start += analyzeBatchSize {
		end := min(start+analyzeBatchSize, len(repos))

		var eg errgroup.Group
		eg.SetLimit(uc.concurrency)
		for i := start; i < end; i++ {
			idx := i
			eg.Go(func() error {
				facts, err := uc.analyzer.Analyze(ctx, repos[idx], username)
				if err != nil {
					logger.Warn("Skipping repository", "repo", repos[idx].FullName(), "error", err)
					return nil
				}
				mu.Lock()
				results[idx] = facts
				mu.Unlock()
				return nil
			})
		}
		_ = eg.Wait()

		if end < len(repos) && uc.cooldown > 0 {
			select {
			case <-ctx.Done():
				return compactFacts(results)
			case <-time.After(uc.cooldown):
			}
		}
	}
	return compactFacts(results)
}

func compactFacts(results []*model.RepoFacts) []*model.RepoFacts {
	facts := make([]*model.RepoFacts, 0, len(results))
	for _, f := range results {
		if f != nil {
			facts = append(facts, f)
		}
	}
	return facts
}

func notificationMessage(delta model.ChangeDelta) string {
	switch {
	case len(delta.Added) > 0 && len(delta.Strengthened) > 0:
		return fmt.Sprintf("Your skill profile gained %d new skill(s) and %d got stronger",
			len(delta.Added), len(delta.Strengthened))
	case len(delta.Added) > 0:
		return fmt.Sprintf("Your skill profile gained %d new skill(s)", len(delta.Added))
	default:
		return fmt.Sprintf("%d of your skills got stronger", len(delta.Strengthened))
	}
}
