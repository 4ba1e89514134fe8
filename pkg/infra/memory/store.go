// Package memory provides an in-memory Store used by tests and local
// development. All methods are safe for concurrent use and return
// copies so callers cannot mutate stored state.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/domain/types"
)

type Store struct {
	mu sync.Mutex

	users         map[string]*model.User
	evidence      map[string]*model.SkillEvidence      // userID + "/" + skill
	claims        map[string]*model.VerifiedSkillClaim // userID + "/" + skill
	subscriptions map[string]*model.SubscriptionRecord // owner + "/" + repo
	runs          map[string]*model.PipelineRunRecord
	notifications []*model.ChangeNotification
	histories     []*model.ProfileUpdateHistory
	narratives    map[string]string
	jobs          map[string]*model.ScheduledJob
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		users:         make(map[string]*model.User),
		evidence:      make(map[string]*model.SkillEvidence),
		claims:        make(map[string]*model.VerifiedSkillClaim),
		subscriptions: make(map[string]*model.SubscriptionRecord),
		runs:          make(map[string]*model.PipelineRunRecord),
		narratives:    make(map[string]string),
		jobs:          make(map[string]*model.ScheduledJob),
	}
}

func (s *Store) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, goerr.Wrap(types.ErrUserNotFound, "no such user", goerr.V("user_id", id))
	}
	copied := *user
	return &copied, nil
}

func (s *Store) GetUserByLogin(_ context.Context, hostingLogin string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.HostingLogin == hostingLogin {
			copied := *user
			return &copied, nil
		}
	}
	return nil, goerr.Wrap(types.ErrUserNotFound, "no user with hosting login",
		goerr.V("login", hostingLogin))
}

func (s *Store) ListUsers(_ context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

func (s *Store) SaveUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *Store) UpsertEvidence(_ context.Context, ev *model.SkillEvidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *ev
	s.evidence[ev.UserID+"/"+ev.Skill] = &copied
	return nil
}

func (s *Store) ListEvidence(_ context.Context, userID string) ([]*model.SkillEvidence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evidences []*model.SkillEvidence
	for _, ev := range s.evidence {
		if ev.UserID == userID {
			copied := *ev
			evidences = append(evidences, &copied)
		}
	}
	return evidences, nil
}

func (s *Store) UpsertClaim(_ context.Context, claim *model.VerifiedSkillClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *claim
	s.claims[claim.UserID+"/"+claim.Skill] = &copied
	return nil
}

func (s *Store) ListClaims(_ context.Context, userID string) ([]*model.VerifiedSkillClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var claims []*model.VerifiedSkillClaim
	for _, claim := range s.claims {
		if claim.UserID == userID {
			copied := *claim
			claims = append(claims, &copied)
		}
	}
	return claims, nil
}

func (s *Store) SaveSubscription(_ context.Context, sub *model.SubscriptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sub
	s.subscriptions[sub.Owner+"/"+sub.Repo] = &copied
	return nil
}

func (s *Store) GetSubscription(_ context.Context, owner, repo string) (*model.SubscriptionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[owner+"/"+repo]
	if !ok {
		return nil, nil
	}
	copied := *sub
	return &copied, nil
}

func (s *Store) ListActiveSubscriptions(_ context.Context, userID string) ([]*model.SubscriptionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subs []*model.SubscriptionRecord
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.Active {
			copied := *sub
			subs = append(subs, &copied)
		}
	}
	return subs, nil
}

func (s *Store) CreateRun(_ context.Context, run *model.PipelineRunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return goerr.New("run already exists", goerr.V("run_id", run.ID))
	}
	copied := *run
	s.runs[run.ID] = &copied
	return nil
}

func (s *Store) UpdateRun(_ context.Context, run *model.PipelineRunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *run
	s.runs[run.ID] = &copied
	return nil
}

func (s *Store) FindRunningRun(_ context.Context, userID string) (*model.PipelineRunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, run := range s.runs {
		if run.UserID == userID && run.Status == model.RunStatusRunning {
			copied := *run
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateNotification(_ context.Context, n *model.ChangeNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *n
	s.notifications = append(s.notifications, &copied)
	return nil
}

func (s *Store) CreateHistory(_ context.Context, h *model.ProfileUpdateHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *h
	s.histories = append(s.histories, &copied)
	return nil
}

func (s *Store) GetNarrative(_ context.Context, sha string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.narratives[sha], nil
}

func (s *Store) PutNarrative(_ context.Context, sha, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.narratives[sha] = summary
	return nil
}

func (s *Store) SaveJob(_ context.Context, job *model.ScheduledJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *Store) UpdateJob(_ context.Context, job *model.ScheduledJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *Store) FindPendingJob(_ context.Context, userID string, kind model.JobKind) (*model.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if job.UserID == userID && job.Kind == kind && job.Status == model.JobStatusPending {
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *Store) DeletePendingJobs(_ context.Context, userID string, kind model.JobKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, job := range s.jobs {
		if job.UserID == userID && job.Kind == kind && job.Status == model.JobStatusPending {
			delete(s.jobs, id)
		}
	}
	return nil
}

func (s *Store) ListDueJobs(_ context.Context, now time.Time) ([]*model.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*model.ScheduledJob
	for _, job := range s.jobs {
		if job.Status == model.JobStatusPending && !job.RunAt.After(now) {
			copied := *job
			due = append(due, &copied)
		}
	}
	return due, nil
}

// Test helpers below. They expose snapshots of write-only collections.

func (s *Store) Notifications() []*model.ChangeNotification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.ChangeNotification, 0, len(s.notifications))
	for _, n := range s.notifications {
		copied := *n
		out = append(out, &copied)
	}
	return out
}

func (s *Store) Histories() []*model.ProfileUpdateHistory {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.ProfileUpdateHistory, 0, len(s.histories))
	for _, h := range s.histories {
		copied := *h
		out = append(out, &copied)
	}
	return out
}

func (s *Store) Runs() []*model.PipelineRunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.PipelineRunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		copied := *run
		out = append(out, &copied)
	}
	return out
}

func (s *Store) Jobs() []*model.ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.ScheduledJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		copied := *job
		out = append(out, &copied)
	}
	return out
}

// NarrativeCount reports how many narratives are cached
func (s *Store) NarrativeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.narratives)
}
