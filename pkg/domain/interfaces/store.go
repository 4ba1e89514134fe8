package interfaces

import (
	"context"
	"time"

	"github.com/skillsync/skillsync/pkg/domain/model"
)

// Store is the persistence boundary. The pipeline depends only on key
// lookups, equality filters, and upserts, so any document store can
// implement it.
type Store interface {
	// Users
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByLogin(ctx context.Context, hostingLogin string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	SaveUser(ctx context.Context, user *model.User) error

	// Skill evidence and claims, keyed by (user, skill)
	UpsertEvidence(ctx context.Context, ev *model.SkillEvidence) error
	ListEvidence(ctx context.Context, userID string) ([]*model.SkillEvidence, error)
	UpsertClaim(ctx context.Context, claim *model.VerifiedSkillClaim) error
	ListClaims(ctx context.Context, userID string) ([]*model.VerifiedSkillClaim, error)

	// Webhook subscriptions, keyed by (owner, repo)
	SaveSubscription(ctx context.Context, sub *model.SubscriptionRecord) error
	GetSubscription(ctx context.Context, owner, repo string) (*model.SubscriptionRecord, error)
	ListActiveSubscriptions(ctx context.Context, userID string) ([]*model.SubscriptionRecord, error)

	// Pipeline run audit trail
	CreateRun(ctx context.Context, run *model.PipelineRunRecord) error
	UpdateRun(ctx context.Context, run *model.PipelineRunRecord) error
	FindRunningRun(ctx context.Context, userID string) (*model.PipelineRunRecord, error)

	// Change notifications and profile history
	CreateNotification(ctx context.Context, n *model.ChangeNotification) error
	CreateHistory(ctx context.Context, h *model.ProfileUpdateHistory) error

	// Narrative cache, keyed by README content hash and shared across
	// users. GetNarrative returns "" on a miss.
	GetNarrative(ctx context.Context, sha string) (string, error)
	PutNarrative(ctx context.Context, sha, summary string) error

	// Durable job queue
	SaveJob(ctx context.Context, job *model.ScheduledJob) error
	UpdateJob(ctx context.Context, job *model.ScheduledJob) error
	FindPendingJob(ctx context.Context, userID string, kind model.JobKind) (*model.ScheduledJob, error)
	DeletePendingJobs(ctx context.Context, userID string, kind model.JobKind) error
	ListDueJobs(ctx context.Context, now time.Time) ([]*model.ScheduledJob, error)
}
