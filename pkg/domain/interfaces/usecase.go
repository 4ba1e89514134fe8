package interfaces

import (
	"context"

	"github.com/skillsync/skillsync/pkg/domain/model"
)

// PipelineUseCase runs the skill-verification pipeline for one user
type PipelineUseCase interface {
	// Run executes fetch -> aggregate -> score -> enrich -> diff ->
	// persist -> notify. Idempotent: re-running with no upstream
	// changes produces no side effects beyond updated timestamps.
	Run(ctx context.Context, userID string, trigger model.TriggerKind) error
}

// WebhookUseCase defines the interface for inbound webhook processing
type WebhookUseCase interface {
	// VerifySignature checks the HMAC-SHA256 signature of a raw
	// delivery body against the per-subscription secret
	VerifySignature(ctx context.Context, owner, repo string, body []byte, signature string) error

	// HandleEvent filters for meaningful events, resolves the sender
	// to a platform user, and dispatches the pipeline asynchronously
	HandleEvent(ctx context.Context, event *model.WebhookEvent) (model.WebhookOutcome, error)
}

// SubscriptionUseCase manages repository-level webhook registrations
type SubscriptionUseCase interface {
	Subscribe(ctx context.Context, userID string, repos []model.RepoRef) ([]model.SubscriptionResult, error)
	Unsubscribe(ctx context.Context, userID string) ([]model.SubscriptionResult, error)
}

// SchedulerUseCase is the durable, staggered re-sync scheduler
type SchedulerUseCase interface {
	// ScheduleRecurring replaces any pending recurring job for the
	// user with a fresh one ~7 days out, staggered per user
	ScheduleRecurring(ctx context.Context, userID string) error

	// TriggerNow enqueues an immediate one-off job
	TriggerNow(ctx context.Context, userID string) error

	// Bootstrap ensures every known user has a pending recurring job,
	// without creating duplicates
	Bootstrap(ctx context.Context) error

	// Start runs the polling worker until ctx is cancelled
	Start(ctx context.Context)
}
