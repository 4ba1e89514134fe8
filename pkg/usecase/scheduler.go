package usecase

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/domain/interfaces"
	"github.com/skillsync/skillsync/pkg/domain/model"
	"github.com/skillsync/skillsync/pkg/utils/async"
)

const (
	// recurringInterval is the re-verification cadence
	recurringInterval = 7 * 24 * time.Hour

	// staggerWindowHours spreads recurring jobs across a day so all
	// users do not hit the hosting API at once
	staggerWindowHours = 24

	defaultPollInterval = 30 * time.Second
)

// Scheduler maintains the durable job queue that re-runs the pipeline
// for every user on a weekly cadence, staggered per user
type Scheduler struct {
	store    interfaces.Store
	pipeline interfaces.PipelineUseCase

	pollInterval time.Duration
	now          func() time.Time
}

// SchedulerOption is a functional option for Scheduler
type SchedulerOption func(*Scheduler)

// WithPollInterval overrides how often the worker checks for due jobs
func WithPollInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.pollInterval = d
	}
}

// WithSchedulerClock overrides the time source, used by tests
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates a new Scheduler
func NewScheduler(store interfaces.Store, pipeline interfaces.PipelineUseCase, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store:        store,
		pipeline:     pipeline,
		pollInterval: defaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleRecurring replaces any pending recurring job for the user
// with a fresh one. Cancel-then-create keeps the queue at exactly one
// pending recurring job per user, so repeated scheduling is idempotent.
func (s *Scheduler) ScheduleRecurring(ctx context.Context, userID string) error {
	if err := s.store.DeletePendingJobs(ctx, userID, model.JobKindRecurring); err != nil {
		return goerr.Wrap(err, "failed to cancel pending recurring jobs", goerr.V("user_id", userID))
	}

	now := s.now()
	job := &model.ScheduledJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      model.JobKindRecurring,
		Status:    model.JobStatusPending,
		RunAt:     now.Add(recurringInterval + StaggerOffset(userID)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveJob(ctx, job); err != nil {
		return goerr.Wrap(err, "failed to enqueue recurring job", goerr.V("user_id", userID))
	}
	return nil
}

// TriggerNow enqueues an immediate one-off job for the user
func (s *Scheduler) TriggerNow(ctx context.Context, userID string) error {
	now := s.now()
	job := &model.ScheduledJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      model.JobKindManual,
		Status:    model.JobStatusPending,
		RunAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveJob(ctx, job); err != nil {
		return goerr.Wrap(err, "failed to enqueue manual job", goerr.V("user_id", userID))
	}
	return nil
}

// Bootstrap runs once at process start: every known user without a
// pending recurring job gets one. This self-heals the job store after
// an outage without creating duplicates.
func (s *Scheduler) Bootstrap(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list users for scheduler bootstrap")
	}

	scheduled := 0
	for _, user := range users {
		pending, err := s.store.FindPendingJob(ctx, user.ID, model.JobKindRecurring)
		if err != nil {
			logger.Warn("Failed to check pending job", "user_id", user.ID, "error", err)
			continue
		}
		if pending != nil {
			continue
		}
		if err := s.ScheduleRecurring(ctx, user.ID); err != nil {
			logger.Warn("Failed to schedule recurring job", "user_id", user.ID, "error", err)
			continue
		}
		scheduled++
	}

	logger.Info("Scheduler bootstrap complete", "users", len(users), "scheduled", scheduled)
	return nil
}

// Start runs the polling worker until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	logger := ctxlog.From(ctx)
	logger.Info("Scheduler worker started", "poll_interval", s.pollInterval)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler worker stopped")
			return
		case <-ticker.C:
			s.RunDue(ctx, s.now())
		}
	}
}

// RunDue claims every due pending job and dispatches its pipeline run
// asynchronously. Recurring jobs re-schedule themselves on completion.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) {
	logger := ctxlog.From(ctx)

	jobs, err := s.store.ListDueJobs(ctx, now)
	if err != nil {
		logger.Error("Failed to list due jobs", "error", err)
		return
	}

	for _, job := range jobs {
		job.Status = model.JobStatusRunning
		job.UpdatedAt = now
		if err := s.store.UpdateJob(ctx, job); err != nil {
			logger.Error("Failed to claim job", "job_id", job.ID, "error", err)
			continue
		}

		job := job
		async.Dispatch(ctx, func(ctx context.Context) error {
			trigger := model.TriggerSchedule
			if job.Kind == model.JobKindManual {
				trigger = model.TriggerManual
			}

			runErr := s.pipeline.Run(ctx, job.UserID, trigger)
			if runErr != nil {
				job.Status = model.JobStatusFailed
			} else {
				job.Status = model.JobStatusCompleted
			}
			job.UpdatedAt = s.now()
			if err := s.store.UpdateJob(ctx, job); err != nil {
				ctxlog.From(ctx).Error("Failed to finalize job", "job_id", job.ID, "error", err)
			}

			if job.Kind == model.JobKindRecurring {
				if err := s.ScheduleRecurring(ctx, job.UserID); err != nil {
					ctxlog.From(ctx).Error("Failed to re-schedule recurring job",
						"user_id", job.UserID, "error", err)
				}
			}
			return runErr
		})
	}
}

// StaggerOffset derives a deterministic 0-23 hour offset from a user ID
func StaggerOffset(userID string) time.Duration {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return time.Duration(h.Sum32()%staggerWindowHours) * time.Hour
}
