package model

import "time"

// JobKind distinguishes recurring re-sync jobs from one-off triggers
type JobKind string

const (
	JobKindRecurring JobKind = "recurring"
	JobKindManual    JobKind = "manual"
)

// JobStatus is the scheduled job lifecycle
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ScheduledJob is a persisted queue entry. The job store is durable
// across process restarts; Bootstrap self-heals it after an outage.
type ScheduledJob struct {
	ID        string    `firestore:"id" json:"id"`
	UserID    string    `firestore:"user_id" json:"user_id"`
	Kind      JobKind   `firestore:"kind" json:"kind"`
	Status    JobStatus `firestore:"status" json:"status"`
	RunAt     time.Time `firestore:"run_at" json:"run_at"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at" json:"updated_at"`
}
