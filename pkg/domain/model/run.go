package model

import "time"

// TriggerKind identifies what invoked a pipeline run
type TriggerKind string

const (
	TriggerWebhook  TriggerKind = "webhook"
	TriggerSchedule TriggerKind = "schedule"
	TriggerManual   TriggerKind = "manual"
	TriggerAdmin    TriggerKind = "admin"
)

// RunStatus is the pipeline run state machine:
// running -> completed | failed
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineRunRecord is the append-only audit trail, one per pipeline
// invocation. It is created before any I/O begins so partial failures
// remain auditable.
type PipelineRunRecord struct {
	ID           string      `firestore:"id" json:"id"`
	UserID       string      `firestore:"user_id" json:"user_id"`
	Trigger      TriggerKind `firestore:"trigger" json:"trigger"`
	Status       RunStatus   `firestore:"status" json:"status"`
	StartedAt    time.Time   `firestore:"started_at" json:"started_at"`
	FinishedAt   time.Time   `firestore:"finished_at" json:"finished_at"`
	ChangesFound bool        `firestore:"changes_found" json:"changes_found"`
	Error        string      `firestore:"error,omitempty" json:"error,omitempty"`
}
