package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePush       WebhookEventType = "push"
	EventTypeCreate     WebhookEventType = "create"
	EventTypePublic     WebhookEventType = "public"
	EventTypeRepository WebhookEventType = "repository"
	EventTypePing       WebhookEventType = "ping"
)

// WebhookEvent represents a webhook event received from the hosting
// provider
type WebhookEvent struct {
	DeliveryID string           // X-GitHub-Delivery header
	Type       WebhookEventType // X-GitHub-Event header
	Action     string           // repository event action (created, publicized, ...)
	RefType    string           // create event ref_type (branch, tag, repository)
	Ref        string           // push event ref
	Owner      string           // repository.owner.login
	Repo       string           // repository.name
	Stars      int              // repository.stargazers_count
	Sender     string           // sender.login
	ReceivedAt time.Time
	RawPayload []byte
}

// IsMeaningfulChange reports whether the event justifies a full
// re-analysis of the sender's repositories.
func (e *WebhookEvent) IsMeaningfulChange() bool {
	switch e.Type {
	case EventTypePush:
		// new commits
		return true
	case EventTypeCreate:
		// branch or repository creation; a tag alone is not meaningful
		return e.RefType == "branch" || e.RefType == "repository"
	case EventTypePublic:
		return true
	case EventTypeRepository:
		return e.Action == "created" || e.Action == "publicized"
	default:
		return false
	}
}

// WebhookOutcome classifies how an inbound delivery was handled
type WebhookOutcome string

const (
	WebhookAccepted WebhookOutcome = "accepted"
	WebhookIgnored  WebhookOutcome = "ignored"
)
