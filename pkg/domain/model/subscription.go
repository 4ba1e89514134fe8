package model

import "time"

// SubscriptionRecord tracks a repository-level webhook registered on the
// hosting API for a user. Secret is the per-repository HMAC secret,
// never reused across repositories. Records are deactivated, not
// deleted, when a repository is unlinked.
type SubscriptionRecord struct {
	ID        string    `firestore:"id" json:"id"`
	UserID    string    `firestore:"user_id" json:"user_id"`
	Owner     string    `firestore:"owner" json:"owner"`
	Repo      string    `firestore:"repo" json:"repo"`
	HookID    int64     `firestore:"hook_id" json:"hook_id"`
	Secret    string    `firestore:"secret" json:"-" masq:"secret"`
	Events    []string  `firestore:"events" json:"events"`
	Active    bool      `firestore:"active" json:"active"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at" json:"updated_at"`
}

// SubscriptionResult is the per-repo outcome of a subscribe/unsubscribe
// operation
type SubscriptionResult struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	HookID int64  `json:"hook_id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	SubscriptionSubscribed    = "subscribed"
	SubscriptionAlreadyExists = "already_exists"
	SubscriptionRemoved       = "removed"
	SubscriptionFailed        = "failed"
)
