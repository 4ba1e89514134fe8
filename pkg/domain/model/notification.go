package model

import "time"

// SkillChange records a score improvement for one skill
type SkillChange struct {
	Skill string `firestore:"skill" json:"skill"`
	From  int    `firestore:"from" json:"from"`
	To    int    `firestore:"to" json:"to"`
}

// ChangeDelta is the classified diff between the previously persisted
// claim set and a freshly computed one
type ChangeDelta struct {
	Added        []string      `firestore:"added" json:"added"`
	Strengthened []SkillChange `firestore:"strengthened" json:"strengthened"`
}

// Empty reports whether the delta justifies a notification
func (d ChangeDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Strengthened) == 0
}

// ChangeNotification is created only when ChangeDetector reports a
// non-empty delta. Rendering and delivery are external collaborators.
type ChangeNotification struct {
	ID        string      `firestore:"id" json:"id"`
	UserID    string      `firestore:"user_id" json:"user_id"`
	Message   string      `firestore:"message" json:"message"`
	Delta     ChangeDelta `firestore:"delta" json:"delta"`
	Read      bool        `firestore:"read" json:"read"`
	CreatedAt time.Time   `firestore:"created_at" json:"created_at"`
}

// ProfileUpdateHistory is an audit entry written on every completed run
// that produced evidence, regardless of whether a notification was sent.
type ProfileUpdateHistory struct {
	ID             string      `firestore:"id" json:"id"`
	UserID         string      `firestore:"user_id" json:"user_id"`
	ReposAnalyzed  int         `firestore:"repos_analyzed" json:"repos_analyzed"`
	SkillsDetected int         `firestore:"skills_detected" json:"skills_detected"`
	Delta          ChangeDelta `firestore:"delta" json:"delta"`
	CreatedAt      time.Time   `firestore:"created_at" json:"created_at"`
}
