package model

import "time"

// User is the internal account a skill profile belongs to. HostingLogin
// is the username on the external hosting provider; the pipeline cannot
// run without it.
type User struct {
	ID           string    `firestore:"id" json:"id"`
	Email        string    `firestore:"email" json:"email"`
	HostingLogin string    `firestore:"hosting_login" json:"hosting_login"`
	LastSyncedAt time.Time `firestore:"last_synced_at" json:"last_synced_at"`
}
