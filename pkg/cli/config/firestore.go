package config

import "github.com/urfave/cli/v3"

// Firestore holds Firestore configuration
type Firestore struct {
	ProjectID  string
	DatabaseID string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud Project ID for Firestore",
			Required:    true,
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("SKILLSYNC_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("SKILLSYNC_FIRESTORE_DATABASE_ID"),
		},
	}
}
