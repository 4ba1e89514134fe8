package config

import "github.com/urfave/cli/v3"

// GitHub holds GitHub API configuration
type GitHub struct {
	Token      string
	WebhookURL string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub API token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("SKILLSYNC_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-url",
			Usage:       "Public URL that repository webhooks deliver to",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("SKILLSYNC_GITHUB_WEBHOOK_URL"),
		},
	}
}
