package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/skillsync/skillsync/pkg/cli/config"
	"github.com/skillsync/skillsync/pkg/domain/model"
	fsinfra "github.com/skillsync/skillsync/pkg/infra/firestore"
	ghinfra "github.com/skillsync/skillsync/pkg/infra/github"
	"github.com/skillsync/skillsync/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdSubscribe() *cli.Command {
	var (
		githubCfg    config.GitHub
		firestoreCfg config.Firestore
		userID       string
		repoArgs     []string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User to register webhooks for",
			Required:    true,
			Destination: &userID,
		},
		&cli.StringSliceFlag{
			Name:        "repo",
			Usage:       "Repository as owner/name (repeatable; defaults to all owned repositories)",
			Destination: &repoArgs,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)

	return &cli.Command{
		Name:  "subscribe",
		Usage: "Register repository webhooks for a user",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if githubCfg.WebhookURL == "" {
				return goerr.New("github-webhook-url is required for subscribe")
			}

			store, err := fsinfra.New(ctx, firestoreCfg.ProjectID, firestoreCfg.DatabaseID)
			if err != nil {
				return err
			}
			defer store.Close()

			hosting, err := ghinfra.NewClient(githubCfg.Token)
			if err != nil {
				return err
			}

			var repos []model.RepoRef
			if len(repoArgs) > 0 {
				for _, arg := range repoArgs {
					owner, name, ok := strings.Cut(arg, "/")
					if !ok || owner == "" || name == "" {
						return goerr.New("repository must be owner/name", goerr.V("repo", arg))
					}
					repos = append(repos, model.RepoRef{Owner: owner, Name: name})
				}
			} else {
				user, err := store.GetUser(ctx, userID)
				if err != nil {
					return err
				}
				repos, err = hosting.ListUserRepos(ctx, user.HostingLogin)
				if err != nil {
					return err
				}
			}

			subUC := usecase.NewSubscriptionManager(store, hosting, githubCfg.WebhookURL)
			results, err := subUC.Subscribe(ctx, userID, repos)
			if err != nil {
				return err
			}

			for _, res := range results {
				logger.Info("Subscription result",
					slog.String("repo", res.Owner+"/"+res.Repo),
					slog.String("status", string(res.Status)),
					slog.String("error", res.Error),
				)
			}
			return nil
		},
	}
}

func cmdUnsubscribe() *cli.Command {
	var (
		githubCfg    config.GitHub
		firestoreCfg config.Firestore
		userID       string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User to remove webhooks for",
			Required:    true,
			Destination: &userID,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)

	return &cli.Command{
		Name:  "unsubscribe",
		Usage: "Remove all repository webhooks for a user",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			store, err := fsinfra.New(ctx, firestoreCfg.ProjectID, firestoreCfg.DatabaseID)
			if err != nil {
				return err
			}
			defer store.Close()

			hosting, err := ghinfra.NewClient(githubCfg.Token)
			if err != nil {
				return err
			}

			subUC := usecase.NewSubscriptionManager(store, hosting, githubCfg.WebhookURL)
			results, err := subUC.Unsubscribe(ctx, userID)
			if err != nil {
				return err
			}

			for _, res := range results {
				logger.Info("Unsubscribe result",
					slog.String("repo", res.Owner+"/"+res.Repo),
					slog.String("status", string(res.Status)),
					slog.String("error", res.Error),
				)
			}
			return nil
		},
	}
}
