package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/skillsync/skillsync/pkg/cli/config"
	"github.com/skillsync/skillsync/pkg/domain/model"
	fsinfra "github.com/skillsync/skillsync/pkg/infra/firestore"
	ghinfra "github.com/skillsync/skillsync/pkg/infra/github"
	"github.com/skillsync/skillsync/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdSync() *cli.Command {
	var (
		githubCfg    config.GitHub
		geminiCfg    config.Gemini
		firestoreCfg config.Firestore
		userID       string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User to run the verification pipeline for",
			Required:    true,
			Destination: &userID,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)

	return &cli.Command{
		Name:  "sync",
		Usage: "Run the skill verification pipeline for one user immediately",
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

			llmClient, err := gemini.New(ctx, geminiCfg.Location, geminiCfg.ProjectID,
				gemini.WithModel(geminiCfg.Model),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create Gemini client")
			}

			pipeline, err := usecase.NewPipeline(store, hosting, llmClient)
			if err != nil {
				return err
			}

			if err := pipeline.Run(ctx, userID, model.TriggerManual); err != nil {
				return err
			}

			logger.Info("Sync complete", slog.String("user_id", userID))
			return nil
		},
	}
}
