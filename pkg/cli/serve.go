package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/skillsync/skillsync/pkg/cli/config"
	controller "github.com/skillsync/skillsync/pkg/controller/http"
	fsinfra "github.com/skillsync/skillsync/pkg/infra/firestore"
	ghinfra "github.com/skillsync/skillsync/pkg/infra/github"
	"github.com/skillsync/skillsync/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		githubCfg    config.GitHub
		geminiCfg    config.Gemini
		firestoreCfg config.Firestore
		sentryCfg    config.Sentry
	)

	flags := serverCfg.Flags()
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server with webhook ingestion and scheduler",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := sentryCfg.Configure(); err != nil {
				return err
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
			webhookUC := usecase.NewWebhook(store, pipeline)
			scheduler := usecase.NewScheduler(store, pipeline)

			if err := scheduler.Bootstrap(ctx); err != nil {
				return err
			}

			// Scheduler worker shares the server lifetime
			schedCtx, stopScheduler := context.WithCancel(ctx)
			defer stopScheduler()
			go scheduler.Start(schedCtx)

			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			stopScheduler()

			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
