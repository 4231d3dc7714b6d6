package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/projhub-lab/recommender/pkg/cli/config"
	httpctrl "github.com/projhub-lab/recommender/pkg/controller/http"
	"github.com/projhub-lab/recommender/pkg/usecase"
	"github.com/projhub-lab/recommender/pkg/utils/logging"
)

// Intervals of the progress record pruner loop
const (
	prunerInterval = time.Minute
	prunerGrace    = 10 * time.Minute
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var embedCfg config.Embedding
	var tuningCfg config.Tuning

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RECOMMENDER_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, embedCfg.Flags()...)
	flags = append(flags, tuningCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			primary, fallback, err := embedCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure embedding backend")
			}

			tuning, err := tuningCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load tuning configuration")
			}

			uc := usecase.New(repo,
				usecase.WithEmbeddingClient(primary),
				usecase.WithFallbackEmbedding(fallback),
				usecase.WithTuning(tuning),
			)

			// Abandoned progress records must not accumulate forever
			prunerCtx, stopPruner := context.WithCancel(ctx)
			defer stopPruner()
			go uc.Tracker().RunPruner(prunerCtx, prunerInterval, prunerGrace)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr,
					"repository", repoCfg.Backend(), "embedding", embedCfg.LogValue())
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)
				stopPruner()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
