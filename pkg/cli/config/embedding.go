package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/projhub-lab/recommender/pkg/domain/interfaces"
	"github.com/projhub-lab/recommender/pkg/service/embedding"
	"github.com/projhub-lab/recommender/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Embedding holds CLI flags for the embedding backend
type Embedding struct {
	backend        string
	localEndpoint  string
	geminiProject  string
	geminiLocation string
	noFallback     bool
}

// Flags returns CLI flags for embedding configuration
func (e *Embedding) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embedding-backend",
			Usage:       "Embedding backend type (local or gemini)",
			Value:       "local",
			Sources:     cli.EnvVars("RECOMMENDER_EMBEDDING_BACKEND"),
			Destination: &e.backend,
		},
		&cli.StringFlag{
			Name:        "embedding-endpoint",
			Usage:       "Local embedding service endpoint",
			Value:       "http://localhost:8001",
			Sources:     cli.EnvVars("RECOMMENDER_EMBEDDING_ENDPOINT"),
			Destination: &e.localEndpoint,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini embeddings",
			Sources:     cli.EnvVars("RECOMMENDER_GEMINI_PROJECT"),
			Destination: &e.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini embeddings",
			Value:       "us-central1",
			Sources:     cli.EnvVars("RECOMMENDER_GEMINI_LOCATION"),
			Destination: &e.geminiLocation,
		},
		&cli.BoolFlag{
			Name:        "embedding-no-fallback",
			Usage:       "Disable the feature-hash fallback when the embedding service is down",
			Sources:     cli.EnvVars("RECOMMENDER_EMBEDDING_NO_FALLBACK"),
			Destination: &e.noFallback,
		},
	}
}

// LogValue returns the configuration as a structured log value
func (e *Embedding) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", e.backend),
		slog.String("endpoint", e.localEndpoint),
		slog.String("gemini_project", e.geminiProject),
		slog.Bool("fallback", !e.noFallback),
	)
}

// Configure creates the primary embedding client and, unless disabled, the
// degraded-path fallback client
func (e *Embedding) Configure(ctx context.Context) (primary, fallback interfaces.EmbeddingClient, err error) {
	switch e.backend {
	case "local":
		primary, err = embedding.NewLocal(e.localEndpoint)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create local embedding client")
		}
		logging.Default().Info("Using local embedding service", "endpoint", e.localEndpoint)

	case "gemini":
		if e.geminiProject == "" {
			return nil, nil, goerr.New("gemini-project is required when using gemini backend")
		}
		llm, llmErr := gemini.New(ctx, e.geminiProject, e.geminiLocation)
		if llmErr != nil {
			return nil, nil, goerr.Wrap(llmErr, "failed to create Gemini client")
		}
		primary, err = embedding.NewGemini(llm)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create Gemini embedding client")
		}
		logging.Default().Info("Using Gemini embeddings",
			"project_id", e.geminiProject, "location", e.geminiLocation)

	default:
		return nil, nil, goerr.New("invalid embedding backend", goerr.V("backend", e.backend))
	}

	if !e.noFallback {
		fallback = embedding.NewFeatureHash()
	}
	return primary, fallback, nil
}
