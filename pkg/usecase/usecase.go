package usecase

import (
	"time"

	"github.com/projhub-lab/recommender/pkg/domain/interfaces"
	"github.com/projhub-lab/recommender/pkg/domain/model/config"
	"github.com/projhub-lab/recommender/pkg/service/embedding"
	"github.com/projhub-lab/recommender/pkg/service/feedback"
	"github.com/projhub-lab/recommender/pkg/service/progress"
	"github.com/projhub-lab/recommender/pkg/service/rank"
	"github.com/projhub-lab/recommender/pkg/service/recocache"
	"github.com/projhub-lab/recommender/pkg/service/resilience"
)

type UseCases struct {
	repo     interfaces.Repository
	embedder interfaces.EmbeddingClient
	fallback interfaces.EmbeddingClient
	ranker   *rank.Ranker
	learner  *feedback.Learner
	cache    *recocache.Cache
	tracker  *progress.Tracker
	executor *resilience.Executor
	tuning   *config.Tuning
	now      func() time.Time
}

type Option func(*UseCases)

// WithEmbeddingClient sets the primary embedding backend
func WithEmbeddingClient(client interfaces.EmbeddingClient) Option {
	return func(uc *UseCases) {
		uc.embedder = client
	}
}

// WithFallbackEmbedding sets the degraded-path embedding backend used when
// the primary is unavailable. Pass nil to disable graceful degradation.
func WithFallbackEmbedding(client interfaces.EmbeddingClient) Option {
	return func(uc *UseCases) {
		uc.fallback = client
	}
}

// WithTuning overrides the heuristic pipeline constants
func WithTuning(tuning *config.Tuning) Option {
	return func(uc *UseCases) {
		uc.tuning = tuning
	}
}

// WithExecutor overrides the resilience executor, mainly for tests
func WithExecutor(executor *resilience.Executor) Option {
	return func(uc *UseCases) {
		uc.executor = executor
	}
}

// WithClock overrides the time source for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.tuning == nil {
		uc.tuning = config.DefaultTuning()
	}
	if uc.embedder == nil {
		uc.embedder = embedding.NewFeatureHash()
	}
	if uc.executor == nil {
		uc.executor = resilience.New()
	}
	uc.ranker = rank.New()
	uc.learner = feedback.New(repo.Feedback(), uc.tuning)
	uc.cache = recocache.New(uc.tuning.CacheSize, uc.tuning.CacheTTL)
	uc.tracker = progress.New()

	return uc
}

// Tracker exposes the progress tracker so the server can run its pruner loop
func (uc *UseCases) Tracker() *progress.Tracker {
	return uc.tracker
}

// Executor exposes the resilience executor for health reporting
func (uc *UseCases) Executor() *resilience.Executor {
	return uc.executor
}
