package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/service/rank"
	"github.com/projhub-lab/recommender/pkg/service/resilience"
	"github.com/projhub-lab/recommender/pkg/service/textnorm"
	"github.com/projhub-lab/recommender/pkg/utils/logging"
)

// Score bands for the per-project reasoning text
const (
	highCompatibility = 0.8
	goodCompatibility = 0.6
)

// GenerateRecommendations runs the full pipeline for the student and returns
// the persisted snapshot. On a cache hit the cached snapshot is returned
// without touching any external service, unless ForceRefresh is set.
func (uc *UseCases) GenerateRecommendations(ctx context.Context, studentID types.StudentID, opts model.RecommendationOptions) (*model.RecommendationSnapshot, error) {
	return uc.generate(ctx, studentID, opts, "")
}

// RefreshRecommendations invalidates the student's cache entry and
// regenerates from scratch
func (uc *UseCases) RefreshRecommendations(ctx context.Context, studentID types.StudentID) (*model.RecommendationSnapshot, error) {
	uc.cache.Invalidate(studentID)

	opts := model.DefaultRecommendationOptions()
	opts.ForceRefresh = true
	return uc.generate(ctx, studentID, opts, "")
}

// generate wraps the pipeline with progress bookkeeping: a tracked request
// always ends COMPLETE or FAILED, never hangs
func (uc *UseCases) generate(ctx context.Context, studentID types.StudentID, opts model.RecommendationOptions, requestID types.RequestID) (*model.RecommendationSnapshot, error) {
	snapshot, err := uc.runPipeline(ctx, studentID, opts, requestID)
	if err != nil {
		if requestID != "" {
			if failErr := uc.tracker.FailRequest(requestID, err.Error()); failErr != nil {
				logging.From(ctx).Warn("failed to mark request failed",
					"requestID", requestID, "error", failErr)
			}
		}
		return nil, err
	}

	if requestID != "" {
		if completeErr := uc.tracker.CompleteRequest(requestID); completeErr != nil {
			logging.From(ctx).Warn("failed to mark request complete",
				"requestID", requestID, "error", completeErr)
		}
	}
	return snapshot, nil
}

func (uc *UseCases) runPipeline(ctx context.Context, studentID types.StudentID, opts model.RecommendationOptions, requestID types.RequestID) (*model.RecommendationSnapshot, error) {
	started := uc.now()

	if err := opts.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidOptions, err.Error(), goerr.V(StudentIDKey, studentID))
	}
	opts = opts.Normalize()

	if !opts.ForceRefresh {
		if cached, ok := uc.cache.Get(studentID); ok {
			logging.From(ctx).Debug("recommendation cache hit",
				"studentID", studentID, "snapshotID", cached.ID)
			return cached, nil
		}
	}

	uc.advance(ctx, requestID, types.StageValidatingProfile, 10, "validating student profile")
	student, err := uc.repo.Students().GetWithProfile(ctx, studentID)
	if err != nil {
		return nil, goerr.Wrap(ErrStudentNotFound, "student not found", goerr.V(StudentIDKey, studentID))
	}
	if !student.Profile.IsComplete() {
		return nil, goerr.Wrap(ErrProfileIncomplete,
			"profile needs at least one skill, interest or preferred specialization",
			goerr.V(StudentIDKey, studentID))
	}

	uc.advance(ctx, requestID, types.StageFetchingProjects, 25, "fetching candidate projects")
	projects, err := uc.repo.Projects().FindApproved(ctx, opts.Filter())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch candidate projects", goerr.V(StudentIDKey, studentID))
	}
	if len(projects) == 0 {
		return nil, goerr.Wrap(ErrNoCandidateProjects, "no approved projects match the filters",
			goerr.V(StudentIDKey, studentID))
	}

	uc.advance(ctx, requestID, types.StageGeneratingEmbeddings, 45, "generating embeddings")
	texts := make([]string, 0, len(projects)+1)
	texts = append(texts, textnorm.Student(student.Profile))
	for _, p := range projects {
		texts = append(texts, textnorm.Project(p))
	}
	batch, recovery, err := uc.embed(ctx, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "embedding generation failed", goerr.V(StudentIDKey, studentID))
	}

	uc.advance(ctx, requestID, types.StageCalculatingSimilarity, 60, "calculating similarity")
	ranked, err := uc.ranker.Rank(batch.Vectors[0], batch.Vectors[1:], rank.Options{
		MinThreshold: opts.MinSimilarityScore,
		MaxResults:   opts.Limit,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "similarity ranking failed", goerr.V(StudentIDKey, studentID))
	}

	uc.advance(ctx, requestID, types.StageApplyingFilters, 75, "applying feedback and diversity adjustments")
	adjustment, err := uc.learner.Adjustments(ctx, studentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to derive feedback adjustment", goerr.V(StudentIDKey, studentID))
	}
	recommendations := uc.score(projects, ranked, adjustment, opts)

	uc.advance(ctx, requestID, types.StageGeneratingExplanations, 90, "generating explanations")
	for i := range recommendations {
		rec := &recommendations[i]
		project := projectByID(projects, rec.ProjectID)
		rec.MatchingSkills = matchOverlap(student.Profile.Skills, project.TechStack)
		rec.MatchingInterests = matchOverlap(student.Profile.Interests, append([]string{project.Title}, project.Tags...))
		rec.Reasoning = buildReasoning(rec, project, student.Profile, adjustment)
		rec.SupervisorSummary = supervisorSummary(project)
	}

	snapshot := uc.buildSnapshot(studentID, recommendations, projects, batch, recovery, started)

	if err := uc.repo.Snapshots().SupersedeActive(ctx, studentID); err != nil {
		return nil, goerr.Wrap(err, "failed to supersede previous snapshots", goerr.V(StudentIDKey, studentID))
	}
	if err := uc.repo.Snapshots().Create(ctx, snapshot); err != nil {
		return nil, goerr.Wrap(err, "failed to persist snapshot", goerr.V(StudentIDKey, studentID))
	}

	uc.cache.Set(studentID, snapshot)

	logging.From(ctx).Info("recommendations generated",
		"studentID", studentID,
		"snapshotID", snapshot.ID,
		"projects", snapshot.Metadata.ProjectsAnalyzed,
		"results", len(snapshot.Recommendations),
		"usedFallback", snapshot.Metadata.UsedFallback,
		"duration", snapshot.Metadata.ProcessingTime)

	return snapshot, nil
}

// embed runs the batch embedding call behind the resilience layer, degrading
// to the fallback backend when one is configured
func (uc *UseCases) embed(ctx context.Context, texts []string) (*model.EmbeddingBatch, *model.RecoveryResult, error) {
	cfg := resilience.DefaultRetryConfig()
	primary := func(ctx context.Context) (*model.EmbeddingBatch, error) {
		return uc.embedder.Embed(ctx, texts)
	}

	if uc.fallback == nil {
		return resilience.Execute(ctx, uc.executor, uc.embedder.Name(), "embed", cfg, primary)
	}

	fallback := func(ctx context.Context) (*model.EmbeddingBatch, error) {
		return uc.fallback.Embed(ctx, texts)
	}
	return resilience.ExecuteWithGracefulDegradation(ctx, uc.executor, uc.embedder.Name(), "embed", cfg, primary, fallback)
}

// score turns ranked indices into recommendation entries with the diversity
// boost and feedback adjustments folded into the final score. Entries keep
// rank order; the diversity boost rewards the first appearance of each
// specialization without reshuffling relevance order.
func (uc *UseCases) score(projects []*model.Project, ranked *rank.Result, adjustment *model.FeedbackAdjustment, opts model.RecommendationOptions) []model.ProjectRecommendation {
	recommendations := make([]model.ProjectRecommendation, 0, len(ranked.RankedIndices))
	seenSpecializations := map[string]bool{}

	for i, idx := range ranked.RankedIndices {
		project := projects[idx]
		rec := model.ProjectRecommendation{
			ProjectID:       project.ID,
			Rank:            i + 1,
			SimilarityScore: ranked.NormalizedScores[idx],
		}

		if opts.IncludeDiversityBoost && !seenSpecializations[project.Specialization] {
			rec.DiversityBoost = uc.tuning.DiversityBoost
		}
		seenSpecializations[project.Specialization] = true

		rec.FeedbackAdjustment = adjustment.ScoreAdjustment
		if adjustment.Boosts(project.Specialization) {
			rec.FeedbackAdjustment += uc.tuning.SpecializationAdjustment
		}
		if adjustment.Penalizes(project.Specialization) {
			rec.FeedbackAdjustment -= uc.tuning.SpecializationAdjustment
		}

		rec.FinalScore = clamp01(rec.SimilarityScore + rec.DiversityBoost + rec.FeedbackAdjustment)
		recommendations = append(recommendations, rec)
	}
	return recommendations
}

func (uc *UseCases) buildSnapshot(studentID types.StudentID, recommendations []model.ProjectRecommendation, projects []*model.Project, batch *model.EmbeddingBatch, recovery *model.RecoveryResult, started time.Time) *model.RecommendationSnapshot {
	now := uc.now()

	var total float64
	for _, rec := range recommendations {
		total += rec.FinalScore
	}
	average := 0.0
	if len(recommendations) > 0 {
		average = total / float64(len(recommendations))
	}

	method := "embedding-similarity"
	if recovery.UsedFallback {
		method = "degraded-feature-hash"
	}
	embeddingModel := batch.Model
	if embeddingModel == "" {
		embeddingModel = uc.embedder.Name()
	}

	return &model.RecommendationSnapshot{
		ID:              types.NewSnapshotID(),
		StudentID:       studentID,
		Status:          model.SnapshotActive,
		Recommendations: recommendations,
		AggregateReasoning: fmt.Sprintf("Ranked %d of %d candidate projects; average match score %.2f.",
			len(recommendations), len(projects), average),
		AverageScore: average,
		GeneratedAt:  now,
		ExpiresAt:    now.Add(uc.tuning.CacheTTL),
		Metadata: model.GenerationMetadata{
			Method:              method,
			UsedFallback:        recovery.UsedFallback,
			ProjectsAnalyzed:    len(projects),
			ProcessingTime:      now.Sub(started),
			EmbeddingModel:      embeddingModel,
			EmbeddingDimensions: batch.Dimensions,
		},
	}
}

// advance records a progress update, ignoring untracked generations
func (uc *UseCases) advance(ctx context.Context, requestID types.RequestID, stage types.ProgressStage, percent int, message string) {
	if requestID == "" {
		return
	}
	if err := uc.tracker.UpdateProgress(requestID, stage, percent, message); err != nil {
		logging.From(ctx).Warn("failed to update progress",
			"requestID", requestID, "stage", stage, "error", err)
	}
}

// matchOverlap returns the queries overlapping any target, case-insensitive,
// substring in either direction. "Python" matches "python3" and vice versa.
func matchOverlap(queries, targets []string) []string {
	var matched []string
	for _, q := range queries {
		lq := strings.ToLower(strings.TrimSpace(q))
		if lq == "" {
			continue
		}
		for _, t := range targets {
			lt := strings.ToLower(strings.TrimSpace(t))
			if lt == "" {
				continue
			}
			if strings.Contains(lt, lq) || strings.Contains(lq, lt) {
				matched = append(matched, q)
				break
			}
		}
	}
	return matched
}

// buildReasoning composes the per-project explanation from the score band,
// matched evidence, specialization preference and feedback signal
func buildReasoning(rec *model.ProjectRecommendation, project *model.Project, profile *model.StudentProfile, adjustment *model.FeedbackAdjustment) string {
	var parts []string

	switch {
	case rec.FinalScore > highCompatibility:
		parts = append(parts, "This project is highly compatible with your profile.")
	case rec.FinalScore > goodCompatibility:
		parts = append(parts, "This project shows good compatibility with your profile.")
	default:
		parts = append(parts, "This project could broaden your experience.")
	}

	if len(rec.MatchingSkills) > 0 {
		parts = append(parts, fmt.Sprintf("Your skills in %s match its technology stack.",
			strings.Join(rec.MatchingSkills, ", ")))
	}
	if len(rec.MatchingInterests) > 0 {
		parts = append(parts, fmt.Sprintf("Your interest in %s aligns with its focus.",
			strings.Join(rec.MatchingInterests, ", ")))
	}
	if containsFold(profile.PreferredSpecializations, project.Specialization) {
		parts = append(parts, fmt.Sprintf("It belongs to your preferred specialization, %s.", project.Specialization))
	}
	if adjustment.Boosts(project.Specialization) {
		parts = append(parts, fmt.Sprintf("You have responded positively to %s projects before.", project.Specialization))
	}
	if adjustment.Penalizes(project.Specialization) {
		parts = append(parts, fmt.Sprintf("Ranked lower based on your earlier feedback on %s projects.", project.Specialization))
	}
	if rec.DiversityBoost > 0 {
		parts = append(parts, fmt.Sprintf("Adds %s variety to your list.", project.Specialization))
	}

	return strings.Join(parts, " ")
}

func supervisorSummary(project *model.Project) string {
	if project.SupervisorName == "" {
		return ""
	}
	return fmt.Sprintf("Supervised by %s (%s).", project.SupervisorName, project.Specialization)
}

func projectByID(projects []*model.Project, id types.ProjectID) *model.Project {
	for _, p := range projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
