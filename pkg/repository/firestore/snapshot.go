package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// recommendationDoc is one ranked entry inside a snapshot document
type recommendationDoc struct {
	ProjectID          types.ProjectID `firestore:"ProjectID"`
	Rank               int             `firestore:"Rank"`
	SimilarityScore    float64         `firestore:"SimilarityScore"`
	DiversityBoost     float64         `firestore:"DiversityBoost"`
	FeedbackAdjustment float64         `firestore:"FeedbackAdjustment"`
	FinalScore         float64         `firestore:"FinalScore"`
	MatchingSkills     []string        `firestore:"MatchingSkills"`
	MatchingInterests  []string        `firestore:"MatchingInterests"`
	Reasoning          string          `firestore:"Reasoning"`
	SupervisorSummary  string          `firestore:"SupervisorSummary"`
}

// snapshotDoc is the Firestore document representation of
// model.RecommendationSnapshot
type snapshotDoc struct {
	ID                  types.SnapshotID    `firestore:"ID"`
	StudentID           types.StudentID     `firestore:"StudentID"`
	Status              string              `firestore:"Status"`
	Recommendations     []recommendationDoc `firestore:"Recommendations"`
	AggregateReasoning  string              `firestore:"AggregateReasoning"`
	AverageScore        float64             `firestore:"AverageScore"`
	GeneratedAt         time.Time           `firestore:"GeneratedAt"`
	ExpiresAt           time.Time           `firestore:"ExpiresAt"`
	Method              string              `firestore:"Method"`
	UsedFallback        bool                `firestore:"UsedFallback"`
	ProjectsAnalyzed    int                 `firestore:"ProjectsAnalyzed"`
	ProcessingTimeMS    int64               `firestore:"ProcessingTimeMS"`
	EmbeddingModel      string              `firestore:"EmbeddingModel"`
	EmbeddingDimensions int                 `firestore:"EmbeddingDimensions"`
}

func toSnapshotDoc(s *model.RecommendationSnapshot) *snapshotDoc {
	doc := &snapshotDoc{
		ID:                  s.ID,
		StudentID:           s.StudentID,
		Status:              string(s.Status),
		AggregateReasoning:  s.AggregateReasoning,
		AverageScore:        s.AverageScore,
		GeneratedAt:         s.GeneratedAt,
		ExpiresAt:           s.ExpiresAt,
		Method:              s.Metadata.Method,
		UsedFallback:        s.Metadata.UsedFallback,
		ProjectsAnalyzed:    s.Metadata.ProjectsAnalyzed,
		ProcessingTimeMS:    s.Metadata.ProcessingTime.Milliseconds(),
		EmbeddingModel:      s.Metadata.EmbeddingModel,
		EmbeddingDimensions: s.Metadata.EmbeddingDimensions,
	}
	for _, rec := range s.Recommendations {
		doc.Recommendations = append(doc.Recommendations, recommendationDoc(rec))
	}
	return doc
}

func fromSnapshotDoc(d *snapshotDoc) *model.RecommendationSnapshot {
	s := &model.RecommendationSnapshot{
		ID:                 d.ID,
		StudentID:          d.StudentID,
		Status:             model.SnapshotStatus(d.Status),
		AggregateReasoning: d.AggregateReasoning,
		AverageScore:       d.AverageScore,
		GeneratedAt:        d.GeneratedAt,
		ExpiresAt:          d.ExpiresAt,
		Metadata: model.GenerationMetadata{
			Method:              d.Method,
			UsedFallback:        d.UsedFallback,
			ProjectsAnalyzed:    d.ProjectsAnalyzed,
			ProcessingTime:      time.Duration(d.ProcessingTimeMS) * time.Millisecond,
			EmbeddingModel:      d.EmbeddingModel,
			EmbeddingDimensions: d.EmbeddingDimensions,
		},
	}
	for _, rec := range d.Recommendations {
		s.Recommendations = append(s.Recommendations, model.ProjectRecommendation(rec))
	}
	return s
}

type snapshotRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSnapshotRepository(client *firestore.Client) *snapshotRepository {
	return &snapshotRepository{client: client}
}

func (r *snapshotRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "recommendation_snapshots")
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *model.RecommendationSnapshot) error {
	if snapshot.ID == "" {
		return goerr.New("snapshot ID is required")
	}
	if snapshot.StudentID == "" {
		return goerr.New("snapshot student ID is required")
	}

	// Create, not Set: snapshots are immutable once written
	if _, err := r.collection().Doc(string(snapshot.ID)).Create(ctx, toSnapshotDoc(snapshot)); err != nil {
		return goerr.Wrap(err, "failed to create snapshot", goerr.V("id", snapshot.ID))
	}
	return nil
}

func (r *snapshotRepository) Get(ctx context.Context, id types.SnapshotID) (*model.RecommendationSnapshot, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "snapshot not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get snapshot", goerr.V("id", id))
	}

	var d snapshotDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal snapshot", goerr.V("id", id))
	}
	return fromSnapshotDoc(&d), nil
}

// SupersedeActive flips all active snapshots for the student to SUPERSEDED.
// The status flip is monotonic, so last-writer-wins across concurrent
// generations is safe without a transaction.
func (r *snapshotRepository) SupersedeActive(ctx context.Context, studentID types.StudentID) error {
	iter := r.collection().
		Where("StudentID", "==", string(studentID)).
		Where("Status", "==", string(model.SnapshotActive)).
		Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to query active snapshots", goerr.V("studentID", studentID))
		}

		if _, err := bw.Update(doc.Ref, []firestore.Update{
			{Path: "Status", Value: string(model.SnapshotSuperseded)},
		}); err != nil {
			return goerr.Wrap(err, "failed to queue snapshot update", goerr.V("doc", doc.Ref.ID))
		}
	}
	bw.End()
	return nil
}

func (r *snapshotRepository) ListByStudent(ctx context.Context, studentID types.StudentID) ([]*model.RecommendationSnapshot, error) {
	iter := r.collection().Where("StudentID", "==", string(studentID)).Documents(ctx)
	defer iter.Stop()

	var result []*model.RecommendationSnapshot
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list snapshots", goerr.V("studentID", studentID))
		}

		var d snapshotDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal snapshot", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, fromSnapshotDoc(&d))
	}

	// Sorted client-side to avoid a composite index on StudentID+GeneratedAt
	sort.Slice(result, func(i, j int) bool {
		return result[i].GeneratedAt.After(result[j].GeneratedAt)
	})
	return result, nil
}
