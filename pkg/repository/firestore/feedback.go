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
)

// feedbackDoc is the Firestore document representation of model.FeedbackEvent
type feedbackDoc struct {
	ID             types.FeedbackID `firestore:"ID"`
	SnapshotID     types.SnapshotID `firestore:"SnapshotID"`
	StudentID      types.StudentID  `firestore:"StudentID"`
	ProjectID      types.ProjectID  `firestore:"ProjectID"`
	Specialization string           `firestore:"Specialization"`
	Type           string           `firestore:"Type"`
	Action         string           `firestore:"Action"`
	Rating         *float64         `firestore:"Rating"`
	Comment        string           `firestore:"Comment"`
	CreatedAt      time.Time        `firestore:"CreatedAt"`
}

func toFeedbackDoc(e *model.FeedbackEvent) *feedbackDoc {
	return &feedbackDoc{
		ID:             e.ID,
		SnapshotID:     e.SnapshotID,
		StudentID:      e.StudentID,
		ProjectID:      e.ProjectID,
		Specialization: e.Specialization,
		Type:           string(e.Type),
		Action:         string(e.Action),
		Rating:         e.Rating,
		Comment:        e.Comment,
		CreatedAt:      e.CreatedAt,
	}
}

func fromFeedbackDoc(d *feedbackDoc) *model.FeedbackEvent {
	return &model.FeedbackEvent{
		ID:             d.ID,
		SnapshotID:     d.SnapshotID,
		StudentID:      d.StudentID,
		ProjectID:      d.ProjectID,
		Specialization: d.Specialization,
		Type:           types.FeedbackType(d.Type),
		Action:         types.ImplicitAction(d.Action),
		Rating:         d.Rating,
		Comment:        d.Comment,
		CreatedAt:      d.CreatedAt,
	}
}

type feedbackRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFeedbackRepository(client *firestore.Client) *feedbackRepository {
	return &feedbackRepository{client: client}
}

func (r *feedbackRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "feedback_events")
}

func (r *feedbackRepository) Append(ctx context.Context, event *model.FeedbackEvent) error {
	if err := event.Validate(); err != nil {
		return goerr.Wrap(err, "invalid feedback event")
	}

	stored := *event
	if stored.ID == "" {
		stored.ID = types.NewFeedbackID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection().Doc(string(stored.ID)).Create(ctx, toFeedbackDoc(&stored)); err != nil {
		return goerr.Wrap(err, "failed to append feedback", goerr.V("id", stored.ID))
	}
	return nil
}

func (r *feedbackRepository) AllForStudent(ctx context.Context, studentID types.StudentID) ([]*model.FeedbackEvent, error) {
	iter := r.collection().Where("StudentID", "==", string(studentID)).Documents(ctx)
	defer iter.Stop()

	var result []*model.FeedbackEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list feedback", goerr.V("studentID", studentID))
		}

		var d feedbackDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal feedback", goerr.V("doc", doc.Ref.ID))
		}
		result = append(result, fromFeedbackDoc(&d))
	}

	// Oldest first, matching append order
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
