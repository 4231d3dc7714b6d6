// Package firestore provides the Firestore-backed repository used in
// production deployments
package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/interfaces"
)

// ErrNotFound is the sentinel wrapped by every missing-entity error
var ErrNotFound = errors.New("not found")

type Firestore struct {
	client    *firestore.Client
	students  *studentRepository
	projects  *projectRepository
	snapshots *snapshotRepository
	feedback  *feedbackRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces every collection, used to isolate test runs
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.students.collectionPrefix = prefix
		f.projects.collectionPrefix = prefix
		f.snapshots.collectionPrefix = prefix
		f.feedback.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:    client,
		students:  newStudentRepository(client),
		projects:  newProjectRepository(client),
		snapshots: newSnapshotRepository(client),
		feedback:  newFeedbackRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Students() interfaces.StudentRepository {
	return f.students
}

func (f *Firestore) Projects() interfaces.ProjectRepository {
	return f.projects
}

func (f *Firestore) Snapshots() interfaces.SnapshotRepository {
	return f.snapshots
}

func (f *Firestore) Feedback() interfaces.FeedbackRepository {
	return f.feedback
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
