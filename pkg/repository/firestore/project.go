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

// projectDoc is the Firestore document representation of model.Project
type projectDoc struct {
	ID             types.ProjectID    `firestore:"ID"`
	Title          string             `firestore:"Title"`
	Abstract       string             `firestore:"Abstract"`
	Specialization string             `firestore:"Specialization"`
	TechStack      []string           `firestore:"TechStack"`
	Tags           []string           `firestore:"Tags"`
	Difficulty     string             `firestore:"Difficulty"`
	SupervisorID   types.SupervisorID `firestore:"SupervisorID"`
	SupervisorName string             `firestore:"SupervisorName"`
	Approved       bool               `firestore:"Approved"`
	CreatedAt      time.Time          `firestore:"CreatedAt"`
	UpdatedAt      time.Time          `firestore:"UpdatedAt"`
}

func toProjectDoc(p *model.Project) *projectDoc {
	return &projectDoc{
		ID:             p.ID,
		Title:          p.Title,
		Abstract:       p.Abstract,
		Specialization: p.Specialization,
		TechStack:      p.TechStack,
		Tags:           p.Tags,
		Difficulty:     p.Difficulty.String(),
		SupervisorID:   p.SupervisorID,
		SupervisorName: p.SupervisorName,
		Approved:       p.Approved,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func fromProjectDoc(d *projectDoc) *model.Project {
	return &model.Project{
		ID:             d.ID,
		Title:          d.Title,
		Abstract:       d.Abstract,
		Specialization: d.Specialization,
		TechStack:      d.TechStack,
		Tags:           d.Tags,
		Difficulty:     types.Difficulty(d.Difficulty),
		SupervisorID:   d.SupervisorID,
		SupervisorName: d.SupervisorName,
		Approved:       d.Approved,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type projectRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProjectRepository(client *firestore.Client) *projectRepository {
	return &projectRepository{client: client}
}

func (r *projectRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "projects")
}

// FindApproved queries on approval status only; specialization and
// difficulty constraints are applied client-side so no composite index is
// required. Candidate counts are small enough for that.
func (r *projectRepository) FindApproved(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error) {
	iter := r.collection().Where("Approved", "==", true).Documents(ctx)
	defer iter.Stop()

	var result []*model.Project
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query approved projects")
		}

		var d projectDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("doc", doc.Ref.ID))
		}

		p := fromProjectDoc(&d)
		if filter.Matches(p) {
			result = append(result, p)
		}
	}

	// Stable candidate order for deterministic ranking
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("id", id))
	}

	var d projectDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("id", id))
	}
	return fromProjectDoc(&d), nil
}

func (r *projectRepository) Put(ctx context.Context, project *model.Project) error {
	if project.ID == "" {
		return goerr.New("project ID is required")
	}

	stored := *project
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	if _, err := r.collection().Doc(string(project.ID)).Set(ctx, toProjectDoc(&stored)); err != nil {
		return goerr.Wrap(err, "failed to put project", goerr.V("id", project.ID))
	}
	return nil
}
