package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// studentDoc is the Firestore document representation of model.Student
type studentDoc struct {
	ID                       types.StudentID `firestore:"ID"`
	Name                     string          `firestore:"Name"`
	Email                    string          `firestore:"Email"`
	Skills                   []string        `firestore:"Skills"`
	Interests                []string        `firestore:"Interests"`
	PreferredSpecializations []string        `firestore:"PreferredSpecializations"`
	AcademicYear             int             `firestore:"AcademicYear"`
	GPA                      float64         `firestore:"GPA"`
	CreatedAt                time.Time       `firestore:"CreatedAt"`
	UpdatedAt                time.Time       `firestore:"UpdatedAt"`
}

func toStudentDoc(s *model.Student) *studentDoc {
	doc := &studentDoc{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Profile != nil {
		doc.Skills = s.Profile.Skills
		doc.Interests = s.Profile.Interests
		doc.PreferredSpecializations = s.Profile.PreferredSpecializations
		doc.AcademicYear = s.Profile.AcademicYear
		doc.GPA = s.Profile.GPA
	}
	return doc
}

func fromStudentDoc(d *studentDoc) *model.Student {
	return &model.Student{
		ID:    d.ID,
		Name:  d.Name,
		Email: d.Email,
		Profile: &model.StudentProfile{
			Skills:                   d.Skills,
			Interests:                d.Interests,
			PreferredSpecializations: d.PreferredSpecializations,
			AcademicYear:             d.AcademicYear,
			GPA:                      d.GPA,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type studentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newStudentRepository(client *firestore.Client) *studentRepository {
	return &studentRepository{client: client}
}

func (r *studentRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "students")
}

func (r *studentRepository) GetWithProfile(ctx context.Context, id types.StudentID) (*model.Student, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "student not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get student", goerr.V("id", id))
	}

	var d studentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal student", goerr.V("id", id))
	}
	return fromStudentDoc(&d), nil
}

func (r *studentRepository) Put(ctx context.Context, student *model.Student) error {
	if student.ID == "" {
		return goerr.New("student ID is required")
	}

	stored := *student
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	if _, err := r.collection().Doc(string(student.ID)).Set(ctx, toStudentDoc(&stored)); err != nil {
		return goerr.Wrap(err, "failed to put student", goerr.V("id", student.ID))
	}
	return nil
}
