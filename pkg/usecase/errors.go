package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrStudentNotFound      = errors.New("student not found")
	ErrSnapshotNotFound     = errors.New("snapshot not found")
	ErrProjectNotInSnapshot = errors.New("project not part of snapshot")

	// Validation errors, rejected before any external call
	ErrProfileIncomplete   = errors.New("student profile is incomplete")
	ErrNoCandidateProjects = errors.New("no candidate projects match the filters")
	ErrInvalidOptions      = errors.New("invalid recommendation options")
	ErrInvalidFeedback     = errors.New("invalid feedback")
)

// Context keys for error values
const (
	StudentIDKey  = "student_id"
	SnapshotIDKey = "snapshot_id"
	ProjectIDKey  = "project_id"
	RequestIDKey  = "request_id"
)
