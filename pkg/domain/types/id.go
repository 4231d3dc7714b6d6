package types

import "github.com/google/uuid"

// StudentID identifies a student in the surrounding platform
type StudentID string

func (id StudentID) String() string {
	return string(id)
}

// ProjectID identifies a candidate project
type ProjectID string

func (id ProjectID) String() string {
	return string(id)
}

// SupervisorID identifies the supervisor owning a project
type SupervisorID string

func (id SupervisorID) String() string {
	return string(id)
}

// SnapshotID identifies one immutable recommendation result set
type SnapshotID string

// NewSnapshotID generates a new UUID-based snapshot ID
func NewSnapshotID() SnapshotID {
	return SnapshotID(uuid.New().String())
}

func (id SnapshotID) String() string {
	return string(id)
}

// RequestID identifies a progress-tracked generation request
type RequestID string

// NewRequestID generates a new UUID-based request ID
func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}

func (id RequestID) String() string {
	return string(id)
}

// FeedbackID identifies a single feedback event
type FeedbackID string

// NewFeedbackID generates a new UUID-based feedback ID
func NewFeedbackID() FeedbackID {
	return FeedbackID(uuid.New().String())
}

func (id FeedbackID) String() string {
	return string(id)
}
