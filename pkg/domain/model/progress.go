package model

import (
	"time"

	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// ProgressRecord is the pollable state of one generation request
type ProgressRecord struct {
	RequestID types.RequestID
	StudentID types.StudentID
	Stage     types.ProgressStage
	Percent   int
	Message   string
	Error     string
	StartedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal reports whether the request has finished, successfully or not
func (r *ProgressRecord) IsTerminal() bool {
	return r.Stage.IsTerminal()
}

// QueueStatus describes where a request sits among currently active requests
type QueueStatus struct {
	Position       int
	ActiveRequests int
	EstimatedWait  time.Duration
}

// SystemLoad is an aggregate view over the progress tracker
type SystemLoad struct {
	ActiveRequests    int
	CompletedRequests int
	FailedRequests    int
}

// ProgressReport bundles everything a polling caller needs in one response
type ProgressReport struct {
	Progress    *ProgressRecord
	QueueStatus *QueueStatus
	SystemLoad  *SystemLoad
}
