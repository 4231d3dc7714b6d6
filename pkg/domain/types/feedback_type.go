package types

import "fmt"

// FeedbackType represents the kind of feedback a student gave on a
// recommended project
type FeedbackType string

const (
	FeedbackLike     FeedbackType = "like"
	FeedbackDislike  FeedbackType = "dislike"
	FeedbackBookmark FeedbackType = "bookmark"
	FeedbackView     FeedbackType = "view"
	FeedbackRating   FeedbackType = "rating"
	FeedbackDismiss  FeedbackType = "dismiss"
)

// AllFeedbackTypes returns all valid feedback types
func AllFeedbackTypes() []FeedbackType {
	return []FeedbackType{
		FeedbackLike,
		FeedbackDislike,
		FeedbackBookmark,
		FeedbackView,
		FeedbackRating,
		FeedbackDismiss,
	}
}

// IsValid checks if the feedback type is valid
func (t FeedbackType) IsValid() bool {
	switch t {
	case FeedbackLike,
		FeedbackDislike,
		FeedbackBookmark,
		FeedbackView,
		FeedbackRating,
		FeedbackDismiss:
		return true
	default:
		return false
	}
}

// RequiresRating reports whether events of this type must carry a rating value
func (t FeedbackType) RequiresRating() bool {
	return t == FeedbackRating
}

// String returns the string representation of the feedback type
func (t FeedbackType) String() string {
	return string(t)
}

// ParseFeedbackType parses a string into a FeedbackType
func ParseFeedbackType(s string) (FeedbackType, error) {
	t := FeedbackType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid feedback type: %s", s)
	}
	return t, nil
}

// ImplicitAction is the simplified interaction record forwarded to the
// feedback learner when explicit feedback is submitted
type ImplicitAction string

const (
	ActionBookmark ImplicitAction = "bookmark"
	ActionDismiss  ImplicitAction = "dismiss"
	ActionView     ImplicitAction = "view"
)

// ToImplicitAction maps a feedback type to its equivalent implicit action.
// Positive signals collapse to bookmark, negative ones to dismiss.
func (t FeedbackType) ToImplicitAction() ImplicitAction {
	switch t {
	case FeedbackLike, FeedbackBookmark, FeedbackRating:
		return ActionBookmark
	case FeedbackDislike, FeedbackDismiss:
		return ActionDismiss
	default:
		return ActionView
	}
}
