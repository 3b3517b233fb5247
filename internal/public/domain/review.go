package domain

import "time"

// Review represents a persisted, publicly visible book review.
type Review struct {
	ID        string
	Name      string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// ReviewDraft is a validated review that has not been stored yet.
// ID と CreatedAt はストア側で採番されるため持たない。
type ReviewDraft struct {
	Name    string
	Rating  int
	Comment string
}

const (
	// MinRating and MaxRating bound the star rating.
	MinRating = 1
	MaxRating = 5
	// MinCommentLength is counted in characters, not bytes.
	MinCommentLength = 5
)
