// Package notify implements the channels used to tell maintainers about new reviews.
package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// Notifier delivers one review announcement.
type Notifier interface {
	Notify(ctx context.Context, review domain.Review) error
}

// attemptsError carries how many delivery attempts were made before giving up.
type attemptsError struct {
	attempts int
	err      error
}

func (e *attemptsError) Error() string { return e.err.Error() }
func (e *attemptsError) Unwrap() error { return e.err }

// Attempts reports the delivery attempts behind err, or 1 when unknown.
func Attempts(err error) int {
	var ae *attemptsError
	if errors.As(err, &ae) && ae.attempts > 0 {
		return ae.attempts
	}
	return 1
}

// Multi fans a review out to every notifier and joins their errors.
type Multi []Notifier

// Notify calls every notifier even when an earlier one fails.
func (m Multi) Notify(ctx context.Context, review domain.Review) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, review); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier only logs the review. It is used when no channel is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, review domain.Review) error {
	n.logger.Info().
		Str("review_id", review.ID).
		Str("name", review.Name).
		Int("rating", review.Rating).
		Msg("new review received")
	return nil
}
