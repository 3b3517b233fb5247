package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// recordTimeout bounds the write of one failure record.
const recordTimeout = 5 * time.Second

// FailureStore persists notifications that could not be delivered.
type FailureStore interface {
	RecordFailure(ctx context.Context, review domain.Review, cause error, attempts int) error
}

// Recording wraps a Notifier and stores its failures for later follow-up.
// The original error is always returned unchanged. The record is written on
// its own context so a delivery that failed by timing out is still stored.
type Recording struct {
	next   Notifier
	store  FailureStore
	logger zerolog.Logger
}

// NewRecording decorates next with failure persistence.
func NewRecording(next Notifier, store FailureStore, logger zerolog.Logger) *Recording {
	return &Recording{next: next, store: store, logger: logger}
}

func (r *Recording) Notify(ctx context.Context, review domain.Review) error {
	err := r.next.Notify(ctx, review)
	if err == nil || r.store == nil {
		return err
	}

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if recErr := r.store.RecordFailure(recCtx, review, err, Attempts(err)); recErr != nil {
		r.logger.Error().
			Err(recErr).
			Str("review_id", review.ID).
			Msg("failed_notifications への保存に失敗")
	}
	return err
}
