package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// ReviewRepository abstracts persistence of reviews.
// ReviewRepository はレビューの永続化を担うポート。書き込みはレコード単位でアトミック。
type ReviewRepository interface {
	Insert(ctx context.Context, draft domain.ReviewDraft) (*domain.Review, error)
	ListRecent(ctx context.Context) ([]domain.Review, error)
}

// Notifier is the side channel used to tell maintainers about a new review.
type Notifier interface {
	Notify(ctx context.Context, review domain.Review) error
}

// SubmissionObserver receives outcome events for metrics.
type SubmissionObserver interface {
	ObserveSubmission(outcome string)
	ObserveNotification(outcome string)
}

// Submission and notification outcomes reported to SubmissionObserver.
const (
	OutcomeCreated      = "created"
	OutcomeInvalid      = "invalid"
	OutcomeStorageError = "storage_error"

	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// ReviewService describes the public review use-cases.
type ReviewService interface {
	Submit(ctx context.Context, cmd SubmitReviewCommand) (*domain.Review, error)
	List(ctx context.Context) ([]domain.Review, error)
}

// SubmitReviewCommand captures anonymous input as received.
// Rating stays a float so fractional values can be rejected by validation.
type SubmitReviewCommand struct {
	Name    string
	Rating  float64
	Comment string
}

// ReviewServiceConfig defines dependencies required by the review service.
type ReviewServiceConfig struct {
	Repository    ReviewRepository
	Notifier      Notifier
	Observer      SubmissionObserver
	Logger        zerolog.Logger
	NotifyTimeout time.Duration
}

const defaultNotifyTimeout = 10 * time.Second

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, domain.Review) error { return nil }

type noopObserver struct{}

func (noopObserver) ObserveSubmission(string)   {}
func (noopObserver) ObserveNotification(string) {}
