package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// NewReviewService wires the submission and listing use-cases.
func NewReviewService(cfg ReviewServiceConfig) ReviewService {
	svc := &reviewService{
		repo:          cfg.Repository,
		notifier:      cfg.Notifier,
		observer:      cfg.Observer,
		logger:        cfg.Logger,
		notifyTimeout: cfg.NotifyTimeout,
	}
	if svc.notifier == nil {
		svc.notifier = noopNotifier{}
	}
	if svc.observer == nil {
		svc.observer = noopObserver{}
	}
	if svc.notifyTimeout <= 0 {
		svc.notifyTimeout = defaultNotifyTimeout
	}
	return svc
}

type reviewService struct {
	repo          ReviewRepository
	notifier      Notifier
	observer      SubmissionObserver
	logger        zerolog.Logger
	notifyTimeout time.Duration
}

// Submit validates cmd, stores the review and then notifies maintainers.
// Once Insert succeeds the submission has succeeded; notification errors are
// only logged.
func (s *reviewService) Submit(ctx context.Context, cmd SubmitReviewCommand) (*domain.Review, error) {
	draft, err := validateSubmission(cmd)
	if err != nil {
		s.observer.ObserveSubmission(OutcomeInvalid)
		return nil, err
	}

	review, err := s.repo.Insert(ctx, draft)
	if err != nil {
		s.observer.ObserveSubmission(OutcomeStorageError)
		return nil, asStorageError("insert", err)
	}
	s.observer.ObserveSubmission(OutcomeCreated)

	s.notify(ctx, *review)
	return review, nil
}

// List returns every review, newest first.
func (s *reviewService) List(ctx context.Context) ([]domain.Review, error) {
	reviews, err := s.repo.ListRecent(ctx)
	if err != nil {
		return nil, asStorageError("list", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

// notify waits for delivery so a short-lived process does not exit mid-send,
// but runs detached from the request so a client disconnect does not abort it.
func (s *reviewService) notify(ctx context.Context, review domain.Review) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.safeNotify(ctx, review); err != nil {
		s.observer.ObserveNotification(NotificationFailed)
		s.logger.Warn().
			Err(err).
			Str("review_id", review.ID).
			Msg("review notification failed")
		return
	}
	s.observer.ObserveNotification(NotificationSent)
}

// safeNotify returns every failure, panics included, as a *domain.NotifyError.
func (s *reviewService) safeNotify(ctx context.Context, review domain.Review) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.NotifyError{Err: fmt.Errorf("notifier panic: %v", r)}
		}
	}()
	if err := s.notifier.Notify(ctx, review); err != nil {
		var notifyErr *domain.NotifyError
		if !errors.As(err, &notifyErr) {
			return &domain.NotifyError{Err: err}
		}
		return err
	}
	return nil
}

func asStorageError(op string, err error) error {
	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return domain.NewStorageError(op, err)
}
