package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

const (
	failedNotificationTarget = "review_notification"
	failedStatusPending      = "pending"
)

// FailedNotificationRepository は通知に失敗したレビューを後追い用に保存する。
type FailedNotificationRepository struct {
	failures *mongo.Collection
	now      func() time.Time
}

// NewFailedNotificationRepository binds the repository to the given collection.
func NewFailedNotificationRepository(db *mongo.Database, collection string) *FailedNotificationRepository {
	return &FailedNotificationRepository{
		failures: db.Collection(collection),
		now:      time.Now,
	}
}

// RecordFailure stores one pending failure record.
func (r *FailedNotificationRepository) RecordFailure(ctx context.Context, review domain.Review, cause error, attempts int) error {
	_, err := r.failures.InsertOne(ctx, newFailedNotificationDocument(review, cause, attempts, r.now().UTC()))
	return err
}

// EnsureIndexes creates the status/createdAt index used to sweep pending failures.
func (r *FailedNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.failures.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_failed_status_created"),
	})
	return err
}

func newFailedNotificationDocument(review domain.Review, cause error, attempts int, now time.Time) FailedNotificationDocument {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return FailedNotificationDocument{
		Target: failedNotificationTarget,
		Payload: FailedNotificationReview{
			ReviewID: review.ID,
			Name:     review.Name,
			Rating:   review.Rating,
			Comment:  review.Comment,
		},
		Error:       message,
		Attempts:    attempts,
		Status:      failedStatusPending,
		CreatedAt:   now,
		LastTriedAt: now,
	}
}
