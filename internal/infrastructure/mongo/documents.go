package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// ReviewDocument は reviews コレクション上のレビュースキーマを表現する。
// 作成日時は既存データとの互換のため "date" フィールドに保存する。
type ReviewDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"date"`
}

// FailedNotificationDocument は通知失敗 1 件分の記録。
type FailedNotificationDocument struct {
	ID          primitive.ObjectID       `bson:"_id,omitempty"`
	Target      string                   `bson:"target"`
	Payload     FailedNotificationReview `bson:"payload"`
	Error       string                   `bson:"error"`
	Attempts    int                      `bson:"attempts"`
	Status      string                   `bson:"status"`
	CreatedAt   time.Time                `bson:"createdAt"`
	LastTriedAt time.Time                `bson:"lastTriedAt"`
}

// FailedNotificationReview embeds the review that could not be announced.
type FailedNotificationReview struct {
	ReviewID string `bson:"reviewId"`
	Name     string `bson:"name"`
	Rating   int    `bson:"rating"`
	Comment  string `bson:"comment"`
}

func newReviewDocument(draft domain.ReviewDraft, createdAt time.Time) ReviewDocument {
	return ReviewDocument{
		ID:        primitive.NewObjectID(),
		Name:      draft.Name,
		Rating:    draft.Rating,
		Comment:   draft.Comment,
		CreatedAt: createdAt,
	}
}

func mapReviewDocument(doc ReviewDocument) domain.Review {
	return domain.Review{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Rating:    doc.Rating,
		Comment:   doc.Comment,
		CreatedAt: doc.CreatedAt.UTC(),
	}
}
