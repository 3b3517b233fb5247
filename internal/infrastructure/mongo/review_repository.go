package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// recentSort orders by creation time, newest insert first on ties.
var recentSort = bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}

// ReviewRepository は reviews コレクションを扱う実装リポジトリ。
type ReviewRepository struct {
	client  *mongo.Client
	reviews *mongo.Collection
	now     func() time.Time
}

// NewReviewRepository binds the repository to the given collection.
func NewReviewRepository(db *mongo.Database, reviewCollection string) *ReviewRepository {
	return &ReviewRepository{
		client:  db.Client(),
		reviews: db.Collection(reviewCollection),
		now:     time.Now,
	}
}

// Insert は ID と作成日時を採番して 1 件挿入する。
// BSON の日時はミリ秒精度のため、返却値も丸めて一覧取得結果と一致させる。
func (r *ReviewRepository) Insert(ctx context.Context, draft domain.ReviewDraft) (*domain.Review, error) {
	doc := newReviewDocument(draft, r.now().UTC().Truncate(time.Millisecond))

	if _, err := r.reviews.InsertOne(ctx, doc); err != nil {
		return nil, domain.NewStorageError("insert", err)
	}

	review := mapReviewDocument(doc)
	return &review, nil
}

// ListRecent は全件を新しい順に読み出す。キャッシュは持たない。
func (r *ReviewRepository) ListRecent(ctx context.Context) ([]domain.Review, error) {
	cursor, err := r.reviews.Find(ctx, bson.D{}, options.Find().SetSort(recentSort))
	if err != nil {
		return nil, domain.NewStorageError("list", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]domain.Review, 0)
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, domain.NewStorageError("list", err)
		}
		reviews = append(reviews, mapReviewDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewStorageError("list", err)
	}
	return reviews, nil
}

// EnsureIndexes creates the index backing ListRecent.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    recentSort,
		Options: options.Index().SetName("idx_review_date"),
	})
	return err
}

// Ping checks connectivity to the primary.
func (r *ReviewRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
