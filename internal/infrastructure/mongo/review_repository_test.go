package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// newTestDatabase connects to MONGO_TEST_URI and returns a throwaway database.
func newTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("book_reviews_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestReviewRepository_InsertAndList(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewReviewRepository(db, "reviews")
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	empty, err := repo.ListRecent(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	var inserted []*domain.Review
	for _, name := range []string{"A", "B", "C"} {
		review, err := repo.Insert(ctx, domain.ReviewDraft{Name: name, Rating: 4, Comment: "Nice book"})
		require.NoError(t, err)
		inserted = append(inserted, review)
	}

	reviews, err := repo.ListRecent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Review{*inserted[2], *inserted[1], *inserted[0]}, reviews)
}

func TestReviewRepository_RoundTripPrecision(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewReviewRepository(db, "reviews")
	ctx := context.Background()

	review, err := repo.Insert(ctx, domain.ReviewDraft{Name: "Ann", Rating: 5, Comment: "Superb"})
	require.NoError(t, err)

	reviews, err := repo.ListRecent(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, *review, reviews[0])
}

func TestReviewRepository_InsertWrapsStorageError(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewReviewRepository(db, "reviews")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Insert(ctx, domain.ReviewDraft{Name: "Ann", Rating: 5, Comment: "Superb"})

	var storageErr *domain.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "insert", storageErr.Op)
}

func TestFailedNotificationRepository_RecordFailure(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewFailedNotificationRepository(db, "failed_notifications")
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	err := repo.RecordFailure(ctx, domain.Review{ID: "abc", Name: "Ann", Rating: 4, Comment: "Nice book"}, errors.New("smtp down"), 1)
	require.NoError(t, err)

	var doc FailedNotificationDocument
	require.NoError(t, db.Collection("failed_notifications").FindOne(ctx, map[string]any{"payload.reviewId": "abc"}).Decode(&doc))
	assert.Equal(t, "smtp down", doc.Error)
	assert.Equal(t, failedStatusPending, doc.Status)
}
