// Package memory provides an in-process review store for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

type entry struct {
	review domain.Review
	seq    uint64
}

// ReviewRepository keeps reviews in memory, guarded by a mutex.
type ReviewRepository struct {
	mu      sync.RWMutex
	entries []entry
	nextSeq uint64
	now     func() time.Time
}

// NewReviewRepository creates an empty store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{now: time.Now}
}

// Insert assigns an ID and creation time and stores the review.
func (r *ReviewRepository) Insert(ctx context.Context, draft domain.ReviewDraft) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("insert", err)
	}

	review := domain.Review{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Rating:    draft.Rating,
		Comment:   draft.Comment,
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}

	r.mu.Lock()
	r.nextSeq++
	r.entries = append(r.entries, entry{review: review, seq: r.nextSeq})
	r.mu.Unlock()

	return &review, nil
}

// ListRecent returns a snapshot sorted by creation time, newest insert first on ties.
func (r *ReviewRepository) ListRecent(ctx context.Context) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("list", err)
	}

	r.mu.RLock()
	snapshot := make([]entry, len(r.entries))
	copy(snapshot, r.entries)
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		a, b := snapshot[i], snapshot[j]
		if !a.review.CreatedAt.Equal(b.review.CreatedAt) {
			return a.review.CreatedAt.After(b.review.CreatedAt)
		}
		return a.seq > b.seq
	})

	reviews := make([]domain.Review, 0, len(snapshot))
	for _, e := range snapshot {
		reviews = append(reviews, e.review)
	}
	return reviews, nil
}

// Ping always succeeds; it lets the health check treat both stores alike.
func (r *ReviewRepository) Ping(context.Context) error {
	return nil
}
