package public

import (
	"github.com/sngm3741/book-review-api/internal/interfaces/http/common"
	"github.com/sngm3741/book-review-api/internal/public/domain"
)

// createReviewRequest keeps every field loosely typed so that wrong JSON types
// become field errors instead of a decode failure.
type createReviewRequest struct {
	Name    any `json:"name"`
	Rating  any `json:"rating"`
	Comment any `json:"comment"`
}

type reviewResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

type createReviewResponse struct {
	Success bool           `json:"success"`
	Review  reviewResponse `json:"review"`
}

type validationErrorResponse struct {
	Error  string              `json:"error"`
	Errors []domain.FieldError `json:"errors"`
}

// buildReviewResponse はドメインモデルを API の表示形式に変換する。
func buildReviewResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		ID:      review.ID,
		Name:    review.Name,
		Rating:  review.Rating,
		Comment: review.Comment,
		Date:    review.CreatedAt.UTC().Format(common.ReviewDateLayout),
	}
}

func buildReviewListResponse(reviews []domain.Review) []reviewResponse {
	items := make([]reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, buildReviewResponse(review))
	}
	return items
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

// numberField returns 0 for anything that is not a JSON number, which the
// rating rule rejects.
func numberField(v any) float64 {
	f, _ := v.(float64)
	return f
}
