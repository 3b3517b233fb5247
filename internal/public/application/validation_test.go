package application

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

func requireValidationError(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	var valErr *domain.ValidationError
	require.True(t, errors.As(err, &valErr), "expected ValidationError, got %v", err)
	return valErr
}

func TestValidateSubmission_Valid(t *testing.T) {
	draft, err := validateSubmission(SubmitReviewCommand{Name: "  Ann  ", Rating: 4, Comment: "Nice book"})

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewDraft{Name: "Ann", Rating: 4, Comment: "Nice book"}, draft)
}

func TestValidateSubmission_SingleField(t *testing.T) {
	tests := []struct {
		name    string
		cmd     SubmitReviewCommand
		field   string
		message string
	}{
		{"empty name", SubmitReviewCommand{Name: "", Rating: 3, Comment: "Good stuff"}, "name", msgNameRequired},
		{"blank name", SubmitReviewCommand{Name: "   \t", Rating: 3, Comment: "Good stuff"}, "name", msgNameRequired},
		{"rating zero", SubmitReviewCommand{Name: "Ann", Rating: 0, Comment: "Good stuff"}, "rating", msgRatingRange},
		{"rating six", SubmitReviewCommand{Name: "Ann", Rating: 6, Comment: "Good stuff"}, "rating", msgRatingRange},
		{"rating negative", SubmitReviewCommand{Name: "Ann", Rating: -1, Comment: "Good stuff"}, "rating", msgRatingRange},
		{"rating fractional", SubmitReviewCommand{Name: "Ann", Rating: 4.5, Comment: "Good stuff"}, "rating", msgRatingRange},
		{"rating NaN", SubmitReviewCommand{Name: "Ann", Rating: math.NaN(), Comment: "Good stuff"}, "rating", msgRatingRange},
		{"empty comment", SubmitReviewCommand{Name: "Ann", Rating: 3, Comment: ""}, "comment", msgCommentLength},
		{"comment of four", SubmitReviewCommand{Name: "Ann", Rating: 3, Comment: "abcd"}, "comment", msgCommentLength},
		{"multibyte comment of four", SubmitReviewCommand{Name: "Ann", Rating: 3, Comment: "素晴らし"}, "comment", msgCommentLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateSubmission(tt.cmd)

			valErr := requireValidationError(t, err)
			require.Len(t, valErr.Errors, 1)
			assert.Equal(t, tt.field, valErr.Errors[0].Field)
			assert.Equal(t, tt.message, valErr.Errors[0].Message)
			assert.Equal(t, tt.message, valErr.Error())
		})
	}
}

func TestValidateSubmission_Boundaries(t *testing.T) {
	for _, rating := range []float64{1, 2, 3, 4, 5} {
		_, err := validateSubmission(SubmitReviewCommand{Name: "Ann", Rating: rating, Comment: "12345"})
		assert.NoError(t, err, "rating %v", rating)
	}

	_, err := validateSubmission(SubmitReviewCommand{Name: "Ann", Rating: 5, Comment: "素晴らしい"})
	assert.NoError(t, err, "five characters counted as runes")

	_, err = validateSubmission(SubmitReviewCommand{Name: "Ann", Rating: 5, Comment: strings.Repeat("x", 10000)})
	assert.NoError(t, err, "no maximum length")
}

func TestValidateSubmission_AllFieldsReportedInOrder(t *testing.T) {
	_, err := validateSubmission(SubmitReviewCommand{Name: " ", Rating: 9, Comment: "bad"})

	valErr := requireValidationError(t, err)
	assert.Equal(t, []string{"name", "rating", "comment"}, valErr.Fields())
	assert.Equal(t, msgNameRequired+", "+msgRatingRange+", "+msgCommentLength, valErr.Error())
}

func TestValidateSubmission_TwoFields(t *testing.T) {
	_, err := validateSubmission(SubmitReviewCommand{Name: "Ann", Rating: 0, Comment: "no"})

	valErr := requireValidationError(t, err)
	assert.Equal(t, []string{"rating", "comment"}, valErr.Fields())
}
