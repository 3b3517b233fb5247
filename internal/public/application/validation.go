package application

import (
	"errors"
	"fmt"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sngm3741/book-review-api/internal/public/domain"
)

const (
	msgNameRequired  = "Name is required"
	msgRatingRange   = "Rating must be a whole number between 1 and 5"
	msgCommentLength = "Comment must be at least 5 characters"
)

// reportOrder fixes the order field errors are reported in; ozzo returns a map.
var reportOrder = []string{"name", "rating", "comment"}

type reviewInput struct {
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func (in *reviewInput) validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name,
			validation.Required.Error(msgNameRequired),
		),
		validation.Field(&in.Rating,
			validation.Required.Error(msgRatingRange),
			validation.By(wholeNumber),
			validation.Min(float64(domain.MinRating)).Error(msgRatingRange),
			validation.Max(float64(domain.MaxRating)).Error(msgRatingRange),
		),
		validation.Field(&in.Comment,
			validation.Required.Error(msgCommentLength),
			validation.RuneLength(domain.MinCommentLength, 0).Error(msgCommentLength),
		),
	)
}

func wholeNumber(value interface{}) error {
	v, ok := value.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return errors.New(msgRatingRange)
	}
	return nil
}

// validateSubmission checks every rule and returns either a draft ready to
// store or a *domain.ValidationError listing all violations.
func validateSubmission(cmd SubmitReviewCommand) (domain.ReviewDraft, error) {
	in := reviewInput{
		Name:    strings.TrimSpace(cmd.Name),
		Rating:  cmd.Rating,
		Comment: cmd.Comment,
	}

	if err := in.validate(); err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return domain.ReviewDraft{}, fmt.Errorf("validate review: %w", err)
		}
		return domain.ReviewDraft{}, toValidationError(fieldErrs)
	}

	return domain.ReviewDraft{
		Name:    in.Name,
		Rating:  int(in.Rating),
		Comment: in.Comment,
	}, nil
}

func toValidationError(errs validation.Errors) *domain.ValidationError {
	fields := make([]domain.FieldError, 0, len(errs))
	for _, name := range reportOrder {
		if err, ok := errs[name]; ok && err != nil {
			fields = append(fields, domain.FieldError{Field: name, Message: err.Error()})
		}
	}
	return domain.NewValidationError(fields)
}
