package public

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sngm3741/book-review-api/internal/interfaces/http/common"
	publicapp "github.com/sngm3741/book-review-api/internal/public/application"
	"github.com/sngm3741/book-review-api/internal/public/domain"
)

const (
	msgInvalidBody   = "Invalid request body"
	msgInternalError = "Internal Server Error"
	msgListFailed    = "Failed to fetch reviews"
)

// reviewListHandler は全レビューを新しい順に返す。
func (h *Handler) reviewListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
		defer cancel()

		reviews, err := h.reviews.List(ctx)
		if err != nil {
			h.logger.Error().Err(err).Msg("レビュー一覧の取得に失敗")
			common.WriteError(h.logger, w, http.StatusInternalServerError, msgListFailed)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, buildReviewListResponse(reviews))
	}
}

// reviewCreateHandler は匿名レビューを受け付ける。
// 入力検証は Service 側に任せ、ここでは JSON の読み取りとエラーの HTTP 変換のみ行う。
func (h *Handler) reviewCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
		defer cancel()

		r.Body = http.MaxBytesReader(w, r.Body, common.MaxReviewRequestBody)
		var req createReviewRequest
		if err := decodeSingleJSON(r.Body, &req); err != nil {
			h.logger.Debug().Err(err).Msg("リクエストボディの解析に失敗")
			common.WriteJSON(h.logger, w, http.StatusBadRequest, validationErrorResponse{
				Error:  msgInvalidBody,
				Errors: []domain.FieldError{},
			})
			return
		}

		review, err := h.reviews.Submit(ctx, publicapp.SubmitReviewCommand{
			Name:    stringField(req.Name),
			Rating:  numberField(req.Rating),
			Comment: stringField(req.Comment),
		})
		if err != nil {
			h.writeSubmitError(w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, createReviewResponse{
			Success: true,
			Review:  buildReviewResponse(*review),
		})
	}
}

// decodeSingleJSON は本文がちょうど 1 つの JSON 値であることを要求する。
func decodeSingleJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("リクエストボディに余分なデータがあります")
		}
		return err
	}
	return nil
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		h.logger.Debug().Strs("fields", validationErr.Fields()).Msg("レビューの入力が不正")
		common.WriteJSON(h.logger, w, http.StatusBadRequest, validationErrorResponse{
			Error:  validationErr.Error(),
			Errors: validationErr.Errors,
		})
		return
	}

	h.logger.Error().Err(err).Msg("レビューの保存に失敗")
	common.WriteError(h.logger, w, http.StatusInternalServerError, msgInternalError)
}
