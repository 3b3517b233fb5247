package public

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	publicapp "github.com/sngm3741/book-review-api/internal/public/application"
)

const defaultRequestTimeout = 5 * time.Second

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         zerolog.Logger
	reviews        publicapp.ReviewService
	requestTimeout time.Duration
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         zerolog.Logger
	Reviews        publicapp.ReviewService
	RequestTimeout time.Duration
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Handler{
		logger:         cfg.Logger,
		reviews:        cfg.Reviews,
		requestTimeout: timeout,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reviews", h.reviewListHandler())
	r.Post("/reviews", h.reviewCreateHandler())
}
