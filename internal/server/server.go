package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sngm3741/book-review-api/internal/config"
	commonhttp "github.com/sngm3741/book-review-api/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/book-review-api/internal/interfaces/http/public"
	"github.com/sngm3741/book-review-api/internal/logger"
	"github.com/sngm3741/book-review-api/internal/metrics"
	publicapp "github.com/sngm3741/book-review-api/internal/public/application"
)

// Pinger reports whether the review store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the already-initialised collaborators the server wires together.
type Dependencies struct {
	Logger  zerolog.Logger
	Store   Pinger
	Reviews publicapp.ReviewService
	Metrics *metrics.Recorder
	// OnShutdown releases infrastructure such as the Mongo client after the
	// HTTP server has stopped.
	OnShutdown func(ctx context.Context) error
}

// Server は HTTP サーバーのライフサイクルを管理し、ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         zerolog.Logger
	store          Pinger
	reviews        publicapp.ReviewService
	metrics        *metrics.Recorder
	onShutdown     func(ctx context.Context) error
	addr           string
	allowedOrigins []string
	requestTimeout time.Duration
}

// New は Config と依存を受け取り Server を返す。
func New(cfg config.Config, deps Dependencies) *Server {
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.New()
	}
	return &Server{
		logger:         deps.Logger,
		store:          deps.Store,
		reviews:        deps.Reviews,
		metrics:        rec,
		onShutdown:     deps.OnShutdown,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		requestTimeout: cfg.RequestTimeout,
	}
}

// Routes builds the router with middleware, operational endpoints and the
// public review API mounted at both / and /api.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(s.metrics.Middleware)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         s.logger,
		Reviews:        s.reviews,
		RequestTimeout: s.requestTimeout,
	})
	publicHandler.Register(router)
	router.Route("/api", publicHandler.Register)

	return router
}

// Run はHTTPサーバーを起動し、シグナル受信または異常終了まで待機する。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("HTTP サーバー起動")
		errChan <- httpServer.ListenAndServe()
	}()

	return s.waitForShutdown(httpServer, errChan)
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler はストアへの疎通確認のみを行う。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if s.store != nil {
			if err := s.store.Ping(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("ヘルスチェック失敗")
				commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
				})
				return
			}
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// shutdown は外部リソースをタイムアウト付きで解放する。
func (s *Server) shutdown(ctx context.Context) {
	if s.onShutdown == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.onShutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("リソース解放時にエラー")
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func (s *Server) waitForShutdown(httpServer *http.Server, errChan <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("サーバーが異常終了")
			runErr = err
		}
	case sig := <-sigChan:
		s.logger.Info().Str("signal", sig.String()).Msg("シグナルを受信。サーバー停止処理を開始します")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("サーバー停止時にエラー")
		}
	}

	s.shutdown(context.Background())
	return runErr
}
