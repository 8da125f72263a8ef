package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
	"github.com/rocketscienceinc/xo-engine/internal/pkg"
)

const (
	shutdownTimeout = 5 * time.Second
	maxBodySize     = 4096
)

type sessionUseCase interface {
	CreateSession(ctx context.Context, settings entity.Settings) (entity.Snapshot, error)
	GetState(ctx context.Context, id string) (entity.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error

	Start(ctx context.Context, id string, settings *entity.Settings) (entity.Snapshot, error)
	ApplyMove(ctx context.Context, id string, cell int) (entity.Snapshot, error)
	AutoTurn(ctx context.Context, id string) (entity.Snapshot, error)
	Undo(ctx context.Context, id string) (entity.Snapshot, error)
	Reset(ctx context.Context, id string) (entity.Snapshot, error)
	Stop(ctx context.Context, id string) (entity.Snapshot, error)
}

type Server struct {
	logger   *slog.Logger
	sessions sessionUseCase
	router   chi.Router
}

func New(logger *slog.Logger, sessions sessionUseCase) *Server {
	server := &Server{
		logger:   logger,
		sessions: sessions,
	}

	ping := NewPingHandler()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(server.logRequest)
	router.Use(limitBody)

	router.Get("/ping", ping.PingHandler)
	router.Post("/sessions", server.createSession)
	router.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(server.requireSessionID)
		r.Get("/", server.getSession)
		r.Delete("/", server.deleteSession)
		r.Post("/start", server.startGame)
		r.Post("/move", server.applyMove)
		r.Post("/auto", server.autoTurn)
		r.Post("/undo", server.undo)
		r.Post("/reset", server.reset)
		r.Post("/stop", server.stop)
	})

	server.router = router

	return server
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - serves HTTP on port until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		that.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		next.ServeHTTP(w, r)
	})
}

// requireSessionID - answers 400 before any lookup when the id is not one we could have issued.
func (that *Server) requireSessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !pkg.IsValidSessionID(chi.URLParam(r, "id")) {
			that.writeError(w, r, apperror.ErrInvalidSessionID, entity.Snapshot{})
			return
		}

		next.ServeHTTP(w, r)
	})
}
