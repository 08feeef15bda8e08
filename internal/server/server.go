package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nathanchica/life-event-logger/config"
	"github.com/nathanchica/life-event-logger/internal/alert"
	"github.com/nathanchica/life-event-logger/internal/db"
	"github.com/nathanchica/life-event-logger/internal/handlers"
	"github.com/nathanchica/life-event-logger/internal/mq"
	"github.com/nathanchica/life-event-logger/internal/services"
	"github.com/nathanchica/life-event-logger/internal/storage"
	"github.com/nathanchica/life-event-logger/internal/store"
	"github.com/nathanchica/life-event-logger/internal/tasks"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server, router, and background task runner.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
	runner     *tasks.Runner
	logger     *zap.Logger
}

// New constructs a Server with basic middleware and defaults. Optional
// subsystems (message queue, object storage, the periodic threshold check)
// come up only when configured.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	eventRepo := store.NewEventRepository(dbConn)
	labelRepo := store.NewLabelRepository(dbConn)

	userService := services.NewUserService(userRepo)
	labelService := services.NewLabelService(labelRepo)
	eventService := services.NewEventService(eventRepo, labelRepo)

	mqClient, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to connect message queue: %w", err)
	}

	objectStorage, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to connect object storage: %w", err)
	}

	var exportService *services.ExportService
	if objectStorage != nil {
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("failed to ensure export bucket: %w", err)
		}
		exportService = services.NewExportService(eventRepo, labelRepo, objectStorage)
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, cfg.JWTSecret)
	})
	router.Route("/events", func(r chi.Router) {
		handlers.EventRouter(r, eventService, logger, cfg.JWTSecret)
	})
	router.Route("/labels", func(r chi.Router) {
		handlers.LabelRouter(r, labelService, logger, cfg.JWTSecret)
	})
	router.Route("/export", func(r chi.Router) {
		handlers.ExportRouter(r, exportService, logger, cfg.JWTSecret)
	})

	runner := tasks.New(logger)
	if cfg.Alerts.CheckInterval > 0 {
		evaluator := services.NewThresholdEvaluator(userRepo, eventRepo, logger)

		var publisher alert.Publisher
		if mqClient != nil {
			publisher = mqClient
		}
		dispatcher := alert.NewDispatcher(cfg.Alerts, publisher, logger)

		runner.Register(tasks.Job{
			Name:     "threshold-check",
			Interval: cfg.Alerts.CheckInterval,
			Run: func(ctx context.Context) error {
				report, err := evaluator.CheckEventThresholds(ctx, services.CheckConfig{
					TargetUserEmail: cfg.Alerts.TargetUserEmail,
				})
				if err != nil {
					return err
				}
				return dispatcher.Dispatch(ctx, report)
			},
		})
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mq:         mqClient,
		runner:     runner,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the background task runner and the HTTP server.
func (s *Server) Start() error {
	s.runner.Start()
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown of the HTTP server, background
// jobs, and connections.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.runner.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
