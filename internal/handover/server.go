package handover

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"go-handover/internal/handover/handlers"
	"go-handover/internal/handover/middleware"
	"go-handover/pkg/logging"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
}

// Service is everything the HTTP surface needs from the application service.
type Service interface {
	handlers.DatasetLoadingService
	handlers.ScanService
	handlers.HistoryGettingService
	handlers.StatsGettingService
	handlers.HealthService
}

type Server struct {
	logger     *logging.ZapLogger
	httpServer *http.Server
	cfg        Config
}

func New(cfg Config, service Service, logger *logging.ZapLogger) *Server {
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           NewRouter(service, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: srv,
	}
}

func (s *Server) Run() error {
	s.logger.InfoCtx(context.Background(), "server started", zap.String("address", s.cfg.ServerAddress))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server ListenAndServe failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func NewRouter(service Service, logger *logging.ZapLogger) *chi.Mux {
	datasetLoadingHandler := handlers.NewDatasetLoadingHandler(service, logger)
	scanHandler := handlers.NewScanHandler(service, logger)
	historyGettingHandler := handlers.NewHistoryGettingHandler(service, logger)
	statsGettingHandler := handlers.NewStatsGettingHandler(service, logger)
	healthHandler := handlers.NewHealthHandler(service, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.NewLoggerContext().CreateHandler)
	router.Use(middleware.NewPanicRecover(logger).CreateHandler)

	router.Route("/api", func(router chi.Router) {
		router.Post("/dataset", datasetLoadingHandler.ServeHTTP)
		router.Post("/scan", scanHandler.ServeHTTP)
		router.Get("/history", historyGettingHandler.ServeHTTP)
		router.Get("/stats", statsGettingHandler.ServeHTTP)
		router.Get("/healthz", healthHandler.ServeHTTP)
	})

	return router
}
