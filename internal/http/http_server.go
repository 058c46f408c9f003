package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/services/execution"
	"github.com/codecampus/gradebox/internal/core/services/grading"
	"github.com/codecampus/gradebox/internal/core/services/language"
	"github.com/codecampus/gradebox/internal/handlers"
	"github.com/codecampus/gradebox/internal/handlers/executions"
	"github.com/codecampus/gradebox/internal/handlers/grades"
)

type ServiceProvider struct {
	execService  execution.IExecutionService
	gradeService grading.IGradingService
	registry     language.IRegistryService
}

func NewServiceProvider(
	execService execution.IExecutionService,
	gradeService grading.IGradingService,
	registry language.IRegistryService,
) *ServiceProvider {
	return &ServiceProvider{
		execService:  execService,
		gradeService: gradeService,
		registry:     registry,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	middleware      *handlers.MiddlewareProvider
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, middleware *handlers.MiddlewareProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		middleware:      middleware,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	r.Use(s.middleware.LoggingMiddleware)

	r.HandleFunc("/health", s.healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes share one rate limit bucket; probes and scrapes stay
	// outside it
	api := r.NewRoute().Subrouter()
	api.Use(s.middleware.RateLimitMiddleware)

	executions.
		NewExecutionHandler(s.ServiceProvider.execService, s.ServiceProvider.registry, s.logger).
		RegisterRoutes(api)
	grades.
		NewGradeHandler(s.ServiceProvider.gradeService, s.logger).
		RegisterRoutes(api)

	s.router = r
	return nil
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	handlers.ResponseWithJson(w, http.StatusOK, map[string]string{"status": "ok", "service": s.ServiceName})
}

func (s *Server) Start(ctx context.Context) {
	// Set up server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// A graded batch can sit in the queue and then compile before it
		// runs; the write timeout has to outlive all of that.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.srv = srv

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

}

// Stop drains in-flight requests until ctx expires
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shut down http server", "error", err)
	}
}
