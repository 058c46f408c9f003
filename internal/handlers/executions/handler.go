package executions

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/services/execution"
	"github.com/codecampus/gradebox/internal/core/services/language"
	"github.com/codecampus/gradebox/internal/domain"
	"github.com/codecampus/gradebox/internal/handlers"
	"github.com/codecampus/gradebox/internal/static/errs"
)

// ExecutionHandler handles code execution API requests
type ExecutionHandler struct {
	execService execution.IExecutionService
	registry    language.IRegistryService
	logger      primary.Logger
}

var _ execution.IExecutionService = &execution.ExecutionService{}

// NewExecutionHandler creates a new execution handler
func NewExecutionHandler(execService execution.IExecutionService, registry language.IRegistryService, logger primary.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		execService: execService,
		registry:    registry,
		logger:      logger,
	}
}

// RegisterRoutes registers the API routes for ExecutionHandler
func (h *ExecutionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/execute", h.Execute).Methods("POST")
	router.HandleFunc("/api/languages", h.GetLanguages).Methods("GET")
	router.HandleFunc("/api/status", h.GetStatus).Methods("GET")
}

// Execute handles single execution requests
func (h *ExecutionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req domain.ExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if req.Language == "" {
		handlers.ResponseError(w, errs.MissingLanguage.Error(), http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		handlers.ResponseError(w, errs.MissingCode.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.execService.Execute(r.Context(), &req)
	if err != nil {
		h.writeExecutionError(w, r, err)
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, result)
}

// writeExecutionError maps service failures to responses. Infrastructure
// detail stays in the log; the body only ever carries the generic message.
func (h *ExecutionHandler) writeExecutionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.UnsupportedLanguage):
		handlers.ResponseError(w, errs.UnsupportedLanguage.Error(), http.StatusBadRequest)
	case errors.Is(err, errs.Busy):
		handlers.ResponseError(w, errs.Busy.Error(), http.StatusServiceUnavailable)
	case r.Context().Err() != nil:
		// Caller is gone, nothing left to answer
	default:
		h.logger.Error("Execution failed", "error", err)
		handlers.ResponseError(w, errs.InternalError.Error(), http.StatusInternalServerError)
	}
}

// GetLanguages handles language listing requests
func (h *ExecutionHandler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	handlers.ResponseWithJson(w, http.StatusOK, map[string][]string{"languages": h.registry.List()})
}

// StatusResponse represents a service status snapshot
type StatusResponse struct {
	Status    string           `json:"status"`
	Languages int              `json:"languages"`
	Pool      domain.PoolStats `json:"pool"`
}

// GetStatus handles service status requests
func (h *ExecutionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:    "ok",
		Languages: len(h.registry.List()),
		Pool:      h.execService.Stats(),
	}

	handlers.ResponseWithJson(w, http.StatusOK, resp)
}
