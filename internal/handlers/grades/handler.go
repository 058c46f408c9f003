package grades

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/services/grading"
	"github.com/codecampus/gradebox/internal/domain"
	"github.com/codecampus/gradebox/internal/handlers"
	"github.com/codecampus/gradebox/internal/static/errs"
)

// GradeHandler handles grading API requests
type GradeHandler struct {
	gradeService grading.IGradingService
	logger       primary.Logger
}

// NewGradeHandler creates a new grade handler
func NewGradeHandler(gradeService grading.IGradingService, logger primary.Logger) *GradeHandler {
	return &GradeHandler{
		gradeService: gradeService,
		logger:       logger,
	}
}

// RegisterRoutes registers the API routes for GradeHandler
func (h *GradeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/grade", h.Grade).Methods("POST")
	router.HandleFunc("/api/grades", h.ListGradeRuns).Methods("GET")
	router.HandleFunc("/api/grades/{gradeId}", h.GetGradeRun).Methods("GET")
}

// Grade handles grading requests
func (h *GradeHandler) Grade(w http.ResponseWriter, r *http.Request) {
	var req domain.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	summary, err := h.gradeService.Grade(r.Context(), &req)
	if err != nil {
		h.writeGradeError(w, r, err)
		return
	}

	redactHidden(summary)
	handlers.ResponseWithJson(w, http.StatusOK, summary)
}

func (h *GradeHandler) writeGradeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.MissingLanguage):
		handlers.ResponseError(w, errs.MissingLanguage.Error(), http.StatusBadRequest)
	case errors.Is(err, errs.MissingCode):
		handlers.ResponseError(w, errs.MissingCode.Error(), http.StatusBadRequest)
	case errors.Is(err, errs.UnsupportedLanguage):
		handlers.ResponseError(w, errs.UnsupportedLanguage.Error(), http.StatusBadRequest)
	case errors.Is(err, errs.Busy):
		handlers.ResponseError(w, errs.Busy.Error(), http.StatusServiceUnavailable)
	case r.Context().Err() != nil:
		// Caller is gone, nothing left to answer
	default:
		h.logger.Error("Grading failed", "error", err)
		handlers.ResponseError(w, errs.InternalError.Error(), http.StatusInternalServerError)
	}
}

// redactHidden blanks everything about a hidden case except whether it
// passed and what it scored. Hidden inputs stay hidden even when the
// submission crashes on them.
func redactHidden(summary *domain.GradeSummary) {
	for i := range summary.Results {
		res := &summary.Results[i]
		if !res.IsHidden {
			continue
		}
		res.ActualOutput = ""
		res.ExpectedOutput = ""
		res.Diff = nil
		res.ErrorMessage = ""
	}
}

// GetGradeRun handles archived grade run retrieval requests
func (h *GradeHandler) GetGradeRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runIDStr := vars["gradeId"]

	runID, err := uuid.Parse(runIDStr)
	if err != nil {
		h.logger.Error("Invalid grade run ID", "id", runIDStr)
		http.Error(w, "Invalid grade run ID", http.StatusBadRequest)
		return
	}

	summary, err := h.gradeService.GetGradeRun(r.Context(), runID)
	if err != nil {
		h.writeArchiveError(w, err)
		return
	}

	redactHidden(summary)
	handlers.ResponseWithJson(w, http.StatusOK, summary)
}

// ListGradeRuns handles archived grade run listing requests
func (h *GradeHandler) ListGradeRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.gradeService.ListGradeRuns(r.Context(), limit)
	if err != nil {
		h.writeArchiveError(w, err)
		return
	}

	for _, run := range runs {
		redactHidden(run)
	}

	handlers.ResponseWithJson(w, http.StatusOK, map[string][]*domain.GradeSummary{"grade_runs": runs})
}

func (h *GradeHandler) writeArchiveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.GradeRunNotFound):
		handlers.ResponseError(w, errs.GradeRunNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, errs.ArchiveDisabled):
		handlers.ResponseError(w, errs.ArchiveDisabled.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.Error("Failed to read grade archive", "error", err)
		handlers.ResponseError(w, errs.InternalError.Error(), http.StatusInternalServerError)
	}
}
