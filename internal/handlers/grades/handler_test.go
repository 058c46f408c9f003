package grades

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/codecampus/gradebox/internal/adapter/logging"
	"github.com/codecampus/gradebox/internal/domain"
	"github.com/codecampus/gradebox/internal/static/errs"
)

type stubGradeService struct {
	grade func(ctx context.Context, req *domain.GradeRequest) (*domain.GradeSummary, error)
	get   func(ctx context.Context, runID uuid.UUID) (*domain.GradeSummary, error)
	list  func(ctx context.Context, limit int) ([]*domain.GradeSummary, error)
}

func (s *stubGradeService) Grade(ctx context.Context, req *domain.GradeRequest) (*domain.GradeSummary, error) {
	return s.grade(ctx, req)
}

func (s *stubGradeService) GetGradeRun(ctx context.Context, runID uuid.UUID) (*domain.GradeSummary, error) {
	return s.get(ctx, runID)
}

func (s *stubGradeService) ListGradeRuns(ctx context.Context, limit int) ([]*domain.GradeSummary, error) {
	return s.list(ctx, limit)
}

func newTestRouter(svc *stubGradeService) *mux.Router {
	handler := NewGradeHandler(svc, logging.NewNopLogger())
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func sampleSummary() *domain.GradeSummary {
	return &domain.GradeSummary{
		ID:            uuid.New(),
		Language:      "python",
		Score:         50,
		TotalTests:    2,
		PassedTests:   1,
		PointsTotal:   10,
		PointsAwarded: 5,
		Results: []domain.TestCaseResult{
			{
				TestCaseID:     uuid.New(),
				OrderIndex:     0,
				Passed:         true,
				Status:         domain.StatusSuccess,
				ActualOutput:   "4\n",
				ExpectedOutput: "4\n",
				PointsAwarded:  5,
			},
			{
				TestCaseID:     uuid.New(),
				OrderIndex:     1,
				IsHidden:       true,
				Passed:         false,
				Status:         domain.StatusRuntimeError,
				ActualOutput:   "Traceback (most recent call last)",
				ExpectedOutput: "9\n",
				Diff:           []string{"--- expected", "+++ actual"},
				ErrorMessage:   "process exited with status 1",
			},
		},
	}
}

func TestGradeRedactsHiddenCases(t *testing.T) {
	svc := &stubGradeService{
		grade: func(ctx context.Context, req *domain.GradeRequest) (*domain.GradeSummary, error) {
			return sampleSummary(), nil
		},
	}
	router := newTestRouter(svc)

	body := `{"language":"python","source":"print(int(input())**2)","test_cases":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/grade", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary domain.GradeSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(summary.Results))
	}

	visible := summary.Results[0]
	if visible.ActualOutput != "4\n" || visible.ExpectedOutput != "4\n" {
		t.Fatalf("visible case should keep its outputs: %+v", visible)
	}

	hidden := summary.Results[1]
	if hidden.ActualOutput != "" || hidden.ExpectedOutput != "" || hidden.Diff != nil || hidden.ErrorMessage != "" {
		t.Fatalf("hidden case leaked details: %+v", hidden)
	}
	if !hidden.IsHidden || hidden.Passed || hidden.Status != domain.StatusRuntimeError {
		t.Fatalf("redaction should keep verdict fields: %+v", hidden)
	}
}

func TestGradeMapsServiceErrors(t *testing.T) {
	tests := map[string]struct {
		err        error
		wantStatus int
		wantSubstr string
	}{
		"missing language": {
			err:        errs.MissingLanguage,
			wantStatus: http.StatusBadRequest,
			wantSubstr: "language is required",
		},
		"missing code": {
			err:        errs.MissingCode,
			wantStatus: http.StatusBadRequest,
			wantSubstr: "code is required",
		},
		"unsupported language": {
			err:        errs.UnsupportedLanguage,
			wantStatus: http.StatusBadRequest,
			wantSubstr: "unsupported language",
		},
		"saturated pool": {
			err:        errs.Busy,
			wantStatus: http.StatusServiceUnavailable,
			wantSubstr: "queue is full",
		},
		"infrastructure failure": {
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantSubstr: "internal error",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			svc := &stubGradeService{
				grade: func(ctx context.Context, req *domain.GradeRequest) (*domain.GradeSummary, error) {
					return nil, tc.err
				},
			}
			router := newTestRouter(svc)

			body := `{"language":"python","source":"x","test_cases":[]}`
			req := httptest.NewRequest(http.MethodPost, "/api/grade", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.wantSubstr) {
				t.Fatalf("expected body to mention %q, got %q", tc.wantSubstr, rec.Body.String())
			}
		})
	}
}

func TestGradeRejectsMalformedBody(t *testing.T) {
	svc := &stubGradeService{
		grade: func(ctx context.Context, req *domain.GradeRequest) (*domain.GradeSummary, error) {
			return sampleSummary(), nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/grade", strings.NewReader(`{"language":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetGradeRun(t *testing.T) {
	stored := sampleSummary()
	svc := &stubGradeService{
		get: func(ctx context.Context, runID uuid.UUID) (*domain.GradeSummary, error) {
			if runID != stored.ID {
				return nil, errs.GradeRunNotFound
			}
			return stored, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/grades/"+stored.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary domain.GradeSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.ID != stored.ID {
		t.Fatalf("expected run %s, got %s", stored.ID, summary.ID)
	}
	if hidden := summary.Results[1]; hidden.ActualOutput != "" {
		t.Fatalf("archived hidden case leaked details: %+v", hidden)
	}
}

func TestGetGradeRunErrors(t *testing.T) {
	tests := map[string]struct {
		path       string
		err        error
		wantStatus int
	}{
		"malformed id": {
			path:       "/api/grades/not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
		"unknown run": {
			path:       "/api/grades/" + uuid.NewString(),
			err:        errs.GradeRunNotFound,
			wantStatus: http.StatusNotFound,
		},
		"archive disabled": {
			path:       "/api/grades/" + uuid.NewString(),
			err:        errs.ArchiveDisabled,
			wantStatus: http.StatusServiceUnavailable,
		},
		"archive failure": {
			path:       "/api/grades/" + uuid.NewString(),
			err:        errors.New("pq: relation does not exist"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			svc := &stubGradeService{
				get: func(ctx context.Context, runID uuid.UUID) (*domain.GradeSummary, error) {
					return nil, tc.err
				},
			}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListGradeRuns(t *testing.T) {
	var gotLimit int
	svc := &stubGradeService{
		list: func(ctx context.Context, limit int) ([]*domain.GradeSummary, error) {
			gotLimit = limit
			return []*domain.GradeSummary{sampleSummary(), sampleSummary()}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/grades?limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotLimit != 5 {
		t.Fatalf("expected limit 5 to reach the service, got %d", gotLimit)
	}

	var resp map[string][]*domain.GradeSummary
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	runs := resp["grade_runs"]
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	for _, run := range runs {
		if hidden := run.Results[1]; hidden.ActualOutput != "" || hidden.Diff != nil {
			t.Fatalf("listing leaked hidden case details: %+v", hidden)
		}
	}
}

func TestListGradeRunsRejectsBadLimit(t *testing.T) {
	svc := &stubGradeService{
		list: func(ctx context.Context, limit int) ([]*domain.GradeSummary, error) {
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/grades?limit=many", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
