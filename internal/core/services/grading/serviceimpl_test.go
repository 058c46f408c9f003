package grading

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/codecampus/gradebox/internal/adapter/logging"
	"github.com/codecampus/gradebox/internal/domain"
	"github.com/codecampus/gradebox/internal/static/errs"
)

// stubExecutor echoes stdin back as stdout unless run overrides it
type stubExecutor struct {
	mu     sync.Mutex
	stdins []string
	run    func(req *domain.ExecutionRequest) (*domain.ExecutionResult, error)
}

func (s *stubExecutor) Execute(ctx context.Context, req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	s.mu.Lock()
	s.stdins = append(s.stdins, req.Stdin)
	s.mu.Unlock()
	if s.run != nil {
		return s.run(req)
	}
	return &domain.ExecutionResult{Status: domain.StatusSuccess, Success: true, Stdout: req.Stdin}, nil
}

func (s *stubExecutor) Start(ctx context.Context) {}
func (s *stubExecutor) Wait()                     {}
func (s *stubExecutor) Stats() domain.PoolStats   { return domain.PoolStats{} }

type fakeArchive struct {
	mu      sync.Mutex
	saved   []*domain.GradeSummary
	stored  *domain.GradeSummary
	saveErr error
}

func (a *fakeArchive) SaveGradeRun(ctx context.Context, summary *domain.GradeSummary) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, summary)
	return a.saveErr
}

func (a *fakeArchive) GetGradeRun(ctx context.Context, runID uuid.UUID) (*domain.GradeSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stored != nil && a.stored.ID == runID {
		return a.stored, nil
	}
	return nil, nil
}

func (a *fakeArchive) ListGradeRuns(ctx context.Context, limit int) ([]*domain.GradeSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	runs := a.saved
	if len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}
	out := make([]*domain.GradeSummary, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		out = append(out, runs[i])
	}
	return out, nil
}

func newGrader(executor *stubExecutor, archive *fakeArchive) *GradingService {
	if archive == nil {
		return NewGradingService(executor, nil, logging.NewNopLogger())
	}
	return NewGradingService(executor, archive, logging.NewNopLogger())
}

func echoCase(input, expected string, order int) domain.TestCase {
	return domain.TestCase{Input: input, ExpectedOutput: expected, OrderIndex: order, Points: 5}
}

func TestGradeScoresThreeOfFour(t *testing.T) {
	svc := newGrader(&stubExecutor{}, nil)

	req := &domain.GradeRequest{
		Language: "python",
		Source:   "print(input())",
		TestCases: []domain.TestCase{
			echoCase("1\n", "1\n", 0),
			echoCase("2\n", "2\n", 1),
			echoCase("3\n", "3\n", 2),
			echoCase("4\n", "nope\n", 3),
		},
	}

	summary, err := svc.Grade(context.Background(), req)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if summary.Score != 75.0 {
		t.Fatalf("score = %v, want 75.0", summary.Score)
	}
	if summary.PassedTests != 3 || summary.TotalTests != 4 {
		t.Fatalf("passed/total = %d/%d", summary.PassedTests, summary.TotalTests)
	}
	if summary.PointsTotal != 20 || summary.PointsAwarded != 15 {
		t.Fatalf("points = %v/%v", summary.PointsAwarded, summary.PointsTotal)
	}
	if summary.ID == uuid.Nil {
		t.Fatal("summary did not get an ID")
	}
}

func TestGradeEmptySuiteScoresZero(t *testing.T) {
	svc := newGrader(&stubExecutor{}, nil)

	summary, err := svc.Grade(context.Background(), &domain.GradeRequest{Language: "python", Source: "x"})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if summary.Score != 0 || summary.TotalTests != 0 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestGradeValidatesRequest(t *testing.T) {
	svc := newGrader(&stubExecutor{}, nil)

	if _, err := svc.Grade(context.Background(), &domain.GradeRequest{Source: "x"}); !errors.Is(err, errs.MissingLanguage) {
		t.Fatalf("err = %v, want MissingLanguage", err)
	}
	if _, err := svc.Grade(context.Background(), &domain.GradeRequest{Language: "python"}); !errors.Is(err, errs.MissingCode) {
		t.Fatalf("err = %v, want MissingCode", err)
	}
}

func TestGradeRunsCasesInOrderIndex(t *testing.T) {
	executor := &stubExecutor{}
	svc := newGrader(executor, nil)

	req := &domain.GradeRequest{
		Language: "python",
		Source:   "x",
		TestCases: []domain.TestCase{
			echoCase("third\n", "third\n", 2),
			echoCase("first\n", "first\n", 0),
			echoCase("second\n", "second\n", 1),
		},
	}

	summary, err := svc.Grade(context.Background(), req)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	executor.mu.Lock()
	stdins := append([]string(nil), executor.stdins...)
	executor.mu.Unlock()
	want := []string{"first\n", "second\n", "third\n"}
	for i, in := range want {
		if stdins[i] != in {
			t.Fatalf("execution order = %v, want %v", stdins, want)
		}
		if summary.Results[i].OrderIndex != i {
			t.Fatalf("result %d has order index %d", i, summary.Results[i].OrderIndex)
		}
	}
}

func TestGradeCompileErrorNeverPasses(t *testing.T) {
	executor := &stubExecutor{
		run: func(req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
			return &domain.ExecutionResult{
				Status:       domain.StatusCompilationError,
				Stderr:       "main.cpp:1: expected ';'",
				ExitCode:     1,
				ErrorMessage: "compilation failed",
			}, nil
		},
	}
	svc := newGrader(executor, nil)

	// Empty expected output would match the empty actual output, so a
	// pass here could only come from ignoring the compile failure.
	req := &domain.GradeRequest{
		Language:  "cpp",
		Source:    "int main( {}",
		TestCases: []domain.TestCase{{Input: "", ExpectedOutput: "", Points: 10}},
	}

	summary, err := svc.Grade(context.Background(), req)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	res := summary.Results[0]
	if res.Passed {
		t.Fatal("compile error graded as passed")
	}
	if res.Status != domain.StatusCompilationError {
		t.Fatalf("status = %s", res.Status)
	}
	if summary.Score != 0 || summary.PointsAwarded != 0 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestGradeInfrastructureFaultIsolatedToCase(t *testing.T) {
	executor := &stubExecutor{
		run: func(req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
			if req.Stdin == "2\n" {
				return nil, errors.New("workspace creation failed")
			}
			return &domain.ExecutionResult{Status: domain.StatusSuccess, Success: true, Stdout: req.Stdin}, nil
		},
	}
	svc := newGrader(executor, nil)

	req := &domain.GradeRequest{
		Language: "python",
		Source:   "x",
		TestCases: []domain.TestCase{
			echoCase("1\n", "1\n", 0),
			echoCase("2\n", "2\n", 1),
			echoCase("3\n", "3\n", 2),
		},
	}

	summary, err := svc.Grade(context.Background(), req)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if summary.PassedTests != 2 || summary.TotalTests != 3 {
		t.Fatalf("passed/total = %d/%d", summary.PassedTests, summary.TotalTests)
	}
	broken := summary.Results[1]
	if broken.Status != domain.StatusInternalError || broken.Passed {
		t.Fatalf("broken case = %+v", broken)
	}
	// No host detail leaks into the student-visible message
	if broken.ErrorMessage != "execution failed" {
		t.Fatalf("error message = %q", broken.ErrorMessage)
	}
	if summary.Score != 66.67 {
		t.Fatalf("score = %v, want 66.67", summary.Score)
	}
}

func TestGradeUnknownLanguageAbortsBatch(t *testing.T) {
	executor := &stubExecutor{
		run: func(req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
			return nil, errs.UnsupportedLanguage
		},
	}
	svc := newGrader(executor, nil)

	req := &domain.GradeRequest{
		Language:  "cobol",
		Source:    "x",
		TestCases: []domain.TestCase{echoCase("1\n", "1\n", 0)},
	}
	if _, err := svc.Grade(context.Background(), req); !errors.Is(err, errs.UnsupportedLanguage) {
		t.Fatalf("err = %v, want UnsupportedLanguage", err)
	}
}

func TestGradeSaturatedPoolAbortsBatch(t *testing.T) {
	executor := &stubExecutor{
		run: func(req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
			return nil, errs.Busy
		},
	}
	svc := newGrader(executor, nil)

	req := &domain.GradeRequest{
		Language:  "python",
		Source:    "x",
		TestCases: []domain.TestCase{echoCase("1\n", "1\n", 0)},
	}
	if _, err := svc.Grade(context.Background(), req); !errors.Is(err, errs.Busy) {
		t.Fatalf("err = %v, want Busy", err)
	}
}

func TestGradeDiffOnlyOnCleanMismatch(t *testing.T) {
	executor := &stubExecutor{
		run: func(req *domain.ExecutionRequest) (*domain.ExecutionResult, error) {
			if req.Stdin == "crash\n" {
				return &domain.ExecutionResult{Status: domain.StatusRuntimeError, ExitCode: 1, Stdout: "partial\n"}, nil
			}
			return &domain.ExecutionResult{Status: domain.StatusSuccess, Success: true, Stdout: "actual\n"}, nil
		},
	}
	svc := newGrader(executor, nil)

	req := &domain.GradeRequest{
		Language: "python",
		Source:   "x",
		TestCases: []domain.TestCase{
			{Input: "mismatch\n", ExpectedOutput: "expected\n", OrderIndex: 0},
			{Input: "crash\n", ExpectedOutput: "expected\n", OrderIndex: 1},
			{Input: "match\n", ExpectedOutput: "actual\n", OrderIndex: 2},
		},
	}

	summary, err := svc.Grade(context.Background(), req)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if len(summary.Results[0].Diff) == 0 {
		t.Fatal("clean mismatch produced no diff")
	}
	if len(summary.Results[1].Diff) != 0 {
		t.Fatalf("runtime error produced a diff: %v", summary.Results[1].Diff)
	}
	if len(summary.Results[2].Diff) != 0 {
		t.Fatalf("passing case produced a diff: %v", summary.Results[2].Diff)
	}
}

func TestGradeHiddenCasesGradedIdentically(t *testing.T) {
	svc := newGrader(&stubExecutor{}, nil)

	visible := domain.TestCase{Input: "a\n", ExpectedOutput: "b\n", OrderIndex: 0}
	hidden := visible
	hidden.IsHidden = true
	hidden.OrderIndex = 1

	summary, err := svc.Grade(context.Background(), &domain.GradeRequest{
		Language:  "python",
		Source:    "x",
		TestCases: []domain.TestCase{visible, hidden},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	v, h := summary.Results[0], summary.Results[1]
	if v.Passed != h.Passed || v.Status != h.Status || v.ActualOutput != h.ActualOutput {
		t.Fatalf("hidden case graded differently: %+v vs %+v", v, h)
	}
	if v.IsHidden || !h.IsHidden {
		t.Fatalf("hidden flags = %v/%v", v.IsHidden, h.IsHidden)
	}
}

func TestGradeArchivesBestEffort(t *testing.T) {
	archive := &fakeArchive{}
	svc := newGrader(&stubExecutor{}, archive)

	req := &domain.GradeRequest{
		Language:  "python",
		Source:    "x",
		TestCases: []domain.TestCase{echoCase("1\n", "1\n", 0)},
	}
	summary, err := svc.Grade(context.Background(), req)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	archive.mu.Lock()
	saved := len(archive.saved)
	archive.mu.Unlock()
	if saved != 1 {
		t.Fatalf("archive saw %d runs", saved)
	}

	// A broken archive must not fail the grade itself
	archive.saveErr = errors.New("connection refused")
	if _, err := svc.Grade(context.Background(), req); err != nil {
		t.Fatalf("Grade with broken archive: %v", err)
	}
	_ = summary
}

func TestGetGradeRun(t *testing.T) {
	stored := &domain.GradeSummary{ID: uuid.New(), Language: "python", Score: 100}
	archive := &fakeArchive{stored: stored}
	svc := newGrader(&stubExecutor{}, archive)

	got, err := svc.GetGradeRun(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("GetGradeRun: %v", err)
	}
	if got.ID != stored.ID {
		t.Fatalf("got run %s", got.ID)
	}

	if _, err := svc.GetGradeRun(context.Background(), uuid.New()); !errors.Is(err, errs.GradeRunNotFound) {
		t.Fatalf("err = %v, want GradeRunNotFound", err)
	}
}

func TestGetGradeRunWithoutArchive(t *testing.T) {
	svc := newGrader(&stubExecutor{}, nil)

	if _, err := svc.GetGradeRun(context.Background(), uuid.New()); !errors.Is(err, errs.ArchiveDisabled) {
		t.Fatalf("err = %v, want ArchiveDisabled", err)
	}
	if _, err := svc.ListGradeRuns(context.Background(), 10); !errors.Is(err, errs.ArchiveDisabled) {
		t.Fatalf("err = %v, want ArchiveDisabled", err)
	}
}

func TestListGradeRunsNewestFirst(t *testing.T) {
	archive := &fakeArchive{}
	svc := newGrader(&stubExecutor{}, archive)

	req := &domain.GradeRequest{
		Language:  "python",
		Source:    "x",
		TestCases: []domain.TestCase{echoCase("1\n", "1\n", 0)},
	}
	first, err := svc.Grade(context.Background(), req)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	second, err := svc.Grade(context.Background(), req)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	runs, err := svc.ListGradeRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListGradeRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs", len(runs))
	}
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("runs not newest first: %s, %s", runs[0].ID, runs[1].ID)
	}
}
