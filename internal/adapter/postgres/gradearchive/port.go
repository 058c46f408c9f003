// package gradearchive contains the PostgreSQL implementation of the
// grade archive
package gradearchive

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jmoiron/sqlx"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/ports/secondary"
	"github.com/codecampus/gradebox/internal/domain"
	querybuilder "github.com/codecampus/gradebox/internal/utils"
)

const schema = "public"

var _ secondary.GradeArchive = (*GradeRunRepository)(nil)

// GradeRunRepository implements the GradeArchive interface with PostgreSQL
type GradeRunRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewGradeRunRepository creates a new PostgreSQL grade run repository
func NewGradeRunRepository(db *sqlx.DB, logger primary.Logger) *GradeRunRepository {
	return &GradeRunRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the archive tables when they do not exist yet
func (r *GradeRunRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS grade_runs (
			id UUID PRIMARY KEY,
			language TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			total_tests INT NOT NULL,
			passed_tests INT NOT NULL,
			points_total DOUBLE PRECISION NOT NULL DEFAULT 0,
			points_awarded DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS grade_run_tests (
			run_id UUID NOT NULL REFERENCES grade_runs(id) ON DELETE CASCADE,
			test_case_id UUID NOT NULL,
			ordinal INT NOT NULL,
			hidden BOOLEAN NOT NULL DEFAULT FALSE,
			passed BOOLEAN NOT NULL,
			status TEXT NOT NULL,
			actual_output TEXT NOT NULL DEFAULT '',
			error_message TEXT,
			execution_time_ms BIGINT NOT NULL DEFAULT 0,
			memory_used_kb BIGINT NOT NULL DEFAULT 0,
			points_awarded DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, ordinal)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_grade_runs_created_at ON grade_runs (created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.logger.Error("Failed to ensure archive schema", "error", err)
			return fmt.Errorf("failed to ensure archive schema: %w", err)
		}
	}

	return nil
}

// SaveGradeRun persists a summary together with its per-test rows
func (r *GradeRunRepository) SaveGradeRun(ctx context.Context, summary *domain.GradeSummary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if the transaction is committed

	query := `
		INSERT INTO grade_runs (
			id, language, score, total_tests, passed_tests,
			points_total, points_awarded, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = tx.ExecContext(
		ctx,
		query,
		summary.ID,
		summary.Language,
		summary.Score,
		summary.TotalTests,
		summary.PassedTests,
		summary.PointsTotal,
		summary.PointsAwarded,
		summary.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save grade run", "runId", summary.ID, "error", err)
		return fmt.Errorf("failed to save grade run: %w", err)
	}

	if len(summary.Results) > 0 {
		tbl := domain.GetGradeRunTestTable()
		qb := querybuilder.NewQueryBuilder(schema).
			Insert(
				tbl.RunID,
				tbl.TestCaseID,
				tbl.Ordinal,
				tbl.Hidden,
				tbl.Passed,
				tbl.Status,
				tbl.ActualOutput,
				tbl.ErrorMessage,
				tbl.ExecutionTimeMs,
				tbl.MemoryUsedKB,
				tbl.PointsAwarded,
			).Into(tbl.TableName())

		for _, res := range summary.Results {
			qb = qb.Values(
				summary.ID,
				res.TestCaseID,
				res.OrderIndex,
				res.IsHidden,
				res.Passed,
				string(res.Status),
				res.ActualOutput,
				nullString(res.ErrorMessage),
				res.ExecutionTimeMs,
				res.MemoryUsedKB,
				res.PointsAwarded,
			)
		}

		insertQuery, args := qb.OnConflict(tbl.RunID, tbl.Ordinal).DoNothing().Build()
		if insertQuery == "" {
			return fmt.Errorf("failed to build grade run test insert")
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(insertQuery), args...); err != nil {
			r.logger.Error("Failed to save grade run tests", "runId", summary.ID, "error", err)
			return fmt.Errorf("failed to save grade run tests: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGradeRun retrieves an archived run by ID. The archive keeps what
// was executed, not the suite itself, so expected outputs and diffs are
// not part of what comes back.
func (r *GradeRunRepository) GetGradeRun(ctx context.Context, runID uuid.UUID) (*domain.GradeSummary, error) {
	query := `
		SELECT id, language, score, total_tests, passed_tests,
			   points_total, points_awarded, created_at
		FROM grade_runs
		WHERE id = $1
	`

	var summary domain.GradeSummary
	err := r.db.QueryRowContext(ctx, query, runID).Scan(
		&summary.ID,
		&summary.Language,
		&summary.Score,
		&summary.TotalTests,
		&summary.PassedTests,
		&summary.PointsTotal,
		&summary.PointsAwarded,
		&summary.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get grade run", "runId", runID, "error", err)
		return nil, fmt.Errorf("failed to get grade run: %w", err)
	}

	tbl := domain.GetGradeRunTestTable()
	testsQuery, args := querybuilder.NewQueryBuilder(schema).
		Select(
			tbl.TestCaseID,
			tbl.Ordinal,
			tbl.Hidden,
			tbl.Passed,
			tbl.Status,
			tbl.ActualOutput,
			tbl.ErrorMessage,
			tbl.ExecutionTimeMs,
			tbl.MemoryUsedKB,
			tbl.PointsAwarded,
		).
		From(tbl.TableName()).
		Where(tbl.RunID+" = ?", runID).
		OrderBy(tbl.Ordinal, true).
		Build()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(testsQuery), args...)
	if err != nil {
		r.logger.Error("Failed to get grade run tests", "runId", runID, "error", err)
		return nil, fmt.Errorf("failed to get grade run tests: %w", err)
	}
	defer rows.Close()

	summary.Results = make([]domain.TestCaseResult, 0, summary.TotalTests)
	for rows.Next() {
		var res domain.TestCaseResult
		var errorMessage sql.NullString

		err := rows.Scan(
			&res.TestCaseID,
			&res.OrderIndex,
			&res.IsHidden,
			&res.Passed,
			&res.Status,
			&res.ActualOutput,
			&errorMessage,
			&res.ExecutionTimeMs,
			&res.MemoryUsedKB,
			&res.PointsAwarded,
		)
		if err != nil {
			r.logger.Error("Failed to scan grade run test row", "error", err)
			return nil, fmt.Errorf("failed to scan grade run test row: %w", err)
		}

		if errorMessage.Valid {
			res.ErrorMessage = errorMessage.String
		}

		summary.Results = append(summary.Results, res)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating grade run test rows", "error", err)
		return nil, fmt.Errorf("error iterating grade run test rows: %w", err)
	}

	return &summary, nil
}

// ListGradeRuns returns the most recent runs, newest first, without
// their per-test rows
func (r *GradeRunRepository) ListGradeRuns(ctx context.Context, limit int) ([]*domain.GradeSummary, error) {
	tbl := domain.GetGradeRunTable()
	query, args := querybuilder.NewQueryBuilder(schema).
		Select(
			tbl.ID,
			tbl.Language,
			tbl.Score,
			tbl.TotalTests,
			tbl.PassedTests,
			tbl.PointsTotal,
			tbl.PointsAwarded,
			tbl.CreatedAt,
		).
		From(tbl.TableName()).
		OrderBy(tbl.CreatedAt, false).
		Limit(limit).
		Build()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("Failed to list grade runs", "error", err)
		return nil, fmt.Errorf("failed to list grade runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]*domain.GradeSummary, 0, limit)
	for rows.Next() {
		var summary domain.GradeSummary
		err := rows.Scan(
			&summary.ID,
			&summary.Language,
			&summary.Score,
			&summary.TotalTests,
			&summary.PassedTests,
			&summary.PointsTotal,
			&summary.PointsAwarded,
			&summary.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan grade run row", "error", err)
			return nil, fmt.Errorf("failed to scan grade run row: %w", err)
		}
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating grade run rows", "error", err)
		return nil, fmt.Errorf("error iterating grade run rows: %w", err)
	}

	return summaries, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
