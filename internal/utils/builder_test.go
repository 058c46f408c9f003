package querybuilder

import (
	"reflect"
	"testing"
)

func TestBuildSelect(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Select("id", "language", "score").
		From("grade_runs").
		Where("language = ?", "python").
		And("score >= ?", 50).
		OrderBy("created_at", false).
		Limit(10).
		Build()

	want := "SELECT id, language, score FROM public.grade_runs WHERE language = ? AND score >= ? ORDER BY created_at DESC LIMIT ?"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"python", 50, 10}) {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildSelectOrCondition(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Select("id").
		From("grade_runs").
		Where("score = ?", 100).
		Or("score = ?", 0).
		Build()

	want := "SELECT id FROM public.grade_runs WHERE score = ? OR score = ?"
	if query != want {
		t.Fatalf("query = %q", query)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildBatchInsert(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Insert("run_id", "ordinal", "passed").
		Into("grade_run_tests").
		Values("a", 0, true).
		Values("a", 1, false).
		Build()

	want := "INSERT INTO public.grade_run_tests (run_id, ordinal, passed) VALUES (?, ?, ?), (?, ?, ?)"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
	if len(args) != 6 {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildInsertOnConflictDoNothing(t *testing.T) {
	query, _ := NewQueryBuilder("public").
		Insert("id", "language").
		Into("grade_runs").
		Values("a", "python").
		OnConflict("id").
		DoNothing().
		Build()

	want := "INSERT INTO public.grade_runs (id, language) VALUES (?, ?) ON CONFLICT (id) DO NOTHING"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
}

func TestBuildInsertUpsert(t *testing.T) {
	query, _ := NewQueryBuilder("public").
		Insert("id", "language", "score").
		Into("grade_runs").
		Values("a", "python", 75.0).
		OnConflict("id").
		SetExclude("language", "score").
		Build()

	want := "INSERT INTO public.grade_runs (id, language, score) VALUES (?, ?, ?) ON CONFLICT (id) DO UPDATE SET language = EXCLUDED.language, score = EXCLUDED.score"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
}

func TestBuildInsertRejectsRaggedRows(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Insert("id", "language").
		Into("grade_runs").
		Values("a", "python").
		Values("b").
		Build()

	if query != "" || args != nil {
		t.Fatalf("ragged rows built query %q", query)
	}
}
