// Package querybuilder assembles parameterized SQL. Queries come out
// with ? placeholders; run them through sqlx Rebind for the target
// driver's numbering.
package querybuilder

import (
	"fmt"
	"strings"
)

type QueryBuilder interface {
	Select(cols ...string) QueryBuilder
	From(table string) QueryBuilder
	Where(clause string, args ...interface{}) QueryBuilder
	And(clause string, args ...interface{}) QueryBuilder
	Or(clause string, args ...interface{}) QueryBuilder
	OrderBy(col string, asc bool) QueryBuilder
	Limit(n int) QueryBuilder

	Insert(cols ...string) QueryBuilder
	Into(table string) QueryBuilder
	Values(values ...interface{}) QueryBuilder
	OnConflict(cols ...string) QueryBuilder
	DoNothing() QueryBuilder
	SetExclude(cols ...string) QueryBuilder

	Build() (string, []interface{})
}

type queryBuilder struct {
	schema      string
	table       string
	cols        []string
	conditions  []Condition
	orderBy     []string
	limit       int
	values      InsertRows
	isInsert    bool
	onConflict  []string
	excludeCols []string
}

func NewQueryBuilder(schema string) QueryBuilder {
	return &queryBuilder{
		schema: schema,
	}
}

func (q *queryBuilder) Select(cols ...string) QueryBuilder {
	q.cols = append(q.cols, cols...)
	return q
}

func (q *queryBuilder) From(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Where(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, Condition{
		condType: CondTypeAnd,
		clause:   clause,
		args:     args,
	})
	return q
}

func (q *queryBuilder) And(clause string, args ...interface{}) QueryBuilder {
	return q.Where(clause, args...)
}

func (q *queryBuilder) Or(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, Condition{
		condType: CondTypeOr,
		clause:   clause,
		args:     args,
	})
	return q
}

func (q *queryBuilder) OrderBy(col string, asc bool) QueryBuilder {
	orderVector := "ASC"
	if !asc {
		orderVector = "DESC"
	}
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", col, orderVector))
	return q
}

func (q *queryBuilder) Limit(n int) QueryBuilder {
	q.limit = n
	return q
}

func (q *queryBuilder) Insert(cols ...string) QueryBuilder {
	q.cols = cols
	q.isInsert = true
	return q
}

func (q *queryBuilder) Into(table string) QueryBuilder {
	q.table = table
	return q
}

// Values appends one row; call it once per row for a batch insert
func (q *queryBuilder) Values(values ...interface{}) QueryBuilder {
	q.values = append(q.values, values)
	return q
}

func (q *queryBuilder) OnConflict(cols ...string) QueryBuilder {
	q.onConflict = cols
	return q
}

func (q *queryBuilder) DoNothing() QueryBuilder {
	q.excludeCols = nil
	return q
}

// SetExclude upserts the given columns from the EXCLUDED row on conflict
func (q *queryBuilder) SetExclude(cols ...string) QueryBuilder {
	q.excludeCols = cols
	return q
}

func (q *queryBuilder) Build() (string, []interface{}) {
	if q.isInsert {
		return q.buildInsert()
	}
	return q.buildSelect()
}

func (q *queryBuilder) buildSelect() (string, []interface{}) {
	query := fmt.Sprintf("SELECT %s FROM %s.%s", strings.Join(q.cols, ", "), q.schema, q.table)

	var args []interface{}
	if len(q.conditions) > 0 {
		condition, condArgs := buildCondition(q.conditions)
		query += fmt.Sprintf(" WHERE %s", condition)
		args = append(args, condArgs...)
	}
	if len(q.orderBy) > 0 {
		query += fmt.Sprintf(" ORDER BY %s", strings.Join(q.orderBy, ", "))
	}
	if q.limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.limit)
	}

	return query, args
}

func (q *queryBuilder) buildInsert() (string, []interface{}) {
	if len(q.cols) == 0 || len(q.values) == 0 {
		return "", nil
	}

	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(q.cols)), ", ") + ")"
	tuples := make([]string, 0, len(q.values))
	args := make([]interface{}, 0, len(q.values)*len(q.cols))
	for _, row := range q.values {
		// Every row must line up with the column list
		if len(row) != len(q.cols) {
			return "", nil
		}
		args = append(args, row...)
		tuples = append(tuples, tuple)
	}

	query := fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES %s",
		q.schema, q.table, strings.Join(q.cols, ", "), strings.Join(tuples, ", "))

	if len(q.onConflict) > 0 {
		query += fmt.Sprintf(" ON CONFLICT (%s)", strings.Join(q.onConflict, ", "))
		if len(q.excludeCols) == 0 {
			query += " DO NOTHING"
			return query, args
		}
		sets := make([]string, 0, len(q.excludeCols))
		for _, col := range q.excludeCols {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
		query += " DO UPDATE SET " + strings.Join(sets, ", ")
	}

	return query, args
}
