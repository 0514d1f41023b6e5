package repository

import (
	"fmt"
	"strings"
)

// updateBuilder assembles a partial UPDATE statement from the fields a
// caller explicitly provided. Columns keep the order in which they were
// added (callers add them in declaration order), updated_at is always
// refreshed, and the row id is always the final positional parameter.
// Columns never added are never referenced, so omitted optional fields
// keep whatever value they had.
type updateBuilder struct {
	assignments []string
	params      []interface{}
}

func newUpdateBuilder() *updateBuilder {
	return &updateBuilder{}
}

// Set adds a plain "column = $n" assignment.
func (b *updateBuilder) Set(column string, value interface{}) {
	b.params = append(b.params, value)
	b.assignments = append(b.assignments, fmt.Sprintf("%s = $%d", column, len(b.params)))
}

// SetExpr adds an assignment whose placeholder is wrapped in a SQL
// expression, e.g. SetExpr("geometria", "ST_GeomFromText(%s, 4326)", wkt).
// expr must contain exactly one %s verb.
func (b *updateBuilder) SetExpr(column, expr string, value interface{}) {
	b.params = append(b.params, value)
	placeholder := fmt.Sprintf("$%d", len(b.params))
	b.assignments = append(b.assignments, fmt.Sprintf("%s = %s", column, fmt.Sprintf(expr, placeholder)))
}

// Empty reports whether no field assignments were added. The automatic
// updated_at refresh does not count.
func (b *updateBuilder) Empty() bool {
	return len(b.assignments) == 0
}

// Build finalizes the statement against table, appending the updated_at
// refresh and the WHERE clause on id. When returning is non-empty a
// RETURNING clause is added.
func (b *updateBuilder) Build(table string, id interface{}, returning string) (string, []interface{}) {
	assignments := append(append([]string{}, b.assignments...), "updated_at = CURRENT_TIMESTAMP")
	params := append(append([]interface{}{}, b.params...), id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d",
		table,
		strings.Join(assignments, ", "),
		len(params),
	)
	if returning != "" {
		query += " RETURNING " + returning
	}

	return query, params
}
