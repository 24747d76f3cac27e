// Package querybuilder renders the few statement shapes the Postgres
// repositories need, with $N placeholders numbered in argument order.
package querybuilder

import (
	"errors"
	"strconv"
	"strings"
)

// statement accumulates SQL text and its bound arguments.
type statement struct {
	sql  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, part := range parts {
		s.sql.WriteString(part)
	}
}

// bind appends value and writes its placeholder.
func (s *statement) bind(value any) {
	s.args = append(s.args, value)
	s.sql.WriteByte('$')
	s.sql.WriteString(strconv.Itoa(len(s.args)))
}

func (s *statement) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		c.render(s)
	}
}

func (s *statement) done() (string, []any, error) {
	return s.sql.String(), s.args, nil
}

// Condition is one predicate of a WHERE clause. Predicates are joined with AND.
type Condition interface {
	render(s *statement)
}

type eq struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eq{column: column, value: value}
}

func (c eq) render(s *statement) {
	s.write(c.column, " = ")
	s.bind(c.value)
}

type in struct {
	column string
	values []any
}

// In matches column against values. An empty list matches nothing.
func In(column string, values []any) Condition {
	return in{column: column, values: values}
}

func (c in) render(s *statement) {
	if len(c.values) == 0 {
		s.write("FALSE")
		return
	}
	s.write(c.column, " IN (")
	for i, v := range c.values {
		if i > 0 {
			s.write(", ")
		}
		s.bind(v)
	}
	s.write(")")
}

type SelectBuilder struct {
	columns []string
	table   string
	joins   []string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// Join takes a full clause, e.g. "JOIN teams ht ON ht.id = f.home_team_id".
func (b *SelectBuilder) Join(clause string) *SelectBuilder {
	b.joins = append(b.joins, clause)
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, terms...)
	return b
}

func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 || b.table == "" {
		return "", nil, errors.New("select needs columns and a table")
	}

	var s statement
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	for _, join := range b.joins {
		s.write(" ", join)
	}
	s.where(b.where)
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return s.done()
}

type assignment struct {
	column string
	value  any
	cast   string
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetCast binds value and casts the placeholder, e.g. $5::jsonb.
func (b *UpdateBuilder) SetCast(column string, value any, pgType string) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value, cast: pgType})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses an UPDATE without a WHERE so a missing id never rewrites a table.
func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if b.table == "" || len(b.sets) == 0 {
		return "", nil, errors.New("update needs a table and at least one column")
	}
	if len(b.where) == 0 {
		return "", nil, errors.New("update without a where clause")
	}

	var s statement
	s.write("UPDATE ", b.table, " SET ")
	for i, a := range b.sets {
		if i > 0 {
			s.write(", ")
		}
		s.write(a.column, " = ")
		s.bind(a.value)
		if a.cast != "" {
			s.write("::", a.cast)
		}
	}
	s.where(b.where)
	return s.done()
}
