// Package query builds and runs the SELECT statements that narrow a set of
// key values one table at a time.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hurou927/db-tree/internal/catalog"
)

// maxInValues caps the IN list of one statement; larger value sets are
// split across several statements.
const maxInValues = 10000

// ErrBadCondition is returned for conditions whose placeholders do not
// match their arguments or whose operator is not allowed.
var ErrBadCondition = errors.New("bad condition")

// Condition is a boolean SQL fragment. Expr marks arguments with ? and is
// rewritten to the dialect's placeholders when the statement is built.
type Condition struct {
	Expr string
	Args []any
	// column is set by Compare and quoted at build time.
	column string
	op     string
}

// Raw returns a condition used verbatim apart from placeholder rewriting.
func Raw(expr string, args ...any) Condition {
	return Condition{Expr: expr, Args: args}
}

var operators = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
	"LIKE": true, "NOT LIKE": true,
}

// Compare returns "column op ?" with the column quoted for the target
// dialect and value bound.
func Compare(column, op string, value any) Condition {
	return Condition{column: column, op: strings.ToUpper(strings.TrimSpace(op)), Args: []any{value}}
}

func (c Condition) String() string {
	if c.column != "" {
		return fmt.Sprintf("%s %s ?", c.column, c.op)
	}
	return c.Expr
}

// render returns the condition text for d, numbering placeholders from next.
func (c Condition) render(d catalog.Dialect, next int) (string, int, error) {
	expr := c.Expr
	if c.column != "" {
		if !operators[c.op] {
			return "", next, fmt.Errorf("%w: operator %q", ErrBadCondition, c.op)
		}
		col, err := d.Quote(c.column)
		if err != nil {
			return "", next, err
		}
		expr = col + " " + c.op + " ?"
	}
	if strings.TrimSpace(expr) == "" {
		return "", next, fmt.Errorf("%w: empty expression", ErrBadCondition)
	}

	out, n, next := catalog.Rebind(d, expr, next)
	if n != len(c.Args) {
		return "", next, fmt.Errorf("%w: %q has %d placeholders for %d arguments", ErrBadCondition, c.Expr, n, len(c.Args))
	}
	return out, next, nil
}

// selectStatement builds SELECT column FROM table with the conditions
// and, when values is non-empty, "keyColumn IN (...)" joined by AND.
func selectStatement(d catalog.Dialect, table, column string, conds []Condition, keyColumn string, values []any) (catalog.Statement, error) {
	tbl, err := d.Quote(table)
	if err != nil {
		return catalog.Statement{}, err
	}
	col, err := d.Quote(column)
	if err != nil {
		return catalog.Statement{}, err
	}

	var where []string
	var args []any
	argIdx := 1

	for _, c := range conds {
		expr, next, err := c.render(d, argIdx)
		if err != nil {
			return catalog.Statement{}, err
		}
		where = append(where, "("+expr+")")
		args = append(args, c.Args...)
		argIdx = next
	}

	if len(values) > 0 {
		key, err := d.Quote(keyColumn)
		if err != nil {
			return catalog.Statement{}, err
		}
		cond, inArgs, _ := buildIN(d, key, values, argIdx)
		where = append(where, cond)
		args = append(args, inArgs...)
	}

	q := fmt.Sprintf("SELECT %s FROM %s", col, tbl)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return catalog.Statement{SQL: q, Args: args}, nil
}

func buildIN(d catalog.Dialect, col string, values []any, argIdx int) (string, []any, int) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = d.Placeholder(argIdx)
		args[i] = v
		argIdx++
	}
	return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")), args, argIdx
}

// chunks splits values into slices of at most size elements. An empty
// input yields one empty chunk so the statement still runs once.
func chunks(values []any, size int) [][]any {
	if len(values) == 0 {
		return [][]any{nil}
	}
	var out [][]any
	for len(values) > size {
		out = append(out, values[:size])
		values = values[size:]
	}
	return append(out, values)
}
