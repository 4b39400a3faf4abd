package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/hurou927/db-tree/internal/catalog"
	"github.com/hurou927/db-tree/internal/schema"
)

// ErrNoKeyColumn is returned when prior values are given for a table that
// has no primary key and no explicit values column.
var ErrNoKeyColumn = errors.New("no key column to match values against")

// ValuesQuery asks for the values of Column in Table.
type ValuesQuery struct {
	Table  string
	Column string
	// ValuesColumn is the column Values are matched against. Empty means
	// the table's primary key.
	ValuesColumn string
	// Conditions are ANDed into the WHERE clause.
	Conditions []Condition
	// Values, when non-empty, keeps only rows whose key is one of them.
	Values []any
}

// Builder turns ValuesQuery requests into statements checked against a
// schema tree and runs them on a catalog.
type Builder struct {
	tree *schema.Tree
	cat  *catalog.Catalog
}

// NewBuilder returns a Builder for tree backed by cat.
func NewBuilder(tree *schema.Tree, cat *catalog.Catalog) *Builder {
	return &Builder{tree: tree, cat: cat}
}

// Build validates q and returns the statements that answer it. More than
// one statement is returned only when Values exceeds the IN list cap.
func (b *Builder) Build(q ValuesQuery) ([]catalog.Statement, error) {
	tbl, err := b.tree.LookupTable(q.Table)
	if err != nil {
		return nil, err
	}
	if _, err := tbl.LookupColumn(q.Column); err != nil {
		return nil, err
	}

	key := q.ValuesColumn
	if len(q.Values) > 0 {
		if key == "" {
			key = tbl.PrimaryKeyName()
			if key == "" {
				return nil, fmt.Errorf("%w: table %q", ErrNoKeyColumn, q.Table)
			}
		} else if _, err := tbl.LookupColumn(key); err != nil {
			return nil, err
		}
	}

	var stmts []catalog.Statement
	for _, chunk := range chunks(q.Values, maxInValues) {
		st, err := selectStatement(b.cat.Dialect, q.Table, q.Column, q.Conditions, key, chunk)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

// Values runs q and returns the values of q.Column in result order.
// Backend errors are returned wrapped and never retried.
func (b *Builder) Values(ctx context.Context, q ValuesQuery) ([]any, error) {
	stmts, err := b.Build(q)
	if err != nil {
		return nil, err
	}

	var values []any
	for _, st := range stmts {
		rows, err := b.cat.Exec(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("selecting %s.%s: %w", q.Table, q.Column, err)
		}
		for _, row := range rows {
			values = append(values, row[q.Column])
		}
	}
	return values, nil
}

// Follow translates a set of primary-key values of table from into the
// primary-key values of the last table on path, one statement per table:
// each step selects the next hop's key column restricted to the current
// set, with the conditions registered for that table in where. A nil
// values starts from every row of from; an empty non-nil values matches
// nothing. NULL keys never carry over to the next table, and an empty
// intermediate set ends the walk with no values. When the last table has
// no primary key the shared key values of the final hop are returned,
// checked against that table.
func (b *Builder) Follow(ctx context.Context, from string, path schema.Path, values []any, where map[string][]Condition) ([]any, error) {
	table, err := b.tree.LookupTable(from)
	if err != nil {
		return nil, err
	}
	if values != nil && len(values) == 0 {
		return nil, nil
	}

	current := values
	key := ""
	for _, hop := range path {
		next, err := b.Values(ctx, ValuesQuery{
			Table:        table.Name(),
			Column:       hop.Key,
			ValuesColumn: key,
			Conditions:   where[table.Name()],
			Values:       current,
		})
		if err != nil {
			return nil, err
		}
		if current = distinct(next); len(current) == 0 {
			return nil, nil
		}
		if table, err = b.tree.LookupTable(hop.Table); err != nil {
			return nil, err
		}
		key = hop.Key
	}

	col := table.PrimaryKeyName()
	if col == "" {
		col = key
	}
	if col == "" {
		return nil, fmt.Errorf("%w: table %q", ErrNoKeyColumn, table.Name())
	}

	result, err := b.Values(ctx, ValuesQuery{
		Table:        table.Name(),
		Column:       col,
		ValuesColumn: key,
		Conditions:   where[table.Name()],
		Values:       current,
	})
	if err != nil {
		return nil, err
	}
	if result = distinct(result); len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

// distinct drops NULLs and repeated values, keeping first occurrences in
// order.
func distinct(values []any) []any {
	seen := make(map[string]bool, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		k := fmt.Sprintf("%T:%v", v, v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
