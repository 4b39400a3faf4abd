// Package catalog defines the query interface the schema graph is built
// from and the SQL dialects that speak to MySQL, PostgreSQL and SQLite.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Row is one result row keyed by column label.
type Row map[string]any

// String returns the value under key as text. NULL and missing keys give "".
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value under key as an integer. Drivers disagree on the
// Go type of COUNT results, so every integer kind and decimal text is
// accepted.
func (r Row) Int(key string) (int64, error) {
	switch v := r[key].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case nil:
		return 0, fmt.Errorf("column %q is NULL or missing", key)
	default:
		return 0, fmt.Errorf("column %q has non-integer type %T", key, v)
	}
}

// Querier executes a statement and returns every row. Implementations pass
// backend errors through unchanged apart from wrapping.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
}

// Statement is SQL text with its bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Catalog is a live handle bound to one scope: a MySQL database, a
// PostgreSQL schema or the SQLite main database.
type Catalog struct {
	Querier
	Dialect Dialect
	// Scope is the database (or schema) name the catalog statements filter on.
	Scope string

	closer func() error
}

// New binds q to scope using dialect d.
func New(q Querier, d Dialect, scope string) *Catalog {
	return &Catalog{Querier: q, Dialect: d, Scope: scope}
}

// OnClose registers the function Close calls.
func (c *Catalog) OnClose(fn func() error) {
	c.closer = fn
}

// Close releases the underlying connection, if any.
func (c *Catalog) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Exec runs a statement.
func (c *Catalog) Exec(ctx context.Context, st Statement) ([]Row, error) {
	return c.Query(ctx, st.SQL, st.Args...)
}

// Tables lists the table names in scope.
func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	rows, err := c.Exec(ctx, c.Dialect.ListTables(c.Scope))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.String(LabelTableName))
	}
	return names, nil
}

// ColumnDef describes one column as the catalog reports it.
type ColumnDef struct {
	Name     string
	Type     string
	Nullable bool
	// Key is the raw key flag: "PRI", "MUL", "UNI" or "".
	Key string
}

// Columns lists the columns of table in ordinal order.
func (c *Catalog) Columns(ctx context.Context, table string) ([]ColumnDef, error) {
	rows, err := c.Exec(ctx, c.Dialect.ListColumns(c.Scope, table))
	if err != nil {
		return nil, err
	}
	defs := make([]ColumnDef, 0, len(rows))
	for _, row := range rows {
		defs = append(defs, ColumnDef{
			Name:     row.String(LabelField),
			Type:     row.String(LabelType),
			Nullable: row.String(LabelNull) == "YES",
			Key:      row.String(LabelKey),
		})
	}
	return defs, nil
}

// ForeignKey is one column pair of a foreign-key constraint.
type ForeignKey struct {
	Constraint       string
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// ForeignKeys lists the constraint columns that reference table.
func (c *Catalog) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := c.Exec(ctx, c.Dialect.ListForeignKeys(c.Scope, table))
	if err != nil {
		return nil, err
	}
	fks := make([]ForeignKey, 0, len(rows))
	for _, row := range rows {
		fks = append(fks, ForeignKey{
			Constraint:       row.String(LabelConstraintName),
			Table:            row.String(LabelTableName),
			Column:           row.String(LabelColumnName),
			ReferencedTable:  row.String(LabelReferencedTableName),
			ReferencedColumn: row.String(LabelReferencedColumnName),
		})
	}
	return fks, nil
}

// DistinctCount returns COUNT(DISTINCT column) over table.
func (c *Catalog) DistinctCount(ctx context.Context, table, column string) (int64, error) {
	st, err := c.Dialect.CountDistinct(table, column)
	if err != nil {
		return 0, err
	}
	rows, err := c.Exec(ctx, st)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int(LabelDistinctCount)
}
