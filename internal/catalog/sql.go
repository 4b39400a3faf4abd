package catalog

import (
	"context"
	"database/sql"
	"strings"
)

// SQLQuerier runs statements through database/sql. It backs the MySQL and
// SQLite dialects.
type SQLQuerier struct {
	db *sql.DB
}

// NewSQLQuerier wraps db.
func NewSQLQuerier(db *sql.DB) *SQLQuerier {
	return &SQLQuerier{db: db}
}

// Query implements Querier. Text that drivers hand back as []byte (the MySQL
// driver does this for every non-binary column) is converted to string;
// binary columns keep their bytes.
func (q *SQLQuerier) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	binary := make([]bool, len(cols))
	for i, ct := range types {
		binary[i] = isBinaryType(ct.DatabaseTypeName())
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok && !binary[i] {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// isBinaryType reports whether a driver's database type name denotes raw
// bytes rather than text.
func isBinaryType(name string) bool {
	name = strings.ToUpper(name)
	return strings.Contains(name, "BLOB") || strings.Contains(name, "BINARY") || name == "BYTEA"
}

// Close closes the underlying pool.
func (q *SQLQuerier) Close() error {
	return q.db.Close()
}
