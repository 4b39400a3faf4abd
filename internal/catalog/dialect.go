package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Result labels shared by every dialect's catalog statements. The column
// listing mirrors MySQL's SHOW COLUMNS output so the graph builder reads one
// shape regardless of backend.
const (
	LabelTableName            = "TABLE_NAME"
	LabelColumnName           = "COLUMN_NAME"
	LabelConstraintName       = "CONSTRAINT_NAME"
	LabelReferencedTableName  = "REFERENCED_TABLE_NAME"
	LabelReferencedColumnName = "REFERENCED_COLUMN_NAME"
	LabelField                = "Field"
	LabelType                 = "Type"
	LabelNull                 = "Null"
	LabelKey                  = "Key"
	LabelDistinctCount        = "distinct_count"
)

// Dialect names.
const (
	MySQL    = "mysql"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// ErrInvalidIdentifier is returned for names that cannot be quoted safely.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Dialect knows how one backend quotes identifiers, numbers placeholders
// and exposes its catalog.
type Dialect interface {
	Name() string
	// Quote returns ident as a quoted identifier.
	Quote(ident string) (string, error)
	// Placeholder returns the bind marker for the n-th argument, 1-based.
	Placeholder(n int) string
	ListTables(scope string) Statement
	ListColumns(scope, table string) Statement
	ListForeignKeys(scope, table string) Statement
	CountDistinct(table, column string) (Statement, error)
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	switch name {
	case MySQL:
		return mysqlDialect{}, nil
	case Postgres:
		return postgresDialect{}, nil
	case SQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q (supported: mysql, postgres, sqlite)", name)
	}
}

// quoteWith wraps ident in q, doubling any embedded q.
func quoteWith(ident string, q byte) (string, error) {
	if ident == "" || strings.IndexByte(ident, 0) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, ident)
	}
	s := string(q)
	return s + strings.ReplaceAll(ident, s, s+s) + s, nil
}

func countDistinct(d Dialect, table, column string) (Statement, error) {
	t, err := d.Quote(table)
	if err != nil {
		return Statement{}, err
	}
	c, err := d.Quote(column)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		SQL: fmt.Sprintf("SELECT COUNT(DISTINCT %s) AS %s FROM %s", c, LabelDistinctCount, t),
	}, nil
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return MySQL }

func (mysqlDialect) Quote(ident string) (string, error) { return quoteWith(ident, '`') }

func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) ListTables(scope string) Statement {
	return Statement{
		SQL: `SELECT DISTINCT TABLE_NAME FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME`,
		Args: []any{scope},
	}
}

func (mysqlDialect) ListColumns(scope, table string) Statement {
	return Statement{
		SQL: "SELECT COLUMN_NAME AS `Field`, COLUMN_TYPE AS `Type`, IS_NULLABLE AS `Null`, COLUMN_KEY AS `Key`\n" +
			"FROM INFORMATION_SCHEMA.COLUMNS\n" +
			"WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION",
		Args: []any{scope, table},
	}
}

func (mysqlDialect) ListForeignKeys(scope, table string) Statement {
	return Statement{
		SQL: `SELECT TABLE_NAME, COLUMN_NAME, CONSTRAINT_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = ? AND REFERENCED_TABLE_SCHEMA = ? AND REFERENCED_TABLE_NAME = ?
ORDER BY TABLE_NAME, CONSTRAINT_NAME, ORDINAL_POSITION`,
		Args: []any{scope, scope, table},
	}
}

func (d mysqlDialect) CountDistinct(table, column string) (Statement, error) {
	return countDistinct(d, table, column)
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return Postgres }

func (postgresDialect) Quote(ident string) (string, error) { return quoteWith(ident, '"') }

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) ListTables(scope string) Statement {
	return Statement{
		SQL: `
		SELECT c.relname AS "TABLE_NAME"
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'r'
			AND n.nspname = $1
		ORDER BY c.relname
	`,
		Args: []any{scope},
	}
}

// ListColumns renders varchar/bpchar lengths the way MySQL does so the
// classifier can size them.
func (postgresDialect) ListColumns(scope, table string) Statement {
	return Statement{
		SQL: `
		SELECT
			a.attname AS "Field",
			t.typname || CASE
				WHEN t.typname IN ('varchar', 'bpchar') AND a.atttypmod > 4
				THEN '(' || (a.atttypmod - 4) || ')'
				ELSE ''
			END AS "Type",
			CASE WHEN a.attnotnull THEN 'NO' ELSE 'YES' END AS "Null",
			CASE
				WHEN EXISTS (
					SELECT 1 FROM pg_constraint con
					WHERE con.conrelid = c.oid AND con.contype = 'p' AND a.attnum = ANY(con.conkey)
				) THEN 'PRI'
				WHEN EXISTS (
					SELECT 1 FROM pg_constraint con
					WHERE con.conrelid = c.oid AND con.contype = 'f' AND a.attnum = ANY(con.conkey)
				) THEN 'MUL'
				WHEN EXISTS (
					SELECT 1 FROM pg_constraint con
					WHERE con.conrelid = c.oid AND con.contype = 'u' AND a.attnum = ANY(con.conkey)
				) THEN 'UNI'
				ELSE ''
			END AS "Key"
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_attribute a ON a.attrelid = c.oid
		JOIN pg_type t ON t.oid = a.atttypid
		WHERE c.relkind = 'r'
			AND a.attnum > 0
			AND NOT a.attisdropped
			AND n.nspname = $1
			AND c.relname = $2
		ORDER BY a.attnum
	`,
		Args: []any{scope, table},
	}
}

func (postgresDialect) ListForeignKeys(scope, table string) Statement {
	return Statement{
		SQL: `
		SELECT
			cc.relname AS "TABLE_NAME",
			ca.attname AS "COLUMN_NAME",
			con.conname AS "CONSTRAINT_NAME",
			pc.relname AS "REFERENCED_TABLE_NAME",
			pa.attname AS "REFERENCED_COLUMN_NAME"
		FROM pg_constraint con
		JOIN pg_class cc ON cc.oid = con.conrelid
		JOIN pg_namespace cn ON cn.oid = cc.relnamespace
		JOIN pg_class pc ON pc.oid = con.confrelid
		JOIN pg_namespace pn ON pn.oid = pc.relnamespace
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS u(child_attnum, parent_attnum, ord)
		JOIN pg_attribute ca ON ca.attrelid = cc.oid AND ca.attnum = u.child_attnum
		JOIN pg_attribute pa ON pa.attrelid = pc.oid AND pa.attnum = u.parent_attnum
		WHERE con.contype = 'f'
			AND cn.nspname = $1
			AND pn.nspname = $1
			AND pc.relname = $2
		ORDER BY cc.relname, con.conname, u.ord
	`,
		Args: []any{scope, table},
	}
}

func (d postgresDialect) CountDistinct(table, column string) (Statement, error) {
	return countDistinct(d, table, column)
}

// sqliteDialect ignores the scope: a connection sees exactly one main
// database.
type sqliteDialect struct{}

func (sqliteDialect) Name() string { return SQLite }

func (sqliteDialect) Quote(ident string) (string, error) { return quoteWith(ident, '"') }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) ListTables(string) Statement {
	return Statement{
		SQL: `SELECT name AS TABLE_NAME FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`,
	}
}

func (sqliteDialect) ListColumns(_, table string) Statement {
	return Statement{
		SQL: `SELECT p.name AS Field, p.type AS Type,
	CASE WHEN p."notnull" = 0 AND p.pk = 0 THEN 'YES' ELSE 'NO' END AS "Null",
	CASE
		WHEN p.pk > 0 THEN 'PRI'
		WHEN EXISTS (SELECT 1 FROM pragma_foreign_key_list(?) f WHERE f."from" = p.name) THEN 'MUL'
		ELSE ''
	END AS "Key"
FROM pragma_table_info(?) p ORDER BY p.cid`,
		Args: []any{table, table},
	}
}

func (sqliteDialect) ListForeignKeys(_, table string) Statement {
	return Statement{
		SQL: `SELECT m.name AS TABLE_NAME, f."from" AS COLUMN_NAME, 'fk_' || m.name || '_' || f.id AS CONSTRAINT_NAME,
	f."table" AS REFERENCED_TABLE_NAME, COALESCE(f."to", f."from") AS REFERENCED_COLUMN_NAME
FROM sqlite_master m JOIN pragma_foreign_key_list(m.name) f
WHERE m.type = 'table' AND f."table" = ?
ORDER BY m.name, f.id, f.seq`,
		Args: []any{table},
	}
}

func (d sqliteDialect) CountDistinct(table, column string) (Statement, error) {
	return countDistinct(d, table, column)
}

// Rebind rewrites the ? markers in expr into d's placeholders, numbering
// from next. Markers inside quoted literals or identifiers are left alone.
// It returns the rewritten text, the number of markers found and the next
// free placeholder number.
func Rebind(d Dialect, expr string, next int) (string, int, int) {
	var b strings.Builder
	b.Grow(len(expr))
	var quote byte
	count := 0
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			b.WriteByte(ch)
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			b.WriteByte(ch)
		case ch == '?':
			b.WriteString(d.Placeholder(next))
			next++
			count++
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), count, next
}
