package schema

import (
	"database/sql"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/hurou927/db-tree/internal/catalog"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newSQLiteCatalog opens an in-memory database, runs the statements and
// returns a catalog on it.
func newSQLiteCatalog(t *testing.T, stmts ...string) *catalog.Catalog {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, st := range stmts {
		_, err := db.Exec(st)
		require.NoError(t, err, st)
	}

	d, err := catalog.Lookup(catalog.SQLite)
	require.NoError(t, err)
	return catalog.New(catalog.NewSQLQuerier(db), d, "main")
}

// tableDef describes a table for buildTree: column names, the first of which
// is the primary key when pk is true.
type tableDef struct {
	name string
	pk   bool
	cols []string
}

// buildTree creates tables and unlinked columns without touching a catalog.
func buildTree(t *testing.T, defs ...tableDef) *Tree {
	t.Helper()
	tree := New("test")
	for _, s := range defs {
		tbl := tree.CreateTable(s.name)
		for i, c := range s.cols {
			role := KeyNone
			if i == 0 && s.pk {
				role = KeyPrimary
			}
			col := tbl.CreateColumn(c, ColumnInfo{Type: "int(11)", KeyRole: role})
			if role == KeyPrimary {
				tbl.SetPrimaryKey(col)
			}
		}
	}
	return tree
}

// fk links referencing.column to referenced.column.
func fk(t *testing.T, tree *Tree, referencing, referenced, column string) {
	t.Helper()
	tbl, err := tree.LookupTable(referenced)
	require.NoError(t, err)
	require.NoError(t, tree.link(tbl, catalog.ForeignKey{
		Constraint:       referencing + "_" + column,
		Table:            referencing,
		Column:           column,
		ReferencedTable:  referenced,
		ReferencedColumn: column,
	}, quietLogger()))
}

func mustTable(t *testing.T, tree *Tree, name string) Table {
	t.Helper()
	tbl, ok := tree.Table(name)
	require.True(t, ok, name)
	return tbl
}

func mustColumn(t *testing.T, tbl Table, name string) Column {
	t.Helper()
	col, ok := tbl.Column(name)
	require.True(t, ok, "%s.%s", tbl.Name(), name)
	return col
}
