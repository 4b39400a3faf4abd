package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockCatalog(t *testing.T, dialect string) (*Catalog, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d, err := Lookup(dialect)
	require.NoError(t, err)
	return New(NewSQLQuerier(db), d, "Actino_Draft"), mock
}

func TestSQLQuerierConvertsBytes(t *testing.T) {
	cat, mock := newMockCatalog(t, MySQL)

	mock.ExpectQuery("SELECT PhageID, Length FROM phage").
		WillReturnRows(sqlmock.NewRows([]string{"PhageID", "Length"}).
			AddRow([]byte("Trixie"), int64(53526)).
			AddRow([]byte("L5"), nil))

	rows, err := cat.Query(context.Background(), "SELECT PhageID, Length FROM phage")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"PhageID": "Trixie", "Length": int64(53526)}, rows[0])
	assert.Equal(t, Row{"PhageID": "L5", "Length": nil}, rows[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLQuerierKeepsBinaryColumns(t *testing.T) {
	cat, mock := newMockCatalog(t, MySQL)

	mock.ExpectQuery("SELECT GeneID, Translation, Notes FROM gene").
		WillReturnRows(mock.NewRowsWithColumnDefinition(
			mock.NewColumn("GeneID").OfType("VARCHAR", ""),
			mock.NewColumn("Translation").OfType("TEXT", ""),
			mock.NewColumn("Notes").OfType("BLOB", []byte{}),
		).AddRow([]byte("Trixie_1"), []byte("MSLK"), []byte{0xde, 0xad}))

	rows, err := cat.Query(context.Background(), "SELECT GeneID, Translation, Notes FROM gene")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"GeneID": "Trixie_1", "Translation": "MSLK", "Notes": []byte{0xde, 0xad}}, rows[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsBinaryType(t *testing.T) {
	for _, name := range []string{"BLOB", "mediumblob", "VARBINARY", "BINARY", "bytea"} {
		assert.True(t, isBinaryType(name), name)
	}
	for _, name := range []string{"", "VARCHAR", "TEXT", "INT", "JSON"} {
		assert.False(t, isBinaryType(name), name)
	}
}

func TestSQLQuerierPropagatesErrors(t *testing.T) {
	cat, mock := newMockCatalog(t, MySQL)
	boom := errors.New("connection lost")

	mock.ExpectQuery("SELECT 1").WillReturnError(boom)

	_, err := cat.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogTablesAndColumns(t *testing.T) {
	cat, mock := newMockCatalog(t, MySQL)
	d := cat.Dialect

	tables := d.ListTables(cat.Scope)
	mock.ExpectQuery(tables.SQL).WithArgs("Actino_Draft").
		WillReturnRows(sqlmock.NewRows([]string{LabelTableName}).AddRow("gene").AddRow("phage"))

	cols := d.ListColumns(cat.Scope, "gene")
	mock.ExpectQuery(cols.SQL).WithArgs("Actino_Draft", "gene").
		WillReturnRows(sqlmock.NewRows([]string{LabelField, LabelType, LabelNull, LabelKey}).
			AddRow("GeneID", "varchar(35)", "NO", "PRI").
			AddRow("PhageID", "varchar(25)", "NO", "MUL").
			AddRow("Notes", "blob", "YES", ""))

	names, err := cat.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gene", "phage"}, names)

	defs, err := cat.Columns(context.Background(), "gene")
	require.NoError(t, err)
	assert.Equal(t, []ColumnDef{
		{Name: "GeneID", Type: "varchar(35)", Nullable: false, Key: "PRI"},
		{Name: "PhageID", Type: "varchar(25)", Nullable: false, Key: "MUL"},
		{Name: "Notes", Type: "blob", Nullable: true, Key: ""},
	}, defs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogForeignKeys(t *testing.T) {
	cat, mock := newMockCatalog(t, MySQL)

	st := cat.Dialect.ListForeignKeys(cat.Scope, "phage")
	mock.ExpectQuery(st.SQL).WithArgs("Actino_Draft", "Actino_Draft", "phage").
		WillReturnRows(sqlmock.NewRows([]string{
			LabelTableName, LabelColumnName, LabelConstraintName, LabelReferencedTableName, LabelReferencedColumnName,
		}).AddRow("gene", "PhageID", "gene_ibfk_1", "phage", "PhageID"))

	fks, err := cat.ForeignKeys(context.Background(), "phage")
	require.NoError(t, err)
	assert.Equal(t, []ForeignKey{{
		Constraint:       "gene_ibfk_1",
		Table:            "gene",
		Column:           "PhageID",
		ReferencedTable:  "phage",
		ReferencedColumn: "PhageID",
	}}, fks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogDistinctCount(t *testing.T) {
	cat, mock := newMockCatalog(t, MySQL)

	mock.ExpectQuery("SELECT COUNT(DISTINCT `Cluster`) AS distinct_count FROM `phage`").
		WillReturnRows(sqlmock.NewRows([]string{LabelDistinctCount}).AddRow([]byte("12")))

	n, err := cat.DistinctCount(context.Background(), "phage", "Cluster")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogClose(t *testing.T) {
	cat := New(nil, nil, "x")
	assert.NoError(t, cat.Close())

	called := false
	cat.OnClose(func() error { called = true; return nil })
	assert.NoError(t, cat.Close())
	assert.True(t, called)
}
