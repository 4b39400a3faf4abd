package schema

import (
	"fmt"

	"github.com/hurou927/db-tree/internal/graph"
)

// Tree is the schema graph: a database root whose children are tables,
// whose children are columns. After foreign keys are unified a column may
// belong to several tables.
//
// A Tree is not safe for concurrent mutation. Once built it is only read.
type Tree struct {
	g    *graph.Graph[vertex]
	root graph.ID
}

// New returns a tree holding only the database root.
func New(database string) *Tree {
	g := graph.New[vertex]()
	return &Tree{
		g:    g,
		root: g.Add(database, vertex{kind: kindDatabase, primaryKey: graph.None}),
	}
}

// Name returns the database (scope) name.
func (t *Tree) Name() string {
	return t.g.Name(t.root)
}

// CreateTable adds an empty table under the root.
func (t *Tree) CreateTable(name string) Table {
	id := t.g.CreateChild(t.root, name, vertex{kind: kindTable, primaryKey: graph.None})
	return Table{tree: t, id: id}
}

// RemoveTable unlinks tbl from the root. Its columns are left in place so
// shared key columns keep their other owners.
func (t *Tree) RemoveTable(tbl Table) bool {
	return t.g.RemoveChild(t.root, tbl.id) != graph.None
}

// Table returns the named table.
func (t *Tree) Table(name string) (Table, bool) {
	id := t.g.GetChild(t.root, name)
	if id == graph.None {
		return Table{}, false
	}
	return Table{tree: t, id: id}, true
}

// LookupTable is Table with a not-found error.
func (t *Tree) LookupTable(name string) (Table, error) {
	tbl, ok := t.Table(name)
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	return tbl, nil
}

// HasTable reports whether the named table exists.
func (t *Tree) HasTable(name string) bool {
	return t.g.HasChild(t.root, name)
}

// Tables returns every table in catalog order.
func (t *Tree) Tables() []Table {
	ids := t.g.Children(t.root)
	tables := make([]Table, len(ids))
	for i, id := range ids {
		tables[i] = Table{tree: t, id: id}
	}
	return tables
}

// TableNames returns the table names in catalog order.
func (t *Tree) TableNames() []string {
	tables := t.Tables()
	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name()
	}
	return names
}

// Components groups tables that are joined, directly or transitively,
// through shared key columns.
func (t *Tree) Components() [][]Table {
	ids := t.g.Children(t.root)
	comps := graph.FindComponents(ids, func(id graph.ID) []graph.ID {
		var next []graph.ID
		for _, col := range t.g.Children(id) {
			for _, owner := range t.g.Parents(col) {
				if owner != id && t.g.IsChild(t.root, owner) {
					next = append(next, owner)
				}
			}
		}
		return next
	})

	result := make([][]Table, len(comps))
	for i, comp := range comps {
		for _, id := range comp.IDs {
			result[i] = append(result[i], Table{tree: t, id: id})
		}
	}
	return result
}

func (t *Tree) column(id graph.ID) Column {
	return Column{tree: t, id: id}
}

// Table is a handle on a table vertex. Handles compare equal when they
// name the same vertex of the same tree.
type Table struct {
	tree *Tree
	id   graph.ID
}

// Name returns the table name.
func (tb Table) Name() string {
	return tb.tree.g.Name(tb.id)
}

// Columns returns the table's columns, including shared key columns it
// owns together with other tables.
func (tb Table) Columns() []Column {
	ids := tb.tree.g.Children(tb.id)
	cols := make([]Column, len(ids))
	for i, id := range ids {
		cols[i] = tb.tree.column(id)
	}
	return cols
}

// ColumnNames returns the names of Columns.
func (tb Table) ColumnNames() []string {
	cols := tb.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	return names
}

// Column returns the named column.
func (tb Table) Column(name string) (Column, bool) {
	id := tb.tree.g.GetChild(tb.id, name)
	if id == graph.None {
		return Column{}, false
	}
	return tb.tree.column(id), true
}

// LookupColumn is Column with a not-found error.
func (tb Table) LookupColumn(name string) (Column, error) {
	c, ok := tb.Column(name)
	if !ok {
		return Column{}, fmt.Errorf("%w: %q in table %q", ErrColumnNotFound, name, tb.Name())
	}
	return c, nil
}

// HasColumn reports whether the table owns a column with this name.
func (tb Table) HasColumn(name string) bool {
	return tb.tree.g.HasChild(tb.id, name)
}

// CreateColumn adds a new column owned by this table only.
func (tb Table) CreateColumn(name string, info ColumnInfo) Column {
	id := tb.tree.g.CreateChild(tb.id, name, vertex{kind: kindColumn, column: info, primaryKey: graph.None})
	return tb.tree.column(id)
}

// AddColumn makes the table an additional owner of c.
func (tb Table) AddColumn(c Column) {
	tb.tree.g.AddChild(tb.id, c.id)
}

// RemoveColumn drops the table's ownership of c.
func (tb Table) RemoveColumn(c Column) bool {
	return tb.tree.g.RemoveChild(tb.id, c.id) != graph.None
}

// PrimaryKey returns the table's key column. For a composite primary key
// this is the first key column in ordinal order; the others keep KeyPrimary
// as their role but are not the table's key. After foreign keys are unified
// this may be a column shared with other tables.
func (tb Table) PrimaryKey() (Column, bool) {
	id := tb.tree.g.Value(tb.id).primaryKey
	if id == graph.None {
		return Column{}, false
	}
	return tb.tree.column(id), true
}

// PrimaryKeyName returns the key column name, or "" without one.
func (tb Table) PrimaryKeyName() string {
	if pk, ok := tb.PrimaryKey(); ok {
		return pk.Name()
	}
	return ""
}

// SetPrimaryKey points the table's key at c. A zero Column clears it.
func (tb Table) SetPrimaryKey(c Column) {
	id := graph.None
	if c.tree != nil {
		id = c.id
	}
	tb.tree.g.Value(tb.id).primaryKey = id
}

// ForeignKeys returns the columns the table shares with other tables,
// excluding its primary key.
func (tb Table) ForeignKeys() []Column {
	pk, _ := tb.PrimaryKey()
	var fks []Column
	for _, c := range tb.Columns() {
		if c != pk && c.IsLink() {
			fks = append(fks, c)
		}
	}
	return fks
}

// ForeignKeyNames returns the names of ForeignKeys.
func (tb Table) ForeignKeyNames() []string {
	fks := tb.ForeignKeys()
	names := make([]string, len(fks))
	for i, c := range fks {
		names[i] = c.Name()
	}
	return names
}

// Links returns the columns a path search may leave the table through:
// the primary key first when other tables key off it, then ForeignKeys.
func (tb Table) Links() []Column {
	links := tb.ForeignKeys()
	if pk, ok := tb.PrimaryKey(); ok && pk.IsLink() {
		links = append([]Column{pk}, links...)
	}
	return links
}

// Column is a handle on a column vertex.
type Column struct {
	tree *Tree
	id   graph.ID
}

// Name returns the column name.
func (c Column) Name() string {
	return c.tree.g.Name(c.id)
}

// Info returns a copy of the column metadata.
func (c Column) Info() ColumnInfo {
	return c.tree.g.Value(c.id).column
}

// Type returns the raw catalog type.
func (c Column) Type() string {
	return c.Info().Type
}

// BaseType returns the normalized type name, e.g. "varchar" for
// "varchar(255)".
func (c Column) BaseType() string {
	return NormalizeType(c.Info().Type)
}

// Nullable reports whether the column accepts NULL.
func (c Column) Nullable() bool {
	return c.Info().Nullable
}

// KeyRole returns the key flag reported by the catalog.
func (c Column) KeyRole() KeyRole {
	return c.Info().KeyRole
}

// Group returns the classification group.
func (c Column) Group() Group {
	return c.Info().Group
}

// SetGroup overrides the classification group.
func (c Column) SetGroup(g Group) {
	c.tree.g.Value(c.id).column.Group = g
}

// Tables returns every table owning the column, in the order they were
// linked.
func (c Column) Tables() []Table {
	ids := c.tree.g.Parents(c.id)
	tables := make([]Table, len(ids))
	for i, id := range ids {
		tables[i] = Table{tree: c.tree, id: id}
	}
	return tables
}

// TableNames returns the names of Tables.
func (c Column) TableNames() []string {
	tables := c.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name()
	}
	return names
}

// HasTable reports whether a table with this name owns the column.
func (c Column) HasTable(name string) bool {
	return c.tree.g.HasParent(c.id, name)
}

// OwnedBy reports whether tbl owns the column.
func (c Column) OwnedBy(tbl Table) bool {
	return c.tree.g.IsParent(c.id, tbl.id)
}

// AddTable links tbl as an additional owner.
func (c Column) AddTable(tbl Table) {
	c.tree.g.AddParent(c.id, tbl.id)
}

// RemoveTable unlinks tbl.
func (c Column) RemoveTable(tbl Table) bool {
	return c.tree.g.RemoveParent(c.id, tbl.id) != graph.None
}

// IsLink reports whether the column joins more than one table.
func (c Column) IsLink() bool {
	return len(c.tree.g.Parents(c.id)) > 1
}
