package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hurou927/db-tree/internal/schema"
)

// WriteDump prints every table of tree with one row per column: name,
// normalized type, group, nullability and catalog key flag. It is meant
// for people, not for parsing.
func WriteDump(w io.Writer, tree *schema.Tree) error {
	for _, tbl := range tree.Tables() {
		if _, err := fmt.Fprintf(w, "%s:\n", tbl.Name()); err != nil {
			return err
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"Field", "Type", "Group", "Null", "Key", "Shared with"})
		for _, col := range tbl.Columns() {
			tw.AppendRow(table.Row{
				col.Name(),
				col.BaseType(),
				col.Group().String(),
				col.Nullable(),
				col.KeyRole().String(),
				sharedWith(col, tbl),
			})
		}
		tw.Render()

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// sharedWith lists the other owners of a shared key column.
func sharedWith(col schema.Column, owner schema.Table) string {
	var others []string
	for _, t := range col.Tables() {
		if t != owner {
			others = append(others, t.Name())
		}
	}
	if len(others) == 0 {
		return ""
	}
	return fmt.Sprint(others)
}
