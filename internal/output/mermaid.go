package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hurou927/db-tree/internal/schema"
)

// edge joins a table to the table whose key column it shares.
type edge struct {
	from, to, key string
}

// edges returns one edge per extra owner of every shared column, pointing
// at the column's first owner (the table the key was originally defined
// on). Each shared column is reported once.
func edges(tree *schema.Tree) []edge {
	seen := make(map[schema.Column]bool)
	var out []edge
	for _, tbl := range tree.Tables() {
		for _, col := range tbl.Columns() {
			if seen[col] || !col.IsLink() {
				continue
			}
			seen[col] = true
			owners := col.Tables()
			for _, o := range owners[1:] {
				out = append(out, edge{from: o.Name(), to: owners[0].Name(), key: col.Name()})
			}
		}
	}
	return out
}

// sortedComponents returns the table names of each component, sorted, with
// components ordered by their first name.
func sortedComponents(tree *schema.Tree) [][]string {
	var comps [][]string
	for _, comp := range tree.Components() {
		names := make([]string, len(comp))
		for i, t := range comp {
			names[i] = t.Name()
		}
		sort.Strings(names)
		comps = append(comps, names)
	}
	sort.Slice(comps, func(i, j int) bool {
		return comps[i][0] < comps[j][0]
	})
	return comps
}

// WriteMermaid writes the table graph in Mermaid format to w.
// Each connected component is a subgraph.
func WriteMermaid(w io.Writer, tree *schema.Tree) error {
	components := sortedComponents(tree)
	all := edges(tree)

	fmt.Fprintln(w, "graph TD")

	for i, comp := range components {
		fmt.Fprintf(w, "    subgraph component_%d\n", i+1)

		tableSet := make(map[string]bool, len(comp))
		for _, t := range comp {
			tableSet[t] = true
		}

		linked := make(map[string]bool)
		for _, e := range all {
			if !tableSet[e.from] {
				continue
			}
			linked[e.from] = true
			linked[e.to] = true
			fmt.Fprintf(w, "        %s -->|%s| %s\n", mermaidID(e.from), e.key, mermaidID(e.to))
		}

		// Standalone nodes.
		for _, t := range comp {
			if !linked[t] {
				fmt.Fprintf(w, "        %s\n", mermaidID(t))
			}
		}

		fmt.Fprintln(w, "    end")
		if i < len(components)-1 {
			fmt.Fprintln(w)
		}
	}

	return nil
}

// WriteText writes a text summary of the table graph to w.
func WriteText(w io.Writer, tree *schema.Tree) error {
	components := sortedComponents(tree)
	all := edges(tree)

	fmt.Fprintf(w, "Database: %s\n", tree.Name())
	fmt.Fprintf(w, "Tables: %d\n", len(tree.Tables()))
	fmt.Fprintf(w, "Shared keys: %d\n", len(all))
	fmt.Fprintf(w, "Connected Components: %d\n\n", len(components))

	var noPKTables []string
	for _, tbl := range tree.Tables() {
		if _, ok := tbl.PrimaryKey(); !ok {
			noPKTables = append(noPKTables, tbl.Name())
		}
	}
	if len(noPKTables) > 0 {
		sort.Strings(noPKTables)
		fmt.Fprintf(w, "WARNING: Tables without primary key: %v\n\n", noPKTables)
	}

	for i, comp := range components {
		fmt.Fprintf(w, "=== Component %d (%d tables) ===\n", i+1, len(comp))
		for j, name := range comp {
			tbl, _ := tree.Table(name)
			pkInfo := "no PK"
			if pk := tbl.PrimaryKeyName(); pk != "" {
				pkInfo = "PK: " + pk
			}
			links := "none"
			if names := linkNames(tbl); len(names) > 0 {
				links = strings.Join(names, ", ")
			}
			fmt.Fprintf(w, "    %d. %s (%d cols, %s, links: %s)\n",
				j+1, name, len(tbl.Columns()), pkInfo, links)
		}
		fmt.Fprintln(w)
	}

	return nil
}

func linkNames(tbl schema.Table) []string {
	links := tbl.Links()
	names := make([]string, len(links))
	for i, c := range links {
		names[i] = c.Name()
	}
	return names
}

// mermaidID converts a table name to a Mermaid-safe node ID.
func mermaidID(name string) string {
	return strings.NewReplacer(".", "_", " ", "_", "-", "_").Replace(name)
}
