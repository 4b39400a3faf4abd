package schema

import (
	"fmt"
	"strings"

	"github.com/hurou927/db-tree/internal/graph"
)

// Hop is one step of a Path: move into Table through the shared key column
// Key.
type Hop struct {
	Table string
	Key   string
}

// Path is an ordered list of hops. The starting table is not included, so
// the path from a table to itself is empty.
type Path []Hop

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, h := range p {
		parts[i] = h.Table + "." + h.Key
	}
	return strings.Join(parts, " -> ")
}

func (p Path) extend(table, key string) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, Hop{Table: table, Key: key})
}

// FindPath looks up both tables by name and returns FindPath between them.
func (t *Tree) FindPath(from, to string) (Path, error) {
	src, err := t.LookupTable(from)
	if err != nil {
		return nil, err
	}
	dst, err := t.LookupTable(to)
	if err != nil {
		return nil, err
	}
	path, ok := FindPath(src, dst)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoPath, from, to)
	}
	return path, nil
}

// frame is one table on the search stack.
type frame struct {
	table Table
	path  Path
	links []Column
	link  int // current index into links
	owner int // next index into the current link's owners; -1 before the target check
}

func newFrame(tbl Table, path Path) *frame {
	return &frame{table: tbl, path: path, links: tbl.Links(), owner: -1}
}

// FindPath searches depth-first for a chain of shared key columns leading
// from one table to another. Each table tries its links in Links order;
// a link owned by the target ends the search, otherwise every other owner
// not yet visited is explored before the next link. The first path found
// is returned, which is not necessarily the shortest.
func FindPath(from, to Table) (Path, bool) {
	if from == to {
		return Path{}, true
	}

	visited := map[graph.ID]bool{from.id: true}
	stack := []*frame{newFrame(from, Path{})}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.link >= len(f.links) {
			stack = stack[:len(stack)-1]
			continue
		}

		link := f.links[f.link]
		if f.owner < 0 {
			if link.OwnedBy(to) {
				return f.path.extend(to.Name(), link.Name()), true
			}
			f.owner = 0
		}

		owners := link.Tables()
		if f.owner >= len(owners) {
			f.link++
			f.owner = -1
			continue
		}

		next := owners[f.owner]
		f.owner++
		if next == f.table || visited[next.id] {
			continue
		}
		visited[next.id] = true
		stack = append(stack, newFrame(next, f.path.extend(next.Name(), link.Name())))
	}

	return nil, false
}
