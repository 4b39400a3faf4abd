package graph

// ID addresses a vertex in a Graph.
type ID int

// None is returned wherever a vertex was expected but does not exist.
const None ID = -1

type vertex[T any] struct {
	name     string
	value    T
	parents  []ID
	children []ID
}

// Graph is an arena of named vertices linked by parent/child edges.
// Every edge is stored on both ends: if c is a child of p then p is a
// parent of c. Vertices are never reclaimed; a vertex with no edges is
// simply unreachable. A vertex may have any number of parents.
type Graph[T any] struct {
	vertices []vertex[T]
}

// New returns an empty graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{}
}

// Add creates an unlinked vertex and returns its ID.
func (g *Graph[T]) Add(name string, value T) ID {
	g.vertices = append(g.vertices, vertex[T]{name: name, value: value})
	return ID(len(g.vertices) - 1)
}

// Len returns the number of vertices ever added, linked or not.
func (g *Graph[T]) Len() int {
	return len(g.vertices)
}

// Name returns the vertex name.
func (g *Graph[T]) Name(id ID) string {
	return g.vertices[id].name
}

// Value returns a pointer to the vertex payload. The pointer is only valid
// until the next Add.
func (g *Graph[T]) Value(id ID) *T {
	return &g.vertices[id].value
}

// Parents returns a copy of the vertex's parents in insertion order.
func (g *Graph[T]) Parents(id ID) []ID {
	return append([]ID(nil), g.vertices[id].parents...)
}

// Children returns a copy of the vertex's children in insertion order.
func (g *Graph[T]) Children(id ID) []ID {
	return append([]ID(nil), g.vertices[id].children...)
}

// AddParent links parent above id. Callers must not link the same pair twice.
func (g *Graph[T]) AddParent(id, parent ID) {
	g.vertices[parent].children = append(g.vertices[parent].children, id)
	g.vertices[id].parents = append(g.vertices[id].parents, parent)
}

// AddChild links child below id. Callers must not link the same pair twice.
func (g *Graph[T]) AddChild(id, child ID) {
	g.AddParent(child, id)
}

// RemoveParent unlinks parent from id and returns it, or None if the two
// were not linked.
func (g *Graph[T]) RemoveParent(id, parent ID) ID {
	if parent == None || !g.IsParent(id, parent) {
		return None
	}
	g.vertices[id].parents = without(g.vertices[id].parents, parent)
	g.vertices[parent].children = without(g.vertices[parent].children, id)
	return parent
}

// RemoveChild unlinks child from id and returns it, or None if the two
// were not linked.
func (g *Graph[T]) RemoveChild(id, child ID) ID {
	if child == None || g.RemoveParent(child, id) == None {
		return None
	}
	return child
}

// CreateParent adds a new vertex and links it as a parent of id.
func (g *Graph[T]) CreateParent(id ID, name string, value T) ID {
	parent := g.Add(name, value)
	g.AddParent(id, parent)
	return parent
}

// CreateChild adds a new vertex and links it as a child of id.
func (g *Graph[T]) CreateChild(id ID, name string, value T) ID {
	child := g.Add(name, value)
	g.AddChild(id, child)
	return child
}

// HasParent reports whether id has a parent with the given name.
func (g *Graph[T]) HasParent(id ID, name string) bool {
	return g.GetParent(id, name) != None
}

// HasChild reports whether id has a child with the given name.
func (g *Graph[T]) HasChild(id ID, name string) bool {
	return g.GetChild(id, name) != None
}

// GetParent returns the first parent with the given name, or None.
func (g *Graph[T]) GetParent(id ID, name string) ID {
	return g.find(g.vertices[id].parents, name)
}

// GetChild returns the first child with the given name, or None.
func (g *Graph[T]) GetChild(id ID, name string) ID {
	return g.find(g.vertices[id].children, name)
}

// IsParent reports whether parent is linked above id.
func (g *Graph[T]) IsParent(id, parent ID) bool {
	return contains(g.vertices[id].parents, parent)
}

// IsChild reports whether child is linked below id.
func (g *Graph[T]) IsChild(id, child ID) bool {
	return contains(g.vertices[id].children, child)
}

// Detach removes every edge touching id.
func (g *Graph[T]) Detach(id ID) {
	for _, p := range g.Parents(id) {
		g.RemoveParent(id, p)
	}
	for _, c := range g.Children(id) {
		g.RemoveChild(id, c)
	}
}

func (g *Graph[T]) find(ids []ID, name string) ID {
	for _, id := range ids {
		if g.vertices[id].name == name {
			return id
		}
	}
	return None
}

func contains(ids []ID, id ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// without removes the first occurrence of id, keeping order.
func without(ids []ID, id ID) []ID {
	for i, x := range ids {
		if x == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
