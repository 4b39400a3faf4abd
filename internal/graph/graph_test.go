package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(g *Graph[int], ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Name(id)
	}
	return out
}

func TestAddChildLinksBothEnds(t *testing.T) {
	g := New[int]()
	db := g.Add("db", 0)
	tbl := g.Add("phage", 1)

	g.AddChild(db, tbl)

	assert.Equal(t, []ID{tbl}, g.Children(db))
	assert.Equal(t, []ID{db}, g.Parents(tbl))
	assert.True(t, g.IsChild(db, tbl))
	assert.True(t, g.IsParent(tbl, db))
}

func TestCreateParentAndChild(t *testing.T) {
	g := New[int]()
	col := g.Add("PhageID", 7)

	phage := g.CreateParent(col, "phage", 1)
	gene := g.CreateParent(col, "gene", 2)
	leaf := g.CreateChild(col, "leaf", 3)

	assert.Equal(t, []string{"phage", "gene"}, names(g, g.Parents(col)))
	assert.Equal(t, []string{"leaf"}, names(g, g.Children(col)))
	assert.Equal(t, 2, *g.Value(gene))
	assert.Equal(t, 7, *g.Value(col))
	assert.True(t, g.IsChild(phage, col))
	assert.True(t, g.IsParent(leaf, col))
	assert.Equal(t, 4, g.Len())
}

func TestHasAndGetByName(t *testing.T) {
	g := New[int]()
	tbl := g.Add("gene", 0)
	a := g.CreateChild(tbl, "GeneID", 0)
	g.CreateChild(tbl, "PhageID", 0)

	assert.True(t, g.HasChild(tbl, "GeneID"))
	assert.False(t, g.HasChild(tbl, "Missing"))
	assert.Equal(t, a, g.GetChild(tbl, "GeneID"))
	assert.Equal(t, None, g.GetChild(tbl, "Missing"))

	assert.True(t, g.HasParent(a, "gene"))
	assert.Equal(t, tbl, g.GetParent(a, "gene"))
	assert.Equal(t, None, g.GetParent(a, "phage"))
}

func TestRemoveUnlinksBothEnds(t *testing.T) {
	g := New[int]()
	p := g.Add("p", 0)
	c := g.CreateChild(p, "c", 0)
	other := g.Add("other", 0)

	assert.Equal(t, None, g.RemoveChild(p, other), "unlinked vertex")
	assert.Equal(t, None, g.RemoveParent(c, None), "sentinel argument")

	assert.Equal(t, c, g.RemoveChild(p, c))
	assert.Empty(t, g.Children(p))
	assert.Empty(t, g.Parents(c))

	g.AddParent(c, p)
	assert.Equal(t, p, g.RemoveParent(c, p))
	assert.Empty(t, g.Children(p))
	assert.Empty(t, g.Parents(c))
}

func TestRemoveKeepsOrderAndCopies(t *testing.T) {
	g := New[int]()
	col := g.Add("k", 0)
	a := g.CreateParent(col, "a", 0)
	b := g.CreateParent(col, "b", 0)
	c := g.CreateParent(col, "c", 0)

	before := g.Parents(col)
	g.RemoveParent(col, b)

	assert.Equal(t, []ID{a, c}, g.Parents(col))
	assert.Equal(t, []ID{a, b, c}, before, "earlier copies are not aliased")
}

func TestDetach(t *testing.T) {
	g := New[int]()
	col := g.Add("k", 0)
	a := g.CreateParent(col, "a", 0)
	b := g.CreateParent(col, "b", 0)
	leaf := g.CreateChild(col, "leaf", 0)

	g.Detach(col)

	assert.Empty(t, g.Parents(col))
	assert.Empty(t, g.Children(col))
	assert.Empty(t, g.Children(a))
	assert.Empty(t, g.Children(b))
	assert.Empty(t, g.Parents(leaf))
}

func TestFindComponents(t *testing.T) {
	adj := map[ID][]ID{
		0: {1},
		1: {0, 2},
		2: {1},
		3: nil,
		4: {5},
		5: {4},
	}
	comps := FindComponents([]ID{0, 1, 2, 3, 4, 5}, func(id ID) []ID { return adj[id] })

	require.Len(t, comps, 3)
	assert.ElementsMatch(t, []ID{0, 1, 2}, comps[0].IDs)
	assert.Equal(t, []ID{3}, comps[1].IDs)
	assert.ElementsMatch(t, []ID{4, 5}, comps[2].IDs)
}
