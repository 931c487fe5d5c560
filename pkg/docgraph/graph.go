package docgraph

import (
	"context"
	"slices"

	"github.com/matzehuels/linkgraph/pkg/layout"
	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// Graph is the live view of the thread around one origin sha.
//
// The node table and tree are computed on first use and cached until
// [Graph.Reset]. A Graph is not safe for concurrent use.
type Graph struct {
	store  linkage.Store
	origin linkage.Sha

	nodes *table
	tree  Tree
	links Tree
	order []linkage.Sha
}

// New returns a Graph over store for origin. Nothing is read until the first query.
func New(store linkage.Store, origin linkage.Sha) *Graph {
	return &Graph{store: store, origin: origin}
}

// Origin returns the sha the graph was built for.
func (g *Graph) Origin() linkage.Sha {
	return g.origin
}

// Reset discards the node table, the tree and any presentation order.
// The next query crawls the store again.
func (g *Graph) Reset() {
	g.nodes = nil
	g.tree = nil
	g.links = nil
	g.order = nil
}

func (g *Graph) table(ctx context.Context) (*table, error) {
	if g.nodes != nil {
		return g.nodes, nil
	}
	t, err := crawl(ctx, g.store, g.origin)
	if err != nil {
		return nil, err
	}
	g.nodes = t
	return t, nil
}

func (g *Graph) build(ctx context.Context) error {
	if g.tree != nil {
		return nil
	}
	t, err := g.table(ctx)
	if err != nil {
		return err
	}
	tree, order, err := t.buildTree(t.index[g.origin])
	if err != nil {
		return err
	}
	g.tree = tree
	g.links = tree.Clone()
	g.order = order
	return nil
}

// Node returns the snapshot of sha. The second result is false when sha is
// not reachable from the origin.
func (g *Graph) Node(ctx context.Context, sha linkage.Sha) (Node, bool, error) {
	t, err := g.table(ctx)
	if err != nil {
		return Node{}, false, err
	}
	i, ok := t.index[sha]
	if !ok {
		return Node{}, false, nil
	}
	return t.snapshot(i), true, nil
}

// Nodes returns a snapshot of every crawled document in crawl order,
// including deleted and superseded ones.
func (g *Graph) Nodes(ctx context.Context) ([]Node, error) {
	t, err := g.table(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Node, len(t.records))
	for i := range t.records {
		out[i] = t.snapshot(i)
	}
	return out, nil
}

// Tree returns the live adjacency in store order. The result is a copy.
func (g *Graph) Tree(ctx context.Context) (Tree, error) {
	if err := g.build(ctx); err != nil {
		return nil, err
	}
	return g.tree.Clone(), nil
}

// Links returns the live adjacency in presentation order, as changed by
// [Graph.Sort]. The result is a copy.
func (g *Graph) Links(ctx context.Context) (Tree, error) {
	if err := g.build(ctx); err != nil {
		return nil, err
	}
	return g.links.Clone(), nil
}

// Tails returns the live shas without children, in the order the tree reached them.
// The [Root] sentinel is never a tail: a thread whose origin has no live
// version, such as a deleted origin, has no tails.
func (g *Graph) Tails(ctx context.Context) ([]linkage.Sha, error) {
	if err := g.build(ctx); err != nil {
		return nil, err
	}
	var out []linkage.Sha
	for _, sha := range g.order {
		if len(g.tree[sha]) == 0 {
			out = append(out, sha)
		}
	}
	return out, nil
}

// Sort stably reorders every presentation list, the heads included.
// [Graph.Tree] keeps store order.
func (g *Graph) Sort(ctx context.Context, cmp func(a, b linkage.Sha) int) error {
	if err := g.build(ctx); err != nil {
		return err
	}
	for _, children := range g.links {
		slices.SortStableFunc(children, cmp)
	}
	return nil
}

// Layout assigns diagram rows and columns to the presentation tree.
func (g *Graph) Layout(ctx context.Context) ([]layout.Row, error) {
	if err := g.build(ctx); err != nil {
		return nil, err
	}
	return layout.Compute(g.links, Root), nil
}

// Draw renders the presentation tree as an ASCII lane diagram.
func (g *Graph) Draw(ctx context.Context) (string, error) {
	rows, err := g.Layout(ctx)
	if err != nil {
		return "", err
	}
	return layout.Draw(rows), nil
}
