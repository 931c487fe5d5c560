package graph

import (
	"context"

	"github.com/matzehuels/linkgraph/pkg/docgraph"
	"github.com/matzehuels/linkgraph/pkg/layout"
	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// =============================================================================
// Thread - Resolved Thread Serialization
// =============================================================================

// Thread is the canonical serialization format for a resolved thread.
//
// Nodes are listed in draw order. Edges follow the presentation order of each
// parent, so decoding a thread and calling [Thread.Adjacency] reproduces the
// tree it was built from.
type Thread struct {
	Origin linkage.Sha   `json:"origin" bson:"origin"`
	Heads  []linkage.Sha `json:"heads" bson:"heads"`
	Nodes  []Node        `json:"nodes" bson:"nodes"`
	Edges  []Edge        `json:"edges" bson:"edges"`
	Tails  []linkage.Sha `json:"tails,omitempty" bson:"tails,omitempty"`
}

// Node is one live document of a thread.
type Node struct {
	Sha linkage.Sha `json:"sha" bson:"sha"`
	// Original is set when the document is a later version of another sha.
	Original linkage.Sha `json:"original,omitempty" bson:"original,omitempty"`
	Row      int         `json:"row" bson:"row"`
	Column   int         `json:"column" bson:"column"`
	Tail     bool        `json:"tail,omitempty" bson:"tail,omitempty"`
}

// Edge is a parent to child relation between two live documents.
type Edge struct {
	From linkage.Sha `json:"from" bson:"from"`
	To   linkage.Sha `json:"to" bson:"to"`
}

// Source is the subset of [docgraph.Graph] a thread is captured from.
type Source interface {
	Origin() linkage.Sha
	Links(ctx context.Context) (docgraph.Tree, error)
	Layout(ctx context.Context) ([]layout.Row, error)
	Node(ctx context.Context, sha linkage.Sha) (docgraph.Node, bool, error)
}

// FromGraph resolves src and captures the result as a Thread.
// Any error from the underlying graph, including a circular linkage, is
// returned unchanged.
func FromGraph(ctx context.Context, src Source) (Thread, error) {
	links, err := src.Links(ctx)
	if err != nil {
		return Thread{}, err
	}
	rows, err := src.Layout(ctx)
	if err != nil {
		return Thread{}, err
	}

	t := Thread{
		Origin: src.Origin(),
		Heads:  links[docgraph.Root],
		Nodes:  make([]Node, 0, len(rows)),
	}
	for _, r := range rows {
		n, ok, err := src.Node(ctx, r.Sha)
		if err != nil {
			return Thread{}, err
		}
		out := Node{Sha: r.Sha, Row: r.Index, Column: r.Column}
		if ok {
			if n.Original != r.Sha {
				out.Original = n.Original
			}
			out.Tail = n.Tail
		}
		if out.Tail {
			t.Tails = append(t.Tails, r.Sha)
		}
		t.Nodes = append(t.Nodes, out)

		for _, c := range links[r.Sha] {
			t.Edges = append(t.Edges, Edge{From: r.Sha, To: c})
		}
	}
	return t, nil
}

// Adjacency rebuilds the presentation tree of t.
func (t Thread) Adjacency() docgraph.Tree {
	tree := docgraph.Tree{docgraph.Root: t.Heads}
	for _, n := range t.Nodes {
		tree[n.Sha] = nil
	}
	for _, e := range t.Edges {
		tree[e.From] = append(tree[e.From], e.To)
	}
	return tree
}

// Rows recomputes the diagram rows from the stored adjacency.
func (t Thread) Rows() []layout.Row {
	return layout.Compute(t.Adjacency(), docgraph.Root)
}

// Lookup returns the node for sha.
func (t Thread) Lookup(sha linkage.Sha) (Node, bool) {
	for _, n := range t.Nodes {
		if n.Sha == sha {
			return n, true
		}
	}
	return Node{}, false
}
