package graph

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/linkgraph/pkg/docgraph"
	"github.com/matzehuels/linkgraph/pkg/layout"
	"github.com/matzehuels/linkgraph/pkg/linkage"
)

func link(src, tgt linkage.Sha) linkage.Edge {
	return linkage.Edge{Source: src, Target: tgt, Kind: linkage.Link}
}

func diamond() *docgraph.Graph {
	return docgraph.New(linkage.NewMemStore(
		link("A", "B"),
		link("A", "C"),
		link("B", "D"),
		link("C", "D"),
	), "A")
}

func TestFromGraph(t *testing.T) {
	ctx := context.Background()
	th, err := FromGraph(ctx, diamond())
	if err != nil {
		t.Fatalf("FromGraph() error: %v", err)
	}

	if th.Origin != "A" {
		t.Errorf("Origin = %q, want A", th.Origin)
	}
	if !slices.Equal(th.Heads, []linkage.Sha{"A"}) {
		t.Errorf("Heads = %v, want [A]", th.Heads)
	}

	want := []Node{
		{Sha: "A", Row: 0, Column: 0},
		{Sha: "B", Row: 1, Column: 0},
		{Sha: "C", Row: 2, Column: 1},
		{Sha: "D", Row: 3, Column: 0, Tail: true},
	}
	if !slices.Equal(th.Nodes, want) {
		t.Errorf("Nodes = %+v, want %+v", th.Nodes, want)
	}

	wantEdges := []Edge{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}}
	if !slices.Equal(th.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", th.Edges, wantEdges)
	}
	if !slices.Equal(th.Tails, []linkage.Sha{"D"}) {
		t.Errorf("Tails = %v, want [D]", th.Tails)
	}
}

func TestFromGraphFollowsSort(t *testing.T) {
	ctx := context.Background()
	g := docgraph.New(linkage.NewMemStore(link("A", "C"), link("A", "B")), "A")
	if err := g.Sort(ctx, func(a, b linkage.Sha) int { return strings.Compare(string(a), string(b)) }); err != nil {
		t.Fatalf("Sort() error: %v", err)
	}

	th, err := FromGraph(ctx, g)
	if err != nil {
		t.Fatalf("FromGraph() error: %v", err)
	}
	wantEdges := []Edge{{"A", "B"}, {"A", "C"}}
	if !slices.Equal(th.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", th.Edges, wantEdges)
	}
}

func TestFromGraphCircular(t *testing.T) {
	g := docgraph.New(linkage.NewMemStore(link("A", "B"), link("B", "A")), "A")
	_, err := FromGraph(context.Background(), g)
	if !errors.Is(err, docgraph.ErrCircularLinkage) {
		t.Fatalf("FromGraph() error = %v, want ErrCircularLinkage", err)
	}
}

func TestAdjacency(t *testing.T) {
	ctx := context.Background()
	g := diamond()
	th, err := FromGraph(ctx, g)
	if err != nil {
		t.Fatalf("FromGraph() error: %v", err)
	}
	links, err := g.Links(ctx)
	if err != nil {
		t.Fatalf("Links() error: %v", err)
	}
	if got := th.Adjacency(); !got.Equal(links) {
		t.Errorf("Adjacency() = %v, want %v", got, links)
	}

	draw, err := g.Draw(ctx)
	if err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	if got := layout.Draw(th.Rows()); got != draw {
		t.Errorf("Draw(Rows()) = %q, want %q", got, draw)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	th, err := FromGraph(context.Background(), diamond())
	if err != nil {
		t.Fatalf("FromGraph() error: %v", err)
	}

	data, err := MarshalThread(th)
	if err != nil {
		t.Fatalf("MarshalThread() error: %v", err)
	}
	got, err := UnmarshalThread(data)
	if err != nil {
		t.Fatalf("UnmarshalThread() error: %v", err)
	}
	if !got.Adjacency().Equal(th.Adjacency()) {
		t.Errorf("round trip adjacency = %v, want %v", got.Adjacency(), th.Adjacency())
	}
	if !slices.Equal(got.Nodes, th.Nodes) {
		t.Errorf("round trip nodes = %v, want %v", got.Nodes, th.Nodes)
	}
}

func TestReadThreadFile(t *testing.T) {
	th, err := FromGraph(context.Background(), diamond())
	if err != nil {
		t.Fatalf("FromGraph() error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "thread.json")
	if err := WriteThreadFile(th, path); err != nil {
		t.Fatalf("WriteThreadFile() error: %v", err)
	}
	got, err := ReadThreadFile(path)
	if err != nil {
		t.Fatalf("ReadThreadFile() error: %v", err)
	}
	if got.Origin != th.Origin {
		t.Errorf("Origin = %q, want %q", got.Origin, th.Origin)
	}

	if _, err := ReadThreadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadThreadFile(missing) should fail")
	}
}

func TestUnmarshalThreadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Malformed", `{"origin":`},
		{"EmptySha", `{"origin":"A","nodes":[{"sha":""}]}`},
		{"UnknownHead", `{"origin":"A","heads":["B"],"nodes":[{"sha":"A"}]}`},
		{"UnknownEdge", `{"origin":"A","heads":["A"],"nodes":[{"sha":"A"}],"edges":[{"from":"A","to":"Z"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalThread([]byte(tt.data)); err == nil {
				t.Error("UnmarshalThread() should fail")
			}
		})
	}
}

func TestLookup(t *testing.T) {
	th := Thread{Nodes: []Node{{Sha: "A"}, {Sha: "B", Row: 1}}}
	n, ok := th.Lookup("B")
	if !ok || n.Row != 1 {
		t.Errorf("Lookup(B) = %+v, %v", n, ok)
	}
	if _, ok := th.Lookup("Z"); ok {
		t.Error("Lookup(Z) should miss")
	}
}
