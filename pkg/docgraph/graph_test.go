package docgraph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/linkgraph/pkg/linkage"
)

const (
	shaA linkage.Sha = "A"
	shaB linkage.Sha = "B"
	shaC linkage.Sha = "C"
	shaD linkage.Sha = "D"
	shaE linkage.Sha = "E"
	shaO linkage.Sha = "O"
	shaR linkage.Sha = "R"
	shaS linkage.Sha = "S"
	shaX linkage.Sha = "X"
	shaY linkage.Sha = "Y"
)

func link(src, tgt linkage.Sha) linkage.Edge {
	return linkage.Edge{Source: src, Target: tgt, Kind: linkage.Link}
}

func update(src, tgt linkage.Sha) linkage.Edge {
	return linkage.Edge{Source: src, Target: tgt, Kind: linkage.Update}
}

func del(src, tgt linkage.Sha) linkage.Edge {
	return linkage.Edge{Source: src, Target: tgt, Kind: linkage.Delete}
}

func graphOf(origin linkage.Sha, edges ...linkage.Edge) *Graph {
	return New(linkage.NewMemStore(edges...), origin)
}

func mustTree(t *testing.T, g *Graph) Tree {
	t.Helper()
	tree, err := g.Tree(context.Background())
	if err != nil {
		t.Fatalf("Tree() error: %v", err)
	}
	return tree
}

func mustNode(t *testing.T, g *Graph, sha linkage.Sha) Node {
	t.Helper()
	n, ok, err := g.Node(context.Background(), sha)
	if err != nil {
		t.Fatalf("Node(%s) error: %v", sha, err)
	}
	if !ok {
		t.Fatalf("Node(%s) not found", sha)
	}
	return n
}

func TestTree(t *testing.T) {
	tests := []struct {
		name   string
		origin linkage.Sha
		edges  []linkage.Edge
		want   Tree
	}{
		{
			name:   "no edges",
			origin: shaO,
			want:   Tree{Root: {shaO}, shaO: nil},
		},
		{
			name:   "chain",
			origin: shaA,
			edges:  []linkage.Edge{link(shaA, shaB), link(shaB, shaC)},
			want:   Tree{Root: {shaA}, shaA: {shaB}, shaB: {shaC}, shaC: nil},
		},
		{
			name:   "merge fan-in",
			origin: shaA,
			edges:  []linkage.Edge{link(shaA, shaB), link(shaA, shaC), link(shaB, shaD), link(shaC, shaD)},
			want:   Tree{Root: {shaA}, shaA: {shaB, shaC}, shaB: {shaD}, shaC: {shaD}, shaD: nil},
		},
		{
			name:   "update resolves to new version",
			origin: shaA,
			edges:  []linkage.Edge{link(shaA, shaB), update(shaB, shaC)},
			want:   Tree{Root: {shaA}, shaA: {shaC}, shaC: nil},
		},
		{
			name:   "deleted child",
			origin: shaA,
			edges:  []linkage.Edge{link(shaA, shaB), link(shaB, shaC), del(shaC, shaB)},
			want:   Tree{Root: {shaA}, shaA: nil},
		},
		{
			name:   "multiple heads",
			origin: shaA,
			edges:  []linkage.Edge{update(shaA, shaB), update(shaA, shaC)},
			want:   Tree{Root: {shaB, shaC}, shaB: nil, shaC: nil},
		},
		{
			name:   "stale origin resolves to head",
			origin: shaB,
			edges:  []linkage.Edge{update(shaB, shaC), link(shaC, shaD)},
			want:   Tree{Root: {shaC}, shaC: {shaD}, shaD: nil},
		},
		{
			name:   "links inherited by new version",
			origin: shaA,
			edges:  []linkage.Edge{link(shaA, shaR), update(shaA, shaB), link(shaB, shaS)},
			want:   Tree{Root: {shaB}, shaB: {shaR, shaS}, shaR: nil, shaS: nil},
		},
		{
			name:   "deleted origin",
			origin: shaA,
			edges:  []linkage.Edge{link(shaA, shaB), del(shaB, shaA)},
			want:   Tree{Root: nil},
		},
		{
			name:   "update cycle has no live version",
			origin: shaA,
			edges:  []linkage.Edge{update(shaA, shaB), update(shaB, shaA)},
			want:   Tree{Root: nil},
		},
		{
			name:   "converging updates keep links of every branch",
			origin: shaA,
			edges: []linkage.Edge{
				update(shaA, shaB), update(shaA, shaC),
				update(shaB, shaD), update(shaC, shaD), link(shaC, shaX),
			},
			want: Tree{Root: {shaD}, shaD: {shaX}, shaX: nil},
		},
		{
			name:   "version shared by two identities",
			origin: shaO,
			edges: []linkage.Edge{
				link(shaO, shaA), link(shaO, shaE),
				update(shaA, shaD), update(shaE, shaD), link(shaE, shaX),
			},
			want: Tree{Root: {shaO}, shaO: {shaD}, shaD: {shaX}, shaX: nil},
		},
		{
			name:   "duplicate links collapse",
			origin: shaA,
			edges:  []linkage.Edge{link(shaA, shaB), link(shaA, shaC), update(shaC, shaB)},
			want:   Tree{Root: {shaA}, shaA: {shaB}, shaB: nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustTree(t, graphOf(tt.origin, tt.edges...))
			if !got.Equal(tt.want) {
				t.Errorf("Tree() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTreeIdempotent(t *testing.T) {
	g := graphOf(shaA, link(shaA, shaB), link(shaA, shaC), link(shaB, shaD), link(shaC, shaD))
	first := mustTree(t, g)
	second := mustTree(t, g)
	if !first.Equal(second) {
		t.Errorf("Tree() = %v, then %v", first, second)
	}

	// The caller's copy is not the cached one.
	first[shaA] = nil
	if third := mustTree(t, g); !third.Equal(second) {
		t.Errorf("Tree() changed after mutating a returned copy: %v", third)
	}
}

func TestRootIsOriginVersions(t *testing.T) {
	edges := []linkage.Edge{
		update(shaA, shaB), update(shaA, shaC), update(shaC, shaD),
		link(shaB, shaE), del(shaE, shaC),
	}
	g := graphOf(shaA, edges...)
	tree := mustTree(t, g)
	origin := mustNode(t, g, shaA)
	if !slices.Equal(tree[Root], origin.Versions) {
		t.Errorf("Tree()[Root] = %v, want versions %v", tree[Root], origin.Versions)
	}
	if !slices.Equal(tree[Root], []linkage.Sha{shaB}) {
		t.Errorf("Tree()[Root] = %v, want [B]", tree[Root])
	}
}

func TestNodeUpdateResolution(t *testing.T) {
	g := graphOf(shaA, link(shaA, shaB), update(shaB, shaC))

	a := mustNode(t, g, shaA)
	if !slices.Equal(a.Children, []linkage.Sha{shaC}) {
		t.Errorf("A.Children = %v, want [C]", a.Children)
	}

	b := mustNode(t, g, shaB)
	if b.Current {
		t.Error("B.Current = true, want false")
	}
	if b.Parents != nil {
		t.Errorf("B.Parents = %v, want nil for a superseded node", b.Parents)
	}

	c := mustNode(t, g, shaC)
	if c.Original != shaB {
		t.Errorf("C.Original = %v, want B", c.Original)
	}
	if !c.Current || !c.Tail {
		t.Errorf("C current=%v tail=%v, want both true", c.Current, c.Tail)
	}
	if !slices.Equal(c.Parents, []linkage.Sha{shaA}) {
		t.Errorf("C.Parents = %v, want [A]", c.Parents)
	}
}

func TestNodeConvergingUpdates(t *testing.T) {
	g := graphOf(shaA,
		update(shaA, shaB), update(shaA, shaC),
		link(shaB, shaY), link(shaC, shaX),
		update(shaB, shaD), update(shaC, shaD),
	)

	d := mustNode(t, g, shaD)
	if !slices.Equal(d.Children, []linkage.Sha{shaY, shaX}) {
		t.Errorf("D.Children = %v, want [Y X]", d.Children)
	}
	if !d.Current || d.Tail {
		t.Errorf("D current=%v tail=%v, want current and not a tail", d.Current, d.Tail)
	}

	a := mustNode(t, g, shaA)
	if !slices.Equal(a.Versions, []linkage.Sha{shaD}) {
		t.Errorf("A.Versions = %v, want [D] once", a.Versions)
	}

	x := mustNode(t, g, shaX)
	if !slices.Equal(x.Parents, []linkage.Sha{shaD}) {
		t.Errorf("X.Parents = %v, want [D]", x.Parents)
	}
}

func TestNodeSharedVersion(t *testing.T) {
	g := graphOf(shaO,
		link(shaO, shaA), link(shaO, shaE),
		update(shaA, shaD), update(shaE, shaD), link(shaE, shaX),
	)

	// Node is asked for before the tree, so no other query has resolved E yet.
	d := mustNode(t, g, shaD)
	if d.Original != shaA {
		t.Errorf("D.Original = %v, want A (first updater)", d.Original)
	}
	if !slices.Equal(d.Children, []linkage.Sha{shaX}) {
		t.Errorf("D.Children = %v, want [X] inherited from E", d.Children)
	}

	e := mustNode(t, g, shaE)
	if !slices.Equal(e.Versions, []linkage.Sha{shaD}) {
		t.Errorf("E.Versions = %v, want [D]", e.Versions)
	}
}

func TestNodeDeleted(t *testing.T) {
	g := graphOf(shaA, link(shaA, shaB), del(shaA, shaB))

	tree := mustTree(t, g)
	if len(tree[shaA]) != 0 {
		t.Errorf("Tree()[A] = %v, want empty", tree[shaA])
	}

	// Re-putting (A, B) as a delete replaced the link, but B is still inspectable.
	b := mustNode(t, g, shaB)
	if !b.Deleted {
		t.Error("B.Deleted = false, want true")
	}
	if b.Current || b.Tail {
		t.Errorf("B current=%v tail=%v, want both false", b.Current, b.Tail)
	}
}

func TestNodeDeletedByMarker(t *testing.T) {
	g := graphOf(shaA, link(shaA, shaB), link(shaB, shaX), del(shaX, shaB))

	if got := mustTree(t, g)[shaA]; len(got) != 0 {
		t.Errorf("Tree()[A] = %v, want empty", got)
	}
	if b := mustNode(t, g, shaB); !b.Deleted {
		t.Error("B.Deleted = false, want true")
	}
	for _, n := range []Node{mustNode(t, g, shaA)} {
		if slices.Contains(n.Children, shaB) {
			t.Errorf("%s.Children contains deleted B", n.Sha)
		}
	}
}

func TestNodeNotFound(t *testing.T) {
	g := graphOf(shaA, link(shaA, shaB), link(shaX, shaA))

	for _, sha := range []linkage.Sha{shaX, "unknown"} {
		_, ok, err := g.Node(context.Background(), sha)
		if err != nil {
			t.Fatalf("Node(%s) error: %v", sha, err)
		}
		if ok {
			t.Errorf("Node(%s) found, want not found", sha)
		}
	}
}

func TestNodeParents(t *testing.T) {
	g := graphOf(shaA, link(shaA, shaB), link(shaA, shaC), link(shaB, shaD), link(shaC, shaD))

	d := mustNode(t, g, shaD)
	if !slices.Equal(d.Parents, []linkage.Sha{shaB, shaC}) {
		t.Errorf("D.Parents = %v, want [B C]", d.Parents)
	}
	if a := mustNode(t, g, shaA); len(a.Parents) != 0 {
		t.Errorf("A.Parents = %v, want none", a.Parents)
	}
}

func TestMultipleHeadsAreTails(t *testing.T) {
	g := graphOf(shaA, update(shaA, shaB), update(shaA, shaC))

	tails, err := g.Tails(context.Background())
	if err != nil {
		t.Fatalf("Tails() error: %v", err)
	}
	if !slices.Equal(tails, []linkage.Sha{shaB, shaC}) {
		t.Errorf("Tails() = %v, want [B C]", tails)
	}
	for _, sha := range []linkage.Sha{shaB, shaC} {
		n := mustNode(t, g, sha)
		if !n.Current || !n.Tail {
			t.Errorf("%s current=%v tail=%v, want both true", sha, n.Current, n.Tail)
		}
	}
}

func TestTailsExcludeRoot(t *testing.T) {
	tests := []struct {
		name  string
		edges []linkage.Edge
	}{
		{"deleted origin", []linkage.Edge{link(shaA, shaB), del(shaB, shaA)}},
		{"update cycle", []linkage.Edge{update(shaA, shaB), update(shaB, shaA)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tails, err := graphOf(shaA, tt.edges...).Tails(context.Background())
			if err != nil {
				t.Fatalf("Tails() error: %v", err)
			}
			if len(tails) != 0 {
				t.Errorf("Tails() = %v, want none", tails)
			}
		})
	}
}

func TestCircularLinkage(t *testing.T) {
	ctx := context.Background()
	edges := []linkage.Edge{link(shaA, shaB), link(shaB, shaC), link(shaC, shaA)}

	queries := map[string]func(*Graph) error{
		"Tree":  func(g *Graph) error { _, err := g.Tree(ctx); return err },
		"Links": func(g *Graph) error { _, err := g.Links(ctx); return err },
		"Tails": func(g *Graph) error { _, err := g.Tails(ctx); return err },
		"Draw":  func(g *Graph) error { _, err := g.Draw(ctx); return err },
	}

	for name, query := range queries {
		t.Run(name, func(t *testing.T) {
			err := query(graphOf(shaA, edges...))
			if !errors.Is(err, ErrCircularLinkage) {
				t.Fatalf("%s() error = %v, want ErrCircularLinkage", name, err)
			}
			var cycle *CircularLinkageError
			if !errors.As(err, &cycle) {
				t.Fatalf("%s() error is %T, want *CircularLinkageError", name, err)
			}
			want := []linkage.Sha{shaA, shaB, shaC, shaA}
			if !slices.Equal(cycle.Path, want) {
				t.Errorf("Path = %v, want %v", cycle.Path, want)
			}
		})
	}
}

func TestCircularLinkageMessage(t *testing.T) {
	_, err := graphOf(shaA, link(shaA, shaB), link(shaB, shaA)).Tree(context.Background())
	want := "circular link detected:\n  A\n  B\n  A"
	if err == nil || err.Error() != want {
		t.Errorf("Error() = %q, want %q", err, want)
	}
}

func TestCircularLinkageTrail(t *testing.T) {
	g := graphOf(shaO, link(shaO, shaA), link(shaA, shaB), link(shaB, shaC), link(shaC, shaA))
	_, err := g.Tree(context.Background())

	var cycle *CircularLinkageError
	if !errors.As(err, &cycle) {
		t.Fatalf("Tree() error = %v, want *CircularLinkageError", err)
	}
	if want := []linkage.Sha{shaA, shaB, shaC, shaA}; !slices.Equal(cycle.Path, want) {
		t.Errorf("Path = %v, want %v", cycle.Path, want)
	}
	if want := []linkage.Sha{shaO, shaA, shaB, shaC, shaA}; !slices.Equal(cycle.Trail, want) {
		t.Errorf("Trail = %v, want %v", cycle.Trail, want)
	}
}

func TestCircularLinkageThroughUpdate(t *testing.T) {
	// B links back to A's identity, whose live version is C.
	g := graphOf(shaA, update(shaA, shaC), link(shaC, shaB), link(shaB, shaA))
	_, err := g.Tree(context.Background())

	var cycle *CircularLinkageError
	if !errors.As(err, &cycle) {
		t.Fatalf("Tree() error = %v, want *CircularLinkageError", err)
	}
	if want := []linkage.Sha{shaC, shaB, shaC}; !slices.Equal(cycle.Path, want) {
		t.Errorf("Path = %v, want %v", cycle.Path, want)
	}
}

func TestCycleDoesNotBreakNode(t *testing.T) {
	g := graphOf(shaA, link(shaA, shaB), link(shaB, shaA))
	if _, err := g.Tree(context.Background()); err == nil {
		t.Fatal("Tree() error = nil, want cycle")
	}
	a := mustNode(t, g, shaA)
	if !slices.Equal(a.Children, []linkage.Sha{shaB}) {
		t.Errorf("A.Children = %v, want [B]", a.Children)
	}
}

type failingStore struct {
	linkage.Store
	fail linkage.Sha
	err  error
}

func (s *failingStore) Linkages(ctx context.Context, sha linkage.Sha) ([]linkage.Linkage, error) {
	if sha == s.fail {
		return nil, s.err
	}
	return s.Store.Linkages(ctx, sha)
}

func TestStoreErrorPropagates(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	store := &failingStore{
		Store: linkage.NewMemStore(link(shaA, shaB), link(shaB, shaC)),
		fail:  shaB,
		err:   boom,
	}
	g := New(store, shaA)

	if _, err := g.Tree(ctx); err != boom {
		t.Errorf("Tree() error = %v, want %v", err, boom)
	}
	if _, _, err := g.Node(ctx, shaA); err != boom {
		t.Errorf("Node() error = %v, want %v", err, boom)
	}

	// Nothing partial was kept: once the store recovers, the full thread is visible.
	store.fail = ""
	tree := mustTree(t, g)
	if want := (Tree{Root: {shaA}, shaA: {shaB}, shaB: {shaC}, shaC: nil}); !tree.Equal(want) {
		t.Errorf("Tree() = %v, want %v", tree, want)
	}
}

func TestSort(t *testing.T) {
	ctx := context.Background()
	g := graphOf(shaA, link(shaA, shaB), link(shaA, shaC), link(shaA, shaD))

	desc := func(x, y linkage.Sha) int { return strings.Compare(string(y), string(x)) }
	if err := g.Sort(ctx, desc); err != nil {
		t.Fatalf("Sort() error: %v", err)
	}

	links, err := g.Links(ctx)
	if err != nil {
		t.Fatalf("Links() error: %v", err)
	}
	if want := []linkage.Sha{shaD, shaC, shaB}; !slices.Equal(links[shaA], want) {
		t.Errorf("Links()[A] = %v, want %v", links[shaA], want)
	}

	tree := mustTree(t, g)
	if want := []linkage.Sha{shaB, shaC, shaD}; !slices.Equal(tree[shaA], want) {
		t.Errorf("Tree()[A] = %v, want store order %v", tree[shaA], want)
	}

	out, err := g.Draw(ctx)
	if err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	if want := "*-+-+ A\n* | | D\n| * | C\n| | * B\n"; out != want {
		t.Errorf("Draw() =\n%s\nwant\n%s", out, want)
	}

	n := mustNode(t, g, shaB)
	if !n.Current || !n.Tail {
		t.Errorf("Sort changed flags of B: current=%v tail=%v", n.Current, n.Tail)
	}
}

func TestSortHeads(t *testing.T) {
	ctx := context.Background()
	g := graphOf(shaA, update(shaA, shaB), update(shaA, shaC))
	desc := func(x, y linkage.Sha) int { return strings.Compare(string(y), string(x)) }
	if err := g.Sort(ctx, desc); err != nil {
		t.Fatalf("Sort() error: %v", err)
	}
	links, _ := g.Links(ctx)
	if want := []linkage.Sha{shaC, shaB}; !slices.Equal(links[Root], want) {
		t.Errorf("Links()[Root] = %v, want %v", links[Root], want)
	}
}

func TestDrawMergeRow(t *testing.T) {
	g := graphOf(shaA, link(shaA, shaB), link(shaA, shaC), link(shaB, shaD), link(shaC, shaD))
	rows, err := g.Layout(context.Background())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	last := rows[len(rows)-1]
	if last.Sha != shaD {
		t.Fatalf("last row = %s, want D", last.Sha)
	}
	// B ran in column 0 and C in column 1; both close on D's row.
	if last.Column != 0 || !slices.Equal(last.Transitions, []int{1}) {
		t.Errorf("D row = %+v, want column 0 joined by column 1", last)
	}

	out, _ := g.Draw(context.Background())
	if want := "*-+ A\n* | B\n| * C\n*-+ D\n"; out != want {
		t.Errorf("Draw() =\n%s\nwant\n%s", out, want)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := linkage.NewMemStore(link(shaA, shaB))
	g := New(store, shaA)
	_ = mustTree(t, g)

	if err := store.Put(ctx, link(shaA, shaC)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if got := mustTree(t, g)[shaA]; !slices.Equal(got, []linkage.Sha{shaB}) {
		t.Errorf("Tree()[A] before Reset = %v, want cached [B]", got)
	}

	g.Reset()
	if got := mustTree(t, g)[shaA]; !slices.Equal(got, []linkage.Sha{shaB, shaC}) {
		t.Errorf("Tree()[A] after Reset = %v, want [B C]", got)
	}
}

func TestNodes(t *testing.T) {
	g := graphOf(shaA, link(shaA, shaB), update(shaB, shaC), del(shaA, shaD))
	nodes, err := g.Nodes(context.Background())
	if err != nil {
		t.Fatalf("Nodes() error: %v", err)
	}
	var got []linkage.Sha
	for _, n := range nodes {
		got = append(got, n.Sha)
	}
	if want := []linkage.Sha{shaA, shaB, shaC, shaD}; !slices.Equal(got, want) {
		t.Errorf("Nodes() = %v, want crawl order %v", got, want)
	}
}

func TestDeepChain(t *testing.T) {
	const depth = 50000
	edges := make([]linkage.Edge, 0, depth)
	sha := func(i int) linkage.Sha { return linkage.Sha(fmt.Sprintf("n%05d", i)) }
	for i := 0; i < depth; i++ {
		edges = append(edges, link(sha(i), sha(i+1)))
	}

	g := graphOf(sha(0), edges...)
	tails, err := g.Tails(context.Background())
	if err != nil {
		t.Fatalf("Tails() error: %v", err)
	}
	if !slices.Equal(tails, []linkage.Sha{sha(depth)}) {
		t.Errorf("Tails() = %v, want [%s]", tails, sha(depth))
	}
}
