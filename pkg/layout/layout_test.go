package layout

import (
	"slices"
	"testing"

	"github.com/matzehuels/linkgraph/pkg/linkage"
)

type tree = map[linkage.Sha][]linkage.Sha

const root linkage.Sha = ""

var (
	chain   = tree{root: {"A"}, "A": {"B"}, "B": {"C"}, "C": nil}
	fork    = tree{root: {"A"}, "A": {"B", "C"}, "B": nil, "C": nil}
	diamond = tree{root: {"A"}, "A": {"B", "C"}, "B": {"D"}, "C": {"D"}, "D": nil}
	heads   = tree{root: {"B", "C"}, "B": nil, "C": nil}
	wide    = tree{root: {"A"}, "A": {"B", "C", "D"}, "B": {"E"}, "C": nil, "D": {"E"}, "E": nil}
)

func TestOrder(t *testing.T) {
	tests := []struct {
		name string
		tree tree
		want []linkage.Sha
	}{
		{"chain", chain, []linkage.Sha{"A", "B", "C"}},
		{"fork", fork, []linkage.Sha{"A", "B", "C"}},
		{"diamond", diamond, []linkage.Sha{"A", "B", "C", "D"}},
		{"heads", heads, []linkage.Sha{"B", "C"}},
		{"wide", wide, []linkage.Sha{"A", "B", "C", "D", "E"}},
		{"late merge", tree{root: {"A"}, "A": {"B", "C"}, "C": {"B"}}, []linkage.Sha{"A", "C", "B"}},
		{"skip edge", tree{root: {"A"}, "A": {"B", "C"}, "B": {"C"}}, []linkage.Sha{"A", "B", "C"}},
		{"empty", tree{root: nil}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Order(tt.tree, root); !slices.Equal(got, tt.want) {
				t.Errorf("Order() = %v, want %v", got, tt.want)
			}
		})
	}
}

// unfoldOrder is the literal definition of draw order: every path visited,
// duplicates dropped keeping the last position.
func unfoldOrder(tr tree, from linkage.Sha) []linkage.Sha {
	var visit []linkage.Sha
	var walk func(linkage.Sha)
	walk = func(sha linkage.Sha) {
		for _, c := range tr[sha] {
			visit = append(visit, c)
			walk(c)
		}
	}
	walk(from)

	seen := map[linkage.Sha]bool{}
	var out []linkage.Sha
	for i := len(visit) - 1; i >= 0; i-- {
		if !seen[visit[i]] {
			seen[visit[i]] = true
			out = append(out, visit[i])
		}
	}
	slices.Reverse(out)
	return out
}

func TestOrderMatchesUnfolding(t *testing.T) {
	trees := []tree{
		chain, fork, diamond, heads, wide,
		{root: {"A"}, "A": {"B", "C", "D"}, "B": {"D", "E"}, "C": {"E"}, "D": {"F"}, "E": {"F"}},
		{root: {"A", "X"}, "A": {"B"}, "X": {"B", "Y"}, "Y": {"B"}},
	}
	for i, tr := range trees {
		got := Order(tr, root)
		want := unfoldOrder(tr, root)
		if !slices.Equal(got, want) {
			t.Errorf("tree %d: Order() = %v, want %v", i, got, want)
		}
	}
}

func TestComputeDiamond(t *testing.T) {
	rows := Compute(diamond, root)
	want := []Row{
		{Sha: "A", Column: 0, Index: 0, Open: nil, Transitions: []int{0, 1}},
		{Sha: "B", Column: 0, Index: 1, Open: []int{1}, Transitions: []int{0}},
		{Sha: "C", Column: 1, Index: 2, Open: []int{0}, Transitions: []int{1}},
		{Sha: "D", Column: 0, Index: 3, Open: nil, Transitions: []int{1}},
	}
	assertRows(t, rows, want)
}

func TestComputeHeads(t *testing.T) {
	rows := Compute(heads, root)
	want := []Row{
		{Sha: "B", Column: 0, Index: 0, Open: []int{1}},
		{Sha: "C", Column: 1, Index: 1, Open: []int{0}},
	}
	assertRows(t, rows, want)
}

func TestComputeReusesLowestFreeColumn(t *testing.T) {
	rows := Compute(wide, root)
	want := []Row{
		{Sha: "A", Column: 0, Index: 0, Transitions: []int{0, 1, 2}},
		{Sha: "B", Column: 0, Index: 1, Open: []int{1, 2}, Transitions: []int{0}},
		{Sha: "C", Column: 1, Index: 2, Open: []int{0, 2}},
		{Sha: "D", Column: 2, Index: 3, Open: []int{0, 1}, Transitions: []int{2}},
		{Sha: "E", Column: 0, Index: 4, Open: []int{1}, Transitions: []int{2}},
	}
	assertRows(t, rows, want)
}

func TestComputeDrawsMergeOnce(t *testing.T) {
	rows := Compute(diamond, root)
	count := 0
	for _, r := range rows {
		if r.Sha == "D" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("D drawn %d times, want 1", count)
	}
}

func TestComputeEmpty(t *testing.T) {
	if rows := Compute(tree{root: nil}, root); len(rows) != 0 {
		t.Errorf("Compute() = %v, want no rows", rows)
	}
	if got := Draw(nil); got != "" {
		t.Errorf("Draw(nil) = %q, want empty", got)
	}
}

func assertRows(t *testing.T, got, want []Row) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Compute() returned %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Sha != w.Sha || g.Column != w.Column || g.Index != w.Index ||
			!slices.Equal(g.Open, w.Open) || !slices.Equal(g.Transitions, w.Transitions) {
			t.Errorf("row %d = %+v, want %+v", i, g, w)
		}
	}
}
