package layout

import (
	"slices"

	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// Row is the drawing coordinate of one sha.
type Row struct {
	Sha linkage.Sha
	// Column is the lane the sha is drawn in.
	Column int
	// Index is the row number, starting at 0.
	Index int
	// Open lists the other occupied lanes at this row.
	Open []int
	// Transitions lists the lanes joined to Column on this row: lanes that
	// merge into the sha, followed by the lanes its children continue in.
	Transitions []int
}

type orderFrame struct {
	sha      linkage.Sha
	children []linkage.Sha
	next     int
}

// Order returns the shas below root in draw order.
//
// A depth-first visit lists a sha once per path reaching it; Order keeps only
// the last of those positions, so a merge point comes after all of its
// branches. It is computed as the reverse post-order of a walk that visits
// children right to left, which gives the same sequence without unfolding
// the paths.
func Order(tree map[linkage.Sha][]linkage.Sha, root linkage.Sha) []linkage.Sha {
	visited := map[linkage.Sha]bool{root: true}
	var post []linkage.Sha
	stack := []orderFrame{{sha: root, children: tree[root], next: len(tree[root])}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == 0 {
			sha := top.sha
			stack = stack[:len(stack)-1]
			if sha != root {
				post = append(post, sha)
			}
			continue
		}
		top.next--
		c := top.children[top.next]
		if visited[c] {
			continue
		}
		visited[c] = true
		stack = append(stack, orderFrame{sha: c, children: tree[c], next: len(tree[c])})
	}

	slices.Reverse(post)
	return post
}

type slot struct {
	sha  linkage.Sha
	used bool
}

type lanes []slot

// assign puts sha into the lowest free lane, growing the set when none is free.
func (l *lanes) assign(sha linkage.Sha) int {
	for i := range *l {
		if !(*l)[i].used {
			(*l)[i] = slot{sha: sha, used: true}
			return i
		}
	}
	*l = append(*l, slot{sha: sha, used: true})
	return len(*l) - 1
}

// Compute lays out tree below root.
//
// The children of root start in lanes 0, 1, ... in order, so the first head
// is drawn in column 0. A sha with children frees its lane and its children
// take the lowest free lanes; a tail keeps its lane open. When several lanes
// wait for the same sha, the lowest becomes its column and the others close
// into it.
func Compute(tree map[linkage.Sha][]linkage.Sha, root linkage.Sha) []Row {
	order := Order(tree, root)

	var l lanes
	for _, head := range tree[root] {
		l.assign(head)
	}

	rows := make([]Row, 0, len(order))
	for i, sha := range order {
		own := -1
		var merges []int
		for c := range l {
			if !l[c].used || l[c].sha != sha {
				continue
			}
			if own < 0 {
				own = c
				continue
			}
			merges = append(merges, c)
			l[c] = slot{}
		}
		if own < 0 {
			own = l.assign(sha)
		}

		children := tree[sha]
		if len(children) > 0 {
			l[own] = slot{}
		}

		var open []int
		for c := range l {
			if c != own && l[c].used {
				open = append(open, c)
			}
		}

		transitions := merges
		for _, child := range children {
			transitions = append(transitions, l.assign(child))
		}

		rows = append(rows, Row{
			Sha:         sha,
			Column:      own,
			Index:       i,
			Open:        open,
			Transitions: transitions,
		})
	}
	return rows
}
