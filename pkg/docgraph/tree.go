package docgraph

import (
	"maps"
	"slices"

	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// Root is the tree key standing for "no parent". Its children are the live
// versions of the origin.
const Root linkage.Sha = ""

// Tree maps each live sha to its ordered children.
type Tree map[linkage.Sha][]linkage.Sha

// Heads returns the children of [Root].
func (t Tree) Heads() []linkage.Sha {
	return t[Root]
}

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = slices.Clone(v)
	}
	return out
}

// Equal reports whether t and other have the same keys with the same ordered children.
func (t Tree) Equal(other Tree) bool {
	return maps.EqualFunc(t, other, func(a, b []linkage.Sha) bool {
		return slices.Equal(a, b)
	})
}

const (
	white = iota
	gray
	black
)

type treeFrame struct {
	idx      int
	children []int
	next     int
}

// buildTree computes the live adjacency below origin together with the order
// in which its keys were first reached.
//
// Each key is expanded once. A child that is still on the current path is a
// cycle and fails the whole build.
func (t *table) buildTree(origin int) (Tree, []linkage.Sha, error) {
	id := t.find(origin)
	t.deconvolve(id)
	heads := t.records[id].versions

	tree := Tree{Root: t.shas(heads)}
	var order []linkage.Sha

	color := make([]uint8, len(t.records))
	var stack []treeFrame
	var trail []int

	push := func(i int) {
		color[i] = gray
		trail = append(trail, i)
		order = append(order, t.records[i].sha)
		children := t.childrenOf(i)
		tree[t.records[i].sha] = t.shas(children)
		stack = append(stack, treeFrame{idx: i, children: children})
	}

	for _, h := range heads {
		if color[h] != white {
			continue
		}
		push(h)
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.children) {
				color[top.idx] = black
				stack = stack[:len(stack)-1]
				trail = trail[:len(trail)-1]
				continue
			}
			c := top.children[top.next]
			top.next++

			switch color[c] {
			case gray:
				return nil, nil, t.circular(trail, c)
			case white:
				push(c)
			}
		}
	}
	return tree, order, nil
}

func (t *table) circular(trail []int, repeat int) error {
	full := append(t.shas(trail), t.records[repeat].sha)
	start := slices.Index(trail, repeat)
	return &CircularLinkageError{
		Path:  slices.Clone(full[start:]),
		Trail: full,
	}
}
