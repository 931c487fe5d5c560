package docgraph

import "slices"

type chainStep struct {
	idx       int
	inherited []int
}

// deconvolve resolves the versions of identity id. It runs once per identity.
//
// The walk follows update edges depth-first. A deleted node ends its branch.
// A node without updates is terminal and becomes a version; links collected
// from the nodes above it on every path through the chain are inherited by
// it, so a reply to an old version stays visible on the new one. A node
// reached again is walked again only when it carries links it has not seen,
// which also ends update cycles.
func (t *table) deconvolve(id int) {
	if t.records[id].deconvoluted {
		return
	}
	t.records[id].deconvoluted = true

	var versions []int
	carried := make(map[int][]int)
	stack := []chainStep{{idx: id}}

	for len(stack) > 0 {
		step := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		prev, seen := carried[step.idx]
		merged := appendUnique(slices.Clone(prev), step.inherited...)
		if seen && len(merged) == len(prev) {
			continue
		}
		carried[step.idx] = merged

		n := &t.records[step.idx]
		if n.deleted {
			continue
		}
		if len(n.updates) == 0 {
			if !seen {
				versions = append(versions, step.idx)
			}
			n.inherited = appendUnique(n.inherited, merged...)
			continue
		}

		carry := appendUnique(slices.Clone(merged), n.links...)
		for j := len(n.updates) - 1; j >= 0; j-- {
			stack = append(stack, chainStep{idx: n.updates[j], inherited: carry})
		}
	}

	t.records[id].versions = versions
}

// resolve deconvolutes every identity of the table. A terminal node can be
// reached from more than one identity, so its inherited links are only
// complete once all walks ran.
func (t *table) resolve() {
	if t.resolved {
		return
	}
	for i := range t.records {
		t.deconvolve(t.find(i))
	}
	t.resolved = true
}

// childrenOf returns the live versions of everything i links to, in link
// order and without repeats. Inherited links come before the node's own.
func (t *table) childrenOf(i int) []int {
	if t.records[i].childrenDone {
		return t.records[i].children
	}
	t.resolve()

	links := appendUnique(slices.Clone(t.records[i].inherited), t.records[i].links...)

	var out []int
	for _, l := range links {
		id := t.find(l)
		t.deconvolve(id)
		out = appendUnique(out, t.records[id].versions...)
	}

	t.records[i].children = out
	t.records[i].childrenDone = true
	return out
}

// parentsOf returns the current nodes that list i as a child.
func (t *table) parentsOf(i int) []int {
	if !t.records[i].current() {
		return nil
	}
	if t.parents == nil {
		t.parents = make([][]int, len(t.records))
		for j := range t.records {
			if !t.records[j].current() {
				continue
			}
			for _, c := range t.childrenOf(j) {
				t.parents[c] = append(t.parents[c], j)
			}
		}
	}
	return t.parents[i]
}
