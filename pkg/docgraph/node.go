package docgraph

import (
	"slices"

	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// Node is a snapshot of one crawled document and its resolved relations.
type Node struct {
	Sha linkage.Sha
	// Original is the identity of the document: the first sha of its update chain.
	Original linkage.Sha
	Deleted  bool

	// Links and Updates are the raw outgoing edges, in store order.
	Links   []linkage.Sha
	Updates []linkage.Sha

	// Versions are the live shas of the identity, in update-chain order.
	Versions []linkage.Sha
	// Children are the live versions of everything this document links to,
	// including links inherited from earlier versions.
	Children []linkage.Sha
	// Parents are the live documents listing this one as a child.
	// Only current nodes have parents.
	Parents []linkage.Sha

	Current bool
	Tail    bool
}

// record is the arena entry for one sha. Relations are stored as indices into
// table.records.
type record struct {
	sha     linkage.Sha
	deleted bool
	links   []int
	updates []int

	// parent is the union-find link towards the identity; an identity points at itself.
	parent int

	deconvoluted bool
	versions     []int

	// inherited are the links a terminal node takes over from the nodes it
	// supersedes, merged over every update path that reaches it.
	inherited []int

	childrenDone bool
	children     []int
}

func (r *record) current() bool {
	return !r.deleted && len(r.updates) == 0
}

// table is the node arena for one crawl.
type table struct {
	records []record
	index   map[linkage.Sha]int

	// parents is the reverse child index, built on first use.
	parents [][]int

	// resolved is set once every identity has been deconvoluted.
	resolved bool
}

func newTable() *table {
	return &table{index: make(map[linkage.Sha]int)}
}

func (t *table) add(sha linkage.Sha) int {
	i := len(t.records)
	t.records = append(t.records, record{sha: sha, parent: i})
	t.index[sha] = i
	return i
}

// find returns the identity of i, compressing the path it walked.
func (t *table) find(i int) int {
	root := i
	for t.records[root].parent != root {
		root = t.records[root].parent
	}
	for t.records[i].parent != root {
		next := t.records[i].parent
		t.records[i].parent = root
		i = next
	}
	return root
}

// attach places child under the identity of parent. The first updater wins:
// a node that already belongs to an identity stays there, and a node is never
// attached beneath itself.
func (t *table) attach(child, parent int) {
	if t.records[child].parent != child {
		return
	}
	root := t.find(parent)
	if root == child {
		return
	}
	t.records[child].parent = root
}

func (t *table) shas(idx []int) []linkage.Sha {
	if len(idx) == 0 {
		return nil
	}
	out := make([]linkage.Sha, len(idx))
	for i, j := range idx {
		out[i] = t.records[j].sha
	}
	return out
}

func (t *table) snapshot(i int) Node {
	id := t.find(i)
	t.deconvolve(id)
	children := t.childrenOf(i)

	r := &t.records[i]
	n := Node{
		Sha:      r.sha,
		Original: t.records[id].sha,
		Deleted:  r.deleted,
		Links:    t.shas(r.links),
		Updates:  t.shas(r.updates),
		Versions: t.shas(t.records[id].versions),
		Children: t.shas(children),
		Parents:  t.shas(t.parentsOf(i)),
		Current:  r.current(),
	}
	n.Tail = n.Current && len(children) == 0
	return n
}

// appendUnique appends the values of add missing from dst.
func appendUnique(dst []int, add ...int) []int {
	for _, v := range add {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
