package docgraph

import (
	"context"

	"github.com/matzehuels/linkgraph/pkg/linkage"
)

type crawlFrame struct {
	idx   int
	edges []linkage.Linkage
	next  int
}

// crawl builds the node table of everything reachable from origin.
//
// Nodes are created before their edges are followed, so cyclic raw edges end
// at the existing entry. Edges are processed depth-first in store order with
// an explicit stack. A store error aborts the crawl and no table is returned.
func crawl(ctx context.Context, store linkage.Store, origin linkage.Sha) (*table, error) {
	t := newTable()
	var stack []crawlFrame

	visit := func(sha linkage.Sha) (int, error) {
		if i, ok := t.index[sha]; ok {
			return i, nil
		}
		i := t.add(sha)
		edges, err := store.Linkages(ctx, sha)
		if err != nil {
			return 0, err
		}
		stack = append(stack, crawlFrame{idx: i, edges: edges})
		return i, nil
	}

	if _, err := visit(origin); err != nil {
		return nil, err
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.edges) {
			stack = stack[:len(stack)-1]
			continue
		}
		l := top.edges[top.next]
		top.next++
		if !l.Kind.Valid() {
			continue
		}

		src := top.idx
		tgt, err := visit(l.Target)
		if err != nil {
			return nil, err
		}

		switch l.Kind {
		case linkage.Link:
			t.records[src].links = append(t.records[src].links, tgt)
		case linkage.Update:
			t.records[src].updates = append(t.records[src].updates, tgt)
			t.attach(tgt, src)
		case linkage.Delete:
			t.records[tgt].deleted = true
		}
	}
	return t, nil
}
