// Package docgraph reconstructs the live view of a document thread from raw
// link, update and delete edges.
//
// # Overview
//
// A [Graph] is built per query for an origin sha. On first use it crawls the
// [linkage.Store] from the origin and keeps every reachable document in a node
// table. Update chains are then resolved ("deconvoluted") per identity: the
// identity of a document is the first sha of its update chain, and its
// versions are the live, non-deleted shas at the ends of that chain. Children
// are always reported as versions, so a reply to a document that was later
// edited hangs off the edited document.
//
//	g := docgraph.New(store, origin)
//	tree, err := g.Tree(ctx)
//	heads := tree[docgraph.Root]
//
// # Tree
//
// [Graph.Tree] maps every live sha reachable from the origin to its ordered
// children. The [Root] key holds the live versions of the origin itself, so
// querying with a superseded origin still lands on the current head(s).
//
// A link cycle anywhere in the reachable graph makes the whole view invalid:
// [Graph.Tree], [Graph.Links], [Graph.Layout] and [Graph.Draw] return a
// [*CircularLinkageError] and nothing else.
//
// # Presentation
//
// [Graph.Links] returns the same adjacency in presentation order, which
// [Graph.Sort] can change. [Graph.Layout] and [Graph.Draw] lay out the
// presentation order with package layout.
//
// # Concurrency
//
// A Graph caches its node table and tree without locking. Use one Graph per
// goroutine; building one is cheap. Call [Graph.Reset] after the store has
// accepted new edges.
package docgraph
