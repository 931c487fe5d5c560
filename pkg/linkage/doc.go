// Package linkage defines the raw edge vocabulary of the document store and
// the narrow read interface the graph engine consumes.
//
// # Edges
//
// Documents are immutable objects addressed by their content hash ([Sha]).
// They are related by three kinds of edges:
//
//   - [Link]: the source has a new child document (a reply, a sub-page)
//   - [Update]: the source has been superseded by the target
//   - [Delete]: the target has been retracted
//
// A store keeps at most one edge per (source, target) pair. Writing the same
// pair again replaces the kind but keeps the edge's position, so enumeration
// order is stable for a given snapshot.
//
// # Stores
//
// [Store] is all the engine needs: an ordered list of outgoing edges for one
// sha. [Writer] and [Revisioner] are implemented by the persistent backends
// in the sqlite, badger and mongo subpackages, and by [MemStore], which is
// what tests and fixtures use.
//
//	s := linkage.NewMemStore(
//	    linkage.Edge{Source: a, Target: b, Kind: linkage.Link},
//	    linkage.Edge{Source: b, Target: c, Kind: linkage.Update},
//	)
//	edges, err := s.Linkages(ctx, a)
package linkage
