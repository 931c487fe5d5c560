package linkage

import "context"

// Store enumerates the outgoing edges of a sha.
//
// Linkages must return edges in a stable order for a fixed snapshot of the
// store. An unknown sha has no edges; that is not an error.
type Store interface {
	Linkages(ctx context.Context, sha Sha) ([]Linkage, error)
}

// Writer records raw edges. Putting an existing (source, target) pair
// replaces its kind and keeps its position.
type Writer interface {
	Put(ctx context.Context, e Edge) error
}

// Revisioner reports an opaque token that changes whenever the store accepts
// a write. It is used to key cached query results.
type Revisioner interface {
	Revision(ctx context.Context) (string, error)
}

// Dumper lists every stored edge. The order is backend specific but keeps
// the store order of each source's linkages.
type Dumper interface {
	Edges(ctx context.Context) ([]Edge, error)
}

// ReadWriter is a store that can be both queried and loaded.
type ReadWriter interface {
	Store
	Writer
}

// BatchWriter is implemented by stores that can record many edges at once,
// typically in one transaction.
type BatchWriter interface {
	PutBatch(ctx context.Context, edges []Edge) error
}

// PutAll writes edges in order, stopping at the first error. Stores that
// implement [BatchWriter] receive all edges in one call.
func PutAll(ctx context.Context, w Writer, edges []Edge) error {
	if b, ok := w.(BatchWriter); ok {
		return b.PutBatch(ctx, edges)
	}
	for _, e := range edges {
		if err := w.Put(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
