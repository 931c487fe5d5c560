package linkage

import (
	"context"
	"slices"
	"strconv"
	"sync"
)

// MemStore is an in-memory [Store] that keeps edges in insertion order.
// It is safe for concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	edges    map[Sha][]Linkage
	revision uint64
}

// NewMemStore returns a store holding the given edges.
func NewMemStore(edges ...Edge) *MemStore {
	s := &MemStore{edges: make(map[Sha][]Linkage)}
	for _, e := range edges {
		s.put(e)
	}
	return s
}

// Linkages returns a copy of the outgoing edges of sha.
func (s *MemStore) Linkages(_ context.Context, sha Sha) ([]Linkage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.edges[sha]), nil
}

// Put records e. Re-putting a known (source, target) pair changes its kind in place.
func (s *MemStore) Put(_ context.Context, e Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(e)
	return nil
}

func (s *MemStore) put(e Edge) {
	s.revision++
	out := s.edges[e.Source]
	for i := range out {
		if out[i].Target == e.Target {
			out[i].Kind = e.Kind
			return
		}
	}
	s.edges[e.Source] = append(out, e.Linkage())
}

// Edges returns every edge, grouped by source in sha order.
func (s *MemStore) Edges(context.Context) ([]Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make([]Sha, 0, len(s.edges))
	for src := range s.edges {
		sources = append(sources, src)
	}
	slices.Sort(sources)

	var out []Edge
	for _, src := range sources {
		for _, l := range s.edges[src] {
			out = append(out, Edge{Source: src, Target: l.Target, Kind: l.Kind})
		}
	}
	return out, nil
}

// Revision returns the number of writes accepted so far.
func (s *MemStore) Revision(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return "mem:" + strconv.FormatUint(s.revision, 10), nil
}

var (
	_ Store      = (*MemStore)(nil)
	_ Writer     = (*MemStore)(nil)
	_ Revisioner = (*MemStore)(nil)
	_ Dumper     = (*MemStore)(nil)
)
