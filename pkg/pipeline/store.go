package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/linkgraph/pkg/linkage"
	"github.com/matzehuels/linkgraph/pkg/observability"
)

// observedStore reports every adjacency read to the registered store hooks.
type observedStore struct {
	inner  linkage.Store
	driver string
}

func observe(s linkage.Store, driver string) *observedStore {
	if o, ok := s.(*observedStore); ok {
		return o
	}
	return &observedStore{inner: s, driver: driver}
}

func (s *observedStore) Linkages(ctx context.Context, sha linkage.Sha) ([]linkage.Linkage, error) {
	start := time.Now()
	edges, err := s.inner.Linkages(ctx, sha)
	observability.Store().OnLinkages(ctx, s.driver, string(sha), len(edges), time.Since(start), err)
	return edges, err
}

// Revision passes through to the wrapped store. It returns "" when the store
// cannot report one, which disables thread caching.
func (s *observedStore) Revision(ctx context.Context) (string, error) {
	r, ok := s.inner.(linkage.Revisioner)
	if !ok {
		return "", nil
	}
	return r.Revision(ctx)
}
