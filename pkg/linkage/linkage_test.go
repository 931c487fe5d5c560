package linkage

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/linkgraph/pkg/errors"
)

func sha(c string) Sha { return Sha(strings.Repeat(c, 40)) }

func TestParseSha(t *testing.T) {
	good := strings.Repeat("0f", 20)
	got, err := ParseSha(good)
	if err != nil {
		t.Fatalf("ParseSha() error: %v", err)
	}
	if got != Sha(good) {
		t.Errorf("ParseSha() = %v, want %v", got, good)
	}

	_, err = ParseSha("abc")
	if !errors.Is(err, errors.ErrCodeInvalidSha) {
		t.Errorf("ParseSha(abc) error = %v, want %v", err, errors.ErrCodeInvalidSha)
	}
}

func TestShaShort(t *testing.T) {
	tests := []struct {
		in   Sha
		want string
	}{
		{sha("a"), "aaaaaaa"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := tt.in.Short(); got != tt.want {
			t.Errorf("Short(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"link", Link, false},
		{"Update", Update, false},
		{" DELETE ", Delete, false},
		{"merge", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	for _, k := range []Kind{Link, Update, Delete} {
		back, err := ParseKind(k.String())
		if err != nil || back != k {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", k.String(), back, err, k)
		}
	}
	if got := Kind(42).String(); got != "unknown" {
		t.Errorf("Kind(42).String() = %q, want unknown", got)
	}
}

func TestEdgeValidate(t *testing.T) {
	tests := []struct {
		name    string
		edge    Edge
		wantErr bool
	}{
		{"valid", Edge{sha("a"), sha("b"), Link}, false},
		{"bad source", Edge{"a", sha("b"), Link}, true},
		{"bad target", Edge{sha("a"), "", Update}, true},
		{"bad kind", Edge{sha("a"), sha("b"), 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.edge.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemStoreOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(
		Edge{sha("a"), sha("c"), Link},
		Edge{sha("a"), sha("b"), Link},
		Edge{sha("a"), sha("d"), Update},
	)

	got, err := s.Linkages(ctx, sha("a"))
	if err != nil {
		t.Fatalf("Linkages() error: %v", err)
	}
	want := []Linkage{{sha("c"), Link}, {sha("b"), Link}, {sha("d"), Update}}
	if len(got) != len(want) {
		t.Fatalf("Linkages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Linkages()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMemStorePutReplacesKind(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(
		Edge{sha("a"), sha("b"), Link},
		Edge{sha("a"), sha("c"), Link},
	)
	before, _ := s.Revision(ctx)

	if err := s.Put(ctx, Edge{sha("a"), sha("b"), Delete}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, _ := s.Linkages(ctx, sha("a"))
	if len(got) != 2 {
		t.Fatalf("Linkages() len = %d, want 2", len(got))
	}
	if got[0] != (Linkage{sha("b"), Delete}) {
		t.Errorf("Linkages()[0] = %v, want b/delete in first position", got[0])
	}

	after, _ := s.Revision(ctx)
	if before == after {
		t.Errorf("Revision() unchanged after Put: %s", after)
	}
}

func TestMemStoreUnknownSha(t *testing.T) {
	s := NewMemStore()
	got, err := s.Linkages(context.Background(), sha("f"))
	if err != nil {
		t.Fatalf("Linkages() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Linkages() = %v, want empty", got)
	}
}

func TestMemStoreEdges(t *testing.T) {
	s := NewMemStore(
		Edge{sha("b"), sha("c"), Link},
		Edge{sha("a"), sha("b"), Link},
	)
	got, err := s.Edges(context.Background())
	if err != nil {
		t.Fatalf("Edges() error: %v", err)
	}
	if len(got) != 2 || got[0].Source != sha("a") || got[1].Source != sha("b") {
		t.Errorf("Edges() = %v, want grouped by source", got)
	}
}

func TestPutAll(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	edges := []Edge{{sha("a"), sha("b"), Link}, {sha("b"), sha("c"), Update}}
	if err := PutAll(ctx, s, edges); err != nil {
		t.Fatalf("PutAll() error: %v", err)
	}
	if got, _ := s.Edges(ctx); len(got) != 2 {
		t.Errorf("Edges() len = %d, want 2", len(got))
	}
}
