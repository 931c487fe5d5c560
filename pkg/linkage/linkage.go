package linkage

import (
	"strings"

	"github.com/matzehuels/linkgraph/pkg/errors"
)

// Sha is the content hash identifying a stored document.
// The graph engine treats it as opaque; [ParseSha] validates external input.
type Sha string

// shortLength is the number of characters shown by [Sha.Short].
const shortLength = 7

// ParseSha validates s as a 40-character lowercase hex hash.
func ParseSha(s string) (Sha, error) {
	if err := errors.ValidateSha(s); err != nil {
		return "", err
	}
	return Sha(s), nil
}

// MustParseSha is like [ParseSha] but panics on invalid input.
// It is intended for tests and package-level fixtures.
func MustParseSha(s string) Sha {
	sha, err := ParseSha(s)
	if err != nil {
		panic(err)
	}
	return sha
}

// String returns the full hash.
func (s Sha) String() string { return string(s) }

// Short returns the abbreviated hash used in diagrams and log lines.
func (s Sha) Short() string {
	if len(s) <= shortLength {
		return string(s)
	}
	return string(s[:shortLength])
}

// Kind is the type of a raw edge.
type Kind uint8

const (
	// Link records a new child document.
	Link Kind = iota + 1
	// Update records that the source was superseded by the target.
	Update
	// Delete records that the target was retracted.
	Delete
)

var kindNames = map[Kind]string{
	Link:   "link",
	Update: "update",
	Delete: "delete",
}

// String returns the lowercase kind name, or "unknown".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether k is one of the three edge kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind parses a kind name. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidKind, "unknown edge kind %q (want link, update or delete)", s)
}

// Linkage is one outgoing edge as seen from its source.
type Linkage struct {
	Target Sha
	Kind   Kind
}

// Edge is a complete raw edge.
type Edge struct {
	Source Sha
	Target Sha
	Kind   Kind
}

// Linkage returns the edge as seen from its source.
func (e Edge) Linkage() Linkage {
	return Linkage{Target: e.Target, Kind: e.Kind}
}

// Validate checks that both endpoints are well-formed hashes and the kind is known.
func (e Edge) Validate() error {
	if err := errors.ValidateSha(string(e.Source)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "edge source")
	}
	if err := errors.ValidateSha(string(e.Target)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "edge target")
	}
	if !e.Kind.Valid() {
		return errors.New(errors.ErrCodeInvalidKind, "edge %s -> %s has unknown kind %d", e.Source.Short(), e.Target.Short(), e.Kind)
	}
	return nil
}
