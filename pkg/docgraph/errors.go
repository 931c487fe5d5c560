package docgraph

import (
	"errors"
	"strings"

	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// ErrCircularLinkage matches every [*CircularLinkageError] with [errors.Is].
var ErrCircularLinkage = errors.New("circular link detected")

// CircularLinkageError reports a sha that repeats along one root-to-leaf path
// of the live tree.
type CircularLinkageError struct {
	// Path is the cycle itself. It begins and ends with the repeated sha.
	Path []linkage.Sha
	// Trail is the full path from the thread head to the repeated sha,
	// enough to reproduce the failure.
	Trail []linkage.Sha
}

// Error lists the cycle one sha per line.
func (e *CircularLinkageError) Error() string {
	var b strings.Builder
	b.WriteString("circular link detected:")
	for _, sha := range e.Path {
		b.WriteString("\n  ")
		b.WriteString(string(sha))
	}
	return b.String()
}

// Is reports whether target is [ErrCircularLinkage].
func (e *CircularLinkageError) Is(target error) bool {
	return target == ErrCircularLinkage
}
