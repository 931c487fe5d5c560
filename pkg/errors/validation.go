package errors

import (
	"slices"
	"strings"
	"unicode"
)

// ShaLength is the length of a hex-encoded content hash.
const ShaLength = 40

// ValidateSha checks that s is a 40-character lowercase hex content hash.
//
// Uppercase hex is rejected rather than folded so that two spellings of the
// same object never end up as two keys in a store.
func ValidateSha(s string) error {
	if s == "" {
		return New(ErrCodeInvalidSha, "sha cannot be empty")
	}
	if len(s) != ShaLength {
		return New(ErrCodeInvalidSha, "sha must be %d characters, got %d: %q", ShaLength, len(s), s)
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return New(ErrCodeInvalidSha, "sha contains non-hex character %q: %q", r, s)
		}
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
func ValidateFormat(format string, allowed ...string) error {
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of: %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateDriver checks that a backend driver name is one of the allowed names.
func ValidateDriver(kind, driver string, allowed ...string) error {
	if !slices.Contains(allowed, driver) {
		return New(ErrCodeInvalidDriver, "unknown %s driver %q (want one of: %s)", kind, driver, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidatePath validates a filesystem path given on the command line or in
// a config file. Absolute and relative paths are both accepted.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
