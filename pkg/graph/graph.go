package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Thread Serialization API
// =============================================================================

// MarshalThread converts a Thread to indented JSON bytes.
func MarshalThread(t Thread) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteThread(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalThread decodes JSON bytes into a Thread.
func UnmarshalThread(data []byte) (Thread, error) {
	return ReadThread(bytes.NewReader(data))
}

// WriteThread writes t as JSON to an io.Writer.
func WriteThread(t Thread, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadThread decodes a JSON thread from an io.Reader.
func ReadThread(r io.Reader) (Thread, error) {
	var t Thread
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return Thread{}, fmt.Errorf("decode: %w", err)
	}
	if err := t.validate(); err != nil {
		return Thread{}, err
	}
	return t, nil
}

// WriteThreadFile writes t to a JSON file.
// The file is created with 0644 permissions.
func WriteThreadFile(t Thread, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteThread(t, f)
}

// ReadThreadFile reads a JSON file and returns the decoded Thread.
func ReadThreadFile(path string) (Thread, error) {
	f, err := os.Open(path)
	if err != nil {
		return Thread{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadThread(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

// validate checks that every edge endpoint and head is a listed node.
func (t Thread) validate() error {
	known := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.Sha == "" {
			return fmt.Errorf("node with empty sha")
		}
		known[string(n.Sha)] = true
	}
	for _, h := range t.Heads {
		if !known[string(h)] {
			return fmt.Errorf("head %q is not a node", h)
		}
	}
	for _, e := range t.Edges {
		if !known[string(e.From)] || !known[string(e.To)] {
			return fmt.Errorf("edge %s -> %s references unknown node", e.From, e.To)
		}
	}
	return nil
}
