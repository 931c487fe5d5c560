package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/linkgraph/pkg/errors"
	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// WriteEdges encodes edges as a fixture in the given format and writes it to w.
// The output can be read back with [ReadEdges].
func WriteEdges(edges []linkage.Edge, format string, w io.Writer) error {
	if err := errors.ValidateFormat(format, Formats...); err != nil {
		return err
	}

	out := fixture{Edges: make([]record, len(edges))}
	for i, e := range edges {
		out.Edges[i] = record{From: string(e.Source), To: string(e.Target), Kind: e.Kind.String()}
	}

	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(out)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(out)
		if err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(out)
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportFile writes edges to path, choosing the format from the extension.
func ExportFile(edges []linkage.Edge, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteEdges(edges, format, f)
}
