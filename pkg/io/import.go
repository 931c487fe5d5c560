package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/linkgraph/pkg/errors"
	"github.com/matzehuels/linkgraph/pkg/linkage"
)

// Fixture encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists the supported fixture encodings.
var Formats = []string{FormatJSON, FormatYAML, FormatTOML}

type fixture struct {
	Edges []record `json:"edges" yaml:"edges" toml:"edges"`
}

type record struct {
	From string `json:"from" yaml:"from" toml:"from"`
	To   string `json:"to" yaml:"to" toml:"to"`
	Kind string `json:"kind" yaml:"kind" toml:"kind"`
}

// DetectFormat returns the fixture encoding for path based on its extension.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot detect fixture format of %q (want .json, .yaml, .yml or .toml)", path)
}

// ReadEdges decodes a fixture in the given format from r.
//
// Each record is validated; the first invalid record aborts the read with an
// error naming its position. ReadEdges does not close r.
func ReadEdges(r io.Reader, format string) ([]linkage.Edge, error) {
	if err := errors.ValidateFormat(format, Formats...); err != nil {
		return nil, err
	}

	var data fixture
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&data)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&data)
		if err == io.EOF {
			err = nil
		}
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&data)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s fixture", format)
	}

	edges := make([]linkage.Edge, 0, len(data.Edges))
	for i, rec := range data.Edges {
		e, err := rec.edge()
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// ImportFile reads the fixture at path, detecting its format from the extension.
func ImportFile(path string) ([]linkage.Edge, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadEdges(f, format)
}

// Load imports the fixture at path into w and returns the number of edges
// written. Nothing is written when the fixture fails validation.
func Load(ctx context.Context, w linkage.Writer, path string) (int, error) {
	edges, err := ImportFile(path)
	if err != nil {
		return 0, err
	}
	if err := linkage.PutAll(ctx, w, edges); err != nil {
		return 0, errors.Wrap(errors.ErrCodeStore, err, "load %s", path)
	}
	return len(edges), nil
}

func (r record) edge() (linkage.Edge, error) {
	kind, err := linkage.ParseKind(r.Kind)
	if err != nil {
		return linkage.Edge{}, err
	}
	e := linkage.Edge{Source: linkage.Sha(r.From), Target: linkage.Sha(r.To), Kind: kind}
	if err := e.Validate(); err != nil {
		return linkage.Edge{}, err
	}
	return e, nil
}
