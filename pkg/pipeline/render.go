package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/linkgraph/pkg/errors"
	"github.com/matzehuels/linkgraph/pkg/graph"
	"github.com/matzehuels/linkgraph/pkg/layout"
	"github.com/matzehuels/linkgraph/pkg/render/nodelink"
)

// Render draws t in each requested format.
func Render(ctx context.Context, t graph.Thread, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, t, format, opts.Detailed)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat draws t in a single format.
//
// The text diagram is recomputed from the thread's adjacency so that a
// thread read back from JSON draws exactly like the live graph it came from.
func RenderFormat(ctx context.Context, t graph.Thread, format string, detailed bool) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(layout.Draw(t.Rows())), nil
	case FormatJSON:
		data, err := graph.MarshalThread(t)
		if err != nil {
			return nil, fmt.Errorf("render json: %w", err)
		}
		return data, nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(t, nodelink.Options{Detailed: detailed})), nil
	case FormatSVG:
		dot := nodelink.ToDOT(t, nodelink.Options{Detailed: detailed})
		data, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return data, nil
	}
	return nil, errors.ValidateFormat(format, ValidFormats...)
}
