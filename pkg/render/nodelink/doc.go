// Package nodelink renders resolved threads as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// each live document appears as a box and each parent to child relation as an
// arrow. It complements the ASCII lane diagram for cases where a picture is
// easier to share.
//
// # Usage
//
// Convert a thread to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(t, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, labels show the full sha, the original sha of
//     edited documents and the diagram coordinates.
//
// Tails are filled to stand out. Deleted and superseded documents are never
// part of a thread and so never appear.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
