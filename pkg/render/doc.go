// Package render groups the renderers for resolved threads.
//
// The ASCII lane diagram lives in [github.com/matzehuels/linkgraph/pkg/layout]
// because it is part of the query API. Renderers here work on the serialized
// [github.com/matzehuels/linkgraph/pkg/graph.Thread] and may need external
// libraries:
//
//   - [nodelink]: Graphviz DOT and SVG output
package render
