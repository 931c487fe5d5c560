// Package graph provides the serialization format for resolved threads.
//
// A [Thread] is the wire form of what a [docgraph.Graph] computes for one
// origin: the live documents with their diagram coordinates, the edges
// between them and the tails. It is used for JSON output, cache entries and
// document stores (fields carry bson tags).
//
// # Building
//
// Use [FromGraph] to capture a thread from a live graph:
//
//	g := docgraph.New(store, origin)
//	t, err := graph.FromGraph(ctx, g)
//
// # Serialization
//
//	data, _ := graph.MarshalThread(t)        // Thread → []byte
//	t, _ = graph.UnmarshalThread(data)       // []byte → Thread
//	graph.WriteThreadFile(t, "thread.json")  // Thread → File
//	t, _ = graph.ReadThreadFile("thread.json")
//
// [Thread.Adjacency] turns a decoded thread back into a [docgraph.Tree], so a
// cached thread can be drawn without touching the store.
//
// [docgraph.Graph]: github.com/matzehuels/linkgraph/pkg/docgraph.Graph
// [docgraph.Tree]: github.com/matzehuels/linkgraph/pkg/docgraph.Tree
package graph
