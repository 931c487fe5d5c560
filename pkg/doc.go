// Package pkg provides the libraries behind linkgraph, which resolves document
// threads from raw link, update and delete edges.
//
// # Overview
//
// A store holds raw edges between documents identified by 40-character shas.
// Starting from an origin document, linkgraph crawls every edge reachable from
// it, folds update chains so only the current version of each document stays
// live, drops deleted documents, and exposes the result as a tree, a lane
// diagram or a rendered graph.
//
// The typical data flow:
//
//	Fixture file / store
//	         ↓
//	    [linkage] package (raw edges, store drivers)
//	         ↓
//	    [docgraph] package (crawl, deconvolution, tree)
//	         ↓
//	    [layout] package (columns + ASCII draw)
//	         ↓
//	    [graph] package (serialized thread)
//	         ↓
//	    Text/JSON/DOT/SVG output
//
// # Quick Start
//
// Load edges and draw the thread around a document:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/linkgraph/pkg/docgraph"
//	    "github.com/matzehuels/linkgraph/pkg/io"
//	    "github.com/matzehuels/linkgraph/pkg/linkage"
//	)
//
//	store := linkage.NewMemStore()
//	io.Load(ctx, store, "thread.yaml")
//
//	g := docgraph.New(store, origin)
//	diagram, _ := g.Draw(ctx)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [linkage] - Raw edges, the Store interfaces and the in-memory store. Durable
// drivers live in [linkage/sqlite], [linkage/badger] and [linkage/mongo].
//
// [docgraph] - The query API: crawl a thread, resolve updates and deletes,
// detect circular linkage and answer Node, Tree, Links, Tails and Sort.
//
// [layout] - Assigns every live document a row and a lane and draws the
// ASCII diagram.
//
// ## Serialization
//
// [graph] - The serialized thread shared by caches and renderers.
//
// [io] - Edge fixtures in JSON, YAML and TOML.
//
// ## Visualization
//
// [render/nodelink] - Graphviz DOT and SVG output.
//
// ## Infrastructure
//
// [pipeline] - Resolve and render with caching, used by the CLI.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for crawl, render, cache and store events.
package pkg
