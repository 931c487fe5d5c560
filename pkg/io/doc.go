// Package io provides import and export of raw edge fixtures.
//
// # Overview
//
// A fixture is a flat list of raw edges, the same records a linkage store
// holds. Fixtures are used to seed a store with the load command, to
// reproduce a thread in a bug report, and as test input.
//
// # Formats
//
// Three encodings of the same document are supported, selected by file
// extension (see [DetectFormat]):
//
//	{
//	  "edges": [
//	    {"from": "<sha>", "to": "<sha>", "kind": "link"},
//	    {"from": "<sha>", "to": "<sha>", "kind": "update"}
//	  ]
//	}
//
// YAML (.yaml, .yml) and TOML (.toml) use the same field names. In TOML the
// edges are an array of tables:
//
//	[[edges]]
//	from = "<sha>"
//	to = "<sha>"
//	kind = "delete"
//
// # Validation
//
// Every edge must name two 40-character lowercase hex shas and one of the
// kinds link, update or delete. Errors name the offending record by its
// position in the file. Edge order is preserved: it becomes the store order
// of each source's linkages.
//
// # Import and Export
//
//	edges, err := io.ImportFile("thread.yaml")
//	err = io.ExportFile(edges, "thread.toml")
//
// [ReadEdges] and [WriteEdges] work on any io.Reader or io.Writer.
package io
