// Package sqlite implements a linkage store on SQLite.
//
// Edges live in a single table keyed by (source, target). An autoincrement
// sequence number gives every source's linkages a stable store order, and a
// revision counter in the meta table changes with every accepted write.
//
// The database runs in WAL mode with one connection, so a CLI process can
// read while another one loads fixtures.
package sqlite
