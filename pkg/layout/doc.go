// Package layout assigns lanes to a live document tree and draws it as a
// commit-graph style ASCII diagram.
//
// [Compute] walks the tree in draw order and yields one [Row] per sha: the
// column it is drawn in, the other lanes open at that row, and the columns
// its children continue in. [Draw] turns the rows into text:
//
//	*-+ 1f3c9a2
//	* | 8be0d41
//	| * 0c72f5e
//	*-+ 5a9d3b7
//
// A sha reached through several parents is drawn once, after every branch
// leading to it. Free columns are reused lowest index first, so the output is
// fully determined by the tree and its child order.
package layout
