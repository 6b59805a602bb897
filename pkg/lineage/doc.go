// Package lineage builds district ancestry structures from split/rename events.
//
// # Overview
//
// Administrative districts split, merge and get renamed over time. The input
// to this package is a flat list of such events ([EdgeRecord]): a source
// district, the district that resulted from it, an optional formation year
// and the region (state, province) the event belongs to.
//
// From those records the package derives three read-only views per region:
//
//   - [Graph]: a directed lineage graph with forward and reverse adjacency
//   - [Tree]: a rooted, cycle-safe tree suitable for hierarchical rendering
//   - [Point]: a deterministic 2-D temporal layout (x = year, y = ladder)
//
// # Basic Usage
//
//	g := lineage.Build(records, "Karnataka")
//	roots, fallback := lineage.Roots(g)
//	tree := lineage.BuildTree(g, roots, g.Region())
//	points := lineage.Layout(g)
//
// # Determinism
//
// Every function in this package is a pure function of its input. Records
// are processed in input order, the first incoming edge decides a node's
// formation year, roots are sorted by name and layout buckets are sorted by
// name. Two runs over the same records always produce identical output.
//
// # Cycles
//
// Real renaming chains sometimes loop back (A renamed to B, later B renamed
// back to A). [Build] keeps such cycles in the graph. [Roots] falls back to
// the lexicographically smallest name when a region has no parentless node,
// and [BuildTree] closes every revisit of a name already on the current
// descent path with a placeholder node instead of recursing.
//
// # Concurrency
//
// A [Graph] is immutable once [Build] returns, so the tree builder and the
// layout engine may read it from different goroutines. Regions share no
// state and can be processed in parallel.
package lineage
