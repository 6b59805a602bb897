// Package view provides serializable views of computed lineage results.
//
// The lineage package keeps its graph and tree types opaque. This package
// converts them into plain structs with JSON and YAML tags that the CLI
// writes to disk and the HTTP server returns:
//
//   - [Graph]: nodes with formation year and kind, edges with multiplicity
//   - [TreeNode]: the cycle-safe lineage tree
//   - [Region]: roots, graph, tree and layout for one region
//   - [Summary]: the Markdown report of a batch run
//
// # Encoding
//
// [Marshal] encodes any view as indented JSON or YAML. [WriteFile] picks the
// format from the file extension:
//
//	err := view.WriteFile(view.NewRegion(g, roots, fallback, tree, points), "Karnataka.region.yaml")
//
// [FileStem] turns a region name into a safe file name stem, and
// [UniqueStems] keeps those stems distinct across all regions of a dataset.
package view
