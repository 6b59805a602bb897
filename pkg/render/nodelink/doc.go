// Package nodelink renders a region's lineage graph as a node-link diagram.
//
// # Overview
//
// Districts appear as filled ellipses connected by arrows from the source
// district to the district formed from it. Origin districts (those with no
// recorded parent) are larger and blue; derived districts are orange. Each
// arrow is labelled with the year of the event, or "?" when it is unknown.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package nodelink
