// Package render groups the visual renderers for a region.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the lineage graph using Graphviz.
// Origin districts are blue, derived districts orange, and each edge is
// labelled with the formation year of its destination ("?" when unknown).
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Timelines
//
// The [timeline] subpackage draws the temporal layout directly as SVG:
// districts sit at their formation year on the x axis and are spread around
// the centre line when several share a year.
//
//	svg := timeline.RenderSVG(g, lineage.Layout(g), timeline.DefaultOptions())
package render
