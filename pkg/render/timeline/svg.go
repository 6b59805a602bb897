// Package timeline renders the temporal layout of a region as SVG.
//
// Each district is a dot placed at its layout position: the horizontal axis
// is the formation year, the vertical axis is the within-year ladder offset
// computed by [lineage.Layout]. Recorded events are drawn as arrows between
// the dots, and every year that holds at least one district gets a dashed
// gridline with a label.
//
//	points := lineage.Layout(g)
//	svg := timeline.RenderSVG(g, points, timeline.DefaultOptions())
package timeline

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1200
	DefaultHeight = 700
	DefaultMargin = 80
)

const (
	nodeRadius   = 7
	fontFamily   = "Helvetica, Arial, sans-serif"
	gridColor    = "#dddddd"
	edgeColor    = "#888888"
	textColor    = "#222222"
	captionColor = "#666666"
)

// Options controls the canvas.
type Options struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	Margin int `toml:"margin"`
}

// DefaultOptions returns the default canvas.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Height: DefaultHeight, Margin: DefaultMargin}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	if 2*o.Margin >= min(o.Width, o.Height) {
		o.Margin = min(d.Margin, min(o.Width, o.Height)/4)
	}
	return o
}

// scale maps layout coordinates to canvas pixels.
type scale struct {
	minX, maxX int
	minY, maxY float64
	opts       Options
}

func newScale(points []lineage.Point, opts Options) scale {
	s := scale{opts: opts}
	for i, p := range points {
		if i == 0 {
			s.minX, s.maxX, s.minY, s.maxY = p.X, p.X, p.Y, p.Y
			continue
		}
		s.minX, s.maxX = min(s.minX, p.X), max(s.maxX, p.X)
		s.minY, s.maxY = min(s.minY, p.Y), max(s.maxY, p.Y)
	}
	if s.minX == s.maxX {
		s.minX--
		s.maxX++
	}
	if s.minY == s.maxY {
		s.minY--
		s.maxY++
	}
	return s
}

func (s scale) px(x int) float64 {
	inner := float64(s.opts.Width - 2*s.opts.Margin)
	return float64(s.opts.Margin) + float64(x-s.minX)/float64(s.maxX-s.minX)*inner
}

func (s scale) py(y float64) float64 {
	inner := float64(s.opts.Height - 2*s.opts.Margin)
	return float64(s.opts.Margin) + (y-s.minY)/(s.maxY-s.minY)*inner
}

// RenderSVG draws the layout. points must come from [lineage.Layout] on g;
// edges whose endpoints are missing from points are skipped.
func RenderSVG(g *lineage.Graph, points []lineage.Point, opts Options) []byte {
	opts = opts.withDefaults()

	var svg strings.Builder
	fmt.Fprintf(&svg, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">
<defs>
<marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse">
<path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/>
</marker>
<style>
.title { font-family: %s; font-size: 20px; font-weight: bold; fill: %s; }
.year { font-family: %s; font-size: 11px; fill: %s; }
.label { font-family: %s; font-size: 12px; fill: %s; }
</style>
</defs>
<rect width="100%%" height="100%%" fill="white"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, edgeColor,
		fontFamily, textColor, fontFamily, captionColor, fontFamily, textColor)

	fmt.Fprintf(&svg, `<text class="title" x="%d" y="%d">%s</text>`+"\n",
		opts.Margin, opts.Margin/2, escapeXML("District timeline: "+g.Region()))

	if len(points) == 0 {
		fmt.Fprintf(&svg, `<text class="label" x="%d" y="%d" text-anchor="middle">no districts</text>`+"\n",
			opts.Width/2, opts.Height/2)
		svg.WriteString("</svg>\n")
		return []byte(svg.String())
	}

	s := newScale(points, opts)
	byName := make(map[string]lineage.Point, len(points))
	for _, p := range points {
		byName[p.Node] = p
	}

	writeGrid(&svg, s, points)
	writeEdges(&svg, s, g, byName)
	writeNodes(&svg, s, g, points)

	svg.WriteString("</svg>\n")
	return []byte(svg.String())
}

func writeGrid(svg *strings.Builder, s scale, points []lineage.Point) {
	years := make(map[int]struct{})
	for _, p := range points {
		years[p.X] = struct{}{}
	}
	top := float64(s.opts.Margin) - nodeRadius*2
	bottom := float64(s.opts.Height-s.opts.Margin) + nodeRadius*2
	svg.WriteString(`<g class="grid">` + "\n")
	for _, y := range slices.Sorted(maps.Keys(years)) {
		x := s.px(y)
		fmt.Fprintf(svg, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="4 4"/>`+"\n",
			x, top, x, bottom, gridColor)
		fmt.Fprintf(svg, `<text class="year" x="%.1f" y="%.1f" text-anchor="middle">%d</text>`+"\n",
			x, bottom+14, y)
	}
	svg.WriteString("</g>\n")
}

func writeEdges(svg *strings.Builder, s scale, g *lineage.Graph, byName map[string]lineage.Point) {
	svg.WriteString(`<g class="edges">` + "\n")
	for _, e := range g.Edges() {
		from, ok1 := byName[e.Source]
		to, ok2 := byName[e.Dest]
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(svg, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.2" marker-end="url(#arrow)"><title>%s</title></line>`+"\n",
			s.px(from.X), s.py(from.Y), s.px(to.X), s.py(to.Y), edgeColor,
			escapeXML(fmt.Sprintf("%s → %s (%s)", e.Source, e.Dest, lineage.FormatYear(e.Year, nodelink.UnknownYearLabel))))
	}
	svg.WriteString("</g>\n")
}

func writeNodes(svg *strings.Builder, s scale, g *lineage.Graph, points []lineage.Point) {
	svg.WriteString(`<g class="nodes">` + "\n")
	for _, p := range points {
		color := nodelink.DerivedColor
		if n, ok := g.Node(p.Node); ok && n.IsOrigin() {
			color = nodelink.OriginColor
		}
		x, y := s.px(p.X), s.py(p.Y)
		fmt.Fprintf(svg, `<circle cx="%.1f" cy="%.1f" r="%d" fill="%s"><title>%s</title></circle>`+"\n",
			x, y, nodeRadius, color, escapeXML(fmt.Sprintf("%s (%d)", p.Node, p.X)))
		fmt.Fprintf(svg, `<text class="label" x="%.1f" y="%.1f">%s</text>`+"\n",
			x+nodeRadius+3, y+4, escapeXML(p.Node))
	}
	svg.WriteString("</g>\n")
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string { return xmlReplacer.Replace(s) }
