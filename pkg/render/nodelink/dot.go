package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lineage/pkg/lineage"
)

// Node colours.
const (
	OriginColor  = "#1f77b4"
	DerivedColor = "#ff7f0e"
)

// UnknownYearLabel labels edges whose event year is unknown.
const UnknownYearLabel = "?"

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the formation year under each district name.
	Detailed bool

	// RankDir is the Graphviz rank direction. Defaults to "TB".
	RankDir string
}

// RankDirs lists the accepted Graphviz rank directions.
var RankDirs = []string{"TB", "LR", "BT", "RL"}

// ValidRankDir reports whether dir is one of [RankDirs].
func ValidRankDir(dir string) bool {
	return slices.Contains(RankDirs, dir)
}

// ToDOT converts a lineage graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Origin districts are drawn larger in blue, derived districts in orange.
// Every recorded event becomes its own edge labelled with its year, so
// parallel events between the same pair appear as parallel arrows. Nodes are
// emitted in name order and edges in record order, so the output is stable.
func ToDOT(g *lineage.Graph, opts Options) string {
	rankdir := opts.RankDir
	if !ValidRankDir(rankdir) {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  label=%q;\n", g.Region())
	buf.WriteString("  labelloc=t;\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fontsize=14, fontcolor=white];\n")
	buf.WriteString("  edge [fontsize=11, color=\"#555555\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Source, e.Dest, lineage.FormatYear(e.Year, UnknownYearLabel))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n lineage.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	if n.IsOrigin() {
		return n.Name + "\norigin"
	}
	return n.Name + "\nformed " + lineage.FormatYear(n.FormationYear, UnknownYearLabel)
}

func fmtAttrs(n lineage.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.IsOrigin() {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", OriginColor), "fontsize=18", "penwidth=2")
	} else {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", DerivedColor))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag to a zero-origin viewBox with
// matching pixel size, dropping Graphviz's pt units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
