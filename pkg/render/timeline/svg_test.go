package timeline

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/lineage/pkg/lineage"
)

func sample() (*lineage.Graph, []lineage.Point) {
	g := lineage.Build([]lineage.EdgeRecord{
		lineage.NewEdgeRecord("A", "B", "X", 1960),
		lineage.NewEdgeRecord("A", "C", "X", 1960),
		lineage.NewEdgeRecord("C", "D", "X", 1975),
	}, "X")
	return g, lineage.Layout(g)
}

func TestRenderSVG_WellFormed(t *testing.T) {
	g, points := sample()
	svg := RenderSVG(g, points, DefaultOptions())

	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, svg)
		}
	}
}

func TestRenderSVG_Content(t *testing.T) {
	g, points := sample()
	s := string(RenderSVG(g, points, Options{Width: 800, Height: 400, Margin: 40}))

	if !strings.Contains(s, `viewBox="0 0 800 400"`) {
		t.Error("canvas size not applied")
	}
	if got := strings.Count(s, "<circle "); got != 4 {
		t.Errorf("circles = %d, want 4", got)
	}
	if got := strings.Count(s, `marker-end="url(#arrow)"`); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
	// Gridlines for 1955 (fallback for A), 1960 and 1975.
	for _, year := range []string{">1955<", ">1960<", ">1975<"} {
		if !strings.Contains(s, year) {
			t.Errorf("missing year label %s", year)
		}
	}
	if strings.Count(s, `fill="#1f77b4"`) != 1 {
		t.Error("exactly one origin district expected")
	}
	if !strings.Contains(s, "District timeline: X") {
		t.Error("missing title")
	}
}

func TestRenderSVG_Positions(t *testing.T) {
	g, points := sample()
	s := string(RenderSVG(g, points, Options{Width: 1000, Height: 600, Margin: 100}))

	// x spans 1955..1975 over 800px; y spans -0.5..0.5 over 400px.
	for _, want := range []string{
		`<circle cx="100.0" cy="300.0"`, // A (1955, 0)
		`<circle cx="300.0" cy="100.0"`, // B (1960, -0.5)
		`<circle cx="300.0" cy="500.0"`, // C (1960, 0.5)
		`<circle cx="900.0" cy="300.0"`, // D (1975, 0)
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestRenderSVG_SinglePoint(t *testing.T) {
	g := lineage.Build([]lineage.EdgeRecord{lineage.NewEdgeRecord("A", "B", "X", nil)}, "X")
	points := []lineage.Point{{Node: "A", X: 1950, Y: 0}}
	s := string(RenderSVG(g, points, Options{Width: 1000, Height: 600, Margin: 100}))
	if !strings.Contains(s, `<circle cx="500.0" cy="300.0"`) {
		t.Errorf("single point should be centred\n%s", s)
	}
	if strings.Contains(s, "marker-end") {
		t.Error("edge with a missing endpoint should be skipped")
	}
}

func TestRenderSVG_Empty(t *testing.T) {
	s := string(RenderSVG(lineage.Build(nil, "X"), nil, Options{}))
	if !strings.Contains(s, "no districts") {
		t.Error("empty layout should say so")
	}
	if !strings.Contains(s, `width="1200"`) {
		t.Error("defaults should apply")
	}
}

func TestRenderSVG_EscapesNames(t *testing.T) {
	g := lineage.Build([]lineage.EdgeRecord{lineage.NewEdgeRecord("A&B", "<C>", "X & Y", 1960)}, "X & Y")
	s := string(RenderSVG(g, lineage.Layout(g), DefaultOptions()))
	if strings.Contains(s, "<C>") || strings.Contains(s, "A&B") {
		t.Error("names must be XML-escaped")
	}
	if !strings.Contains(s, "A&amp;B") || !strings.Contains(s, "&lt;C&gt;") {
		t.Error("escaped names missing")
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{Width: 100, Height: 100, Margin: 60}.withDefaults()
	if o.Margin != 25 {
		t.Errorf("oversized margin = %d, want 25", o.Margin)
	}
	o = Options{}.withDefaults()
	if o != DefaultOptions() {
		t.Errorf("zero options = %+v, want defaults", o)
	}
}
