package lineage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointMap(points []Point) map[string]Point {
	m := make(map[string]Point, len(points))
	for _, p := range points {
		m[p.Node] = p
	}
	return m
}

func TestLayout(t *testing.T) {
	type pos struct {
		x int
		y float64
	}
	tests := []struct {
		name  string
		edges []EdgeRecord
		want  map[string]pos
	}{
		{
			name:  "fan-out with undated origin",
			edges: []EdgeRecord{rec("A", "B", 1960), rec("A", "C", 1960), rec("C", "D", 1975)},
			want: map[string]pos{
				"A": {1955, 0},
				"B": {1960, -0.5},
				"C": {1960, 0.5},
				"D": {1975, 0},
			},
		},
		{
			name:  "merge",
			edges: []EdgeRecord{rec("A", "C", 1970), rec("B", "C", 1970)},
			want: map[string]pos{
				"A": {1965, -0.5},
				"B": {1965, 0.5},
				"C": {1970, 0},
			},
		},
		{
			name:  "no known years",
			edges: []EdgeRecord{rec("A", "B", nil), rec("B", "A", nil)},
			want: map[string]pos{
				"A": {1950, -0.5},
				"B": {1950, 0.5},
			},
		},
		{
			name:  "triple bucket",
			edges: []EdgeRecord{rec("R", "Z", 2001), rec("R", "M", 2001), rec("R", "A", 2001)},
			want: map[string]pos{
				"R": {1996, 0},
				"A": {2001, -1},
				"M": {2001, 0},
				"Z": {2001, 1},
			},
		},
		{
			name:  "first year wins in layout",
			edges: []EdgeRecord{rec("A", "C", 1970), rec("B", "C", 1980)},
			want: map[string]pos{
				"A": {1965, -0.5},
				"B": {1965, 0.5},
				"C": {1970, 0},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := Layout(Build(tt.edges, "X"))
			require.Len(t, points, len(tt.want))
			got := pointMap(points)
			for name, w := range tt.want {
				p, ok := got[name]
				require.True(t, ok, name)
				assert.Equal(t, w.x, p.X, name)
				assert.InDelta(t, w.y, p.Y, 1e-9, name)
			}
		})
	}
}

func TestLayout_Empty(t *testing.T) {
	points := Layout(Build(nil, "X"))
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestLayout_SortedByName(t *testing.T) {
	points := Layout(Build([]EdgeRecord{rec("Q", "B", 1990), rec("Q", "A", 1980)}, "X"))
	var names []string
	for _, p := range points {
		names = append(names, p.Node)
	}
	assert.Equal(t, []string{"A", "B", "Q"}, names)
}

// Within every bucket the y-values are centred on zero, spaced by one, and
// follow name order.
func TestLayout_BucketLadder(t *testing.T) {
	var edges []EdgeRecord
	for i := 0; i < 7; i++ {
		edges = append(edges, rec("Root", fmt.Sprintf("D%d", i), 1900+i%3))
	}
	points := Layout(Build(edges, "X"))

	for x, bucket := range Buckets(points) {
		sum := 0.0
		for i, p := range bucket {
			sum += p.Y
			if i > 0 {
				assert.InDelta(t, 1.0, p.Y-bucket[i-1].Y, 1e-9, "x=%d", x)
				assert.Less(t, bucket[i-1].Node, p.Node, "x=%d", x)
			}
		}
		assert.InDelta(t, 0, sum, 1e-9, "x=%d", x)
	}
}

func TestLayout_Deterministic(t *testing.T) {
	edges := []EdgeRecord{
		rec("A", "B", 1960), rec("A", "C", 1960), rec("A", "E", 1960),
		rec("C", "D", nil), rec("F", "G", "1961.9"),
	}
	first := Layout(Build(edges, "X"))
	for range 20 {
		assert.Equal(t, first, Layout(Build(edges, "X")))
	}
}

func TestFallbackYear(t *testing.T) {
	assert.Equal(t, DefaultBaseYear, FallbackYear(Build(nil, "X")))
	assert.Equal(t, 1950, FallbackYear(Build([]EdgeRecord{rec("A", "B", 1955)}, "X")))
	assert.Equal(t, 1895, FallbackYear(Build([]EdgeRecord{rec("A", "B", 1960), rec("A", "C", 1900)}, "X")))
}
