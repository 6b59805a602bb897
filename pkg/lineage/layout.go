package lineage

import (
	"cmp"
	"maps"
	"slices"
)

const (
	// DefaultBaseYear is the x-coordinate of undated districts when no
	// district in the region has a known formation year.
	DefaultBaseYear = 1950

	// FallbackYearOffset is how far before the earliest known formation year
	// undated districts are placed.
	FallbackYearOffset = 5
)

// Point is the temporal layout position of one district.
type Point struct {
	Node string  `json:"node" yaml:"node"`
	X    int     `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

// FallbackYear returns the shared x-coordinate for districts without a
// formation year: the earliest known year minus [FallbackYearOffset], or
// [DefaultBaseYear] when no year is known.
func FallbackYear(g *Graph) int {
	years := g.KnownYears()
	if len(years) == 0 {
		return DefaultBaseYear
	}
	return years[0] - FallbackYearOffset
}

// Layout assigns every district a deterministic 2-D position.
//
// X is the formation year, or [FallbackYear] for undated districts. Districts
// sharing an x-coordinate form a bucket; within a bucket names are sorted and
// the i-th of n members gets y = i - (n-1)/2. Singletons sit at 0, pairs at
// ±0.5, triples at -1, 0, 1, so no two districts of the same year collide.
//
// The result has one point per district, sorted by name. An empty graph
// yields an empty slice.
func Layout(g *Graph) []Point {
	fallback := FallbackYear(g)

	buckets := make(map[int][]string)
	for name, n := range g.nodes {
		x := fallback
		if n.FormationYear != nil {
			x = *n.FormationYear
		}
		buckets[x] = append(buckets[x], name)
	}

	points := make([]Point, 0, len(g.nodes))
	for _, x := range slices.Sorted(maps.Keys(buckets)) {
		members := buckets[x]
		slices.Sort(members)
		mid := float64(len(members)-1) / 2
		for i, name := range members {
			points = append(points, Point{Node: name, X: x, Y: float64(i) - mid})
		}
	}

	slices.SortFunc(points, func(a, b Point) int { return cmp.Compare(a.Node, b.Node) })
	return points
}

// Buckets groups layout points by x-coordinate, preserving y order.
func Buckets(points []Point) map[int][]Point {
	out := make(map[int][]Point)
	for _, p := range points {
		out[p.X] = append(out[p.X], p)
	}
	for _, b := range out {
		slices.SortFunc(b, func(p, q Point) int { return cmp.Compare(p.Y, q.Y) })
	}
	return out
}
