package lineage

import (
	"slices"
)

// NodeKind distinguishes districts that pre-date the records from districts
// created by a recorded event.
type NodeKind int

const (
	// KindOrigin is a district that never appears as a destination.
	KindOrigin NodeKind = iota
	// KindDerived is a district formed by at least one recorded event.
	KindDerived
)

// String returns "origin" or "derived".
func (k NodeKind) String() string {
	if k == KindDerived {
		return "derived"
	}
	return "origin"
}

// Node is a district within one region's lineage graph.
type Node struct {
	Name string
	// FormationYear is the year of the first record (in input order) that
	// names this district as its destination. Nil for origin districts and
	// when that record's year was unknown.
	FormationYear *int
	Kind          NodeKind
}

// IsOrigin reports whether the district has no recorded parent.
func (n Node) IsOrigin() bool { return n.Kind == KindOrigin }

// Edge is one recorded event inside a region, in input order.
type Edge struct {
	Source string
	Dest   string
	Year   *int
}

// YearConflict records a later event that disagreed with the formation year
// already assigned to a district. The first value always wins.
type YearConflict struct {
	Name    string
	Kept    *int
	Ignored *int
}

// Graph is the lineage graph of a single region.
//
// Multiple edges into the same district (merges) and parallel edges between
// the same pair are preserved in input order. The zero value is an empty
// graph; use [Build] to construct a populated one. A Graph is never mutated
// after Build returns and is safe for concurrent reads.
type Graph struct {
	region    string
	nodes     map[string]*Node
	edges     []Edge
	outgoing  map[string][]string // parent -> children
	incoming  map[string][]string // child -> parents
	conflicts []YearConflict
}

// Build assembles the lineage graph for region from edges.
//
// Records belonging to other regions are skipped, so callers may pass the
// full cross-region slice. Records are processed in order: both endpoints
// are registered, the destination is appended to the source's children and
// the source to the destination's parents. The first record into a
// destination sets its formation year; later records never overwrite it.
//
// Build never fails. A region without matching records yields an empty graph.
func Build(edges []EdgeRecord, region string) *Graph {
	g := newGraph(region)
	for _, e := range edges {
		if e.Region != region {
			continue
		}
		g.addEdge(e)
	}
	for name, n := range g.nodes {
		if len(g.incoming[name]) == 0 {
			n.Kind = KindOrigin
		} else {
			n.Kind = KindDerived
		}
	}
	return g
}

func newGraph(region string) *Graph {
	return &Graph{
		region:   region,
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

func (g *Graph) addEdge(e EdgeRecord) {
	g.ensureNode(e.Source)
	dest := g.ensureNode(e.Dest)

	year := copyYear(e.Year)
	firstIncoming := len(g.incoming[e.Dest]) == 0
	g.edges = append(g.edges, Edge{Source: e.Source, Dest: e.Dest, Year: year})
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e.Dest)
	g.incoming[e.Dest] = append(g.incoming[e.Dest], e.Source)

	switch {
	case firstIncoming:
		dest.FormationYear = year
	case year != nil && !sameYear(dest.FormationYear, year):
		g.conflicts = append(g.conflicts, YearConflict{
			Name:    e.Dest,
			Kept:    dest.FormationYear,
			Ignored: year,
		})
	}
}

func (g *Graph) ensureNode(name string) *Node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := &Node{Name: name}
	g.nodes[name] = n
	return n
}

// Region returns the region this graph was built for.
func (g *Graph) Region() string { return g.region }

// NodeCount returns the number of districts in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of recorded events, counting parallel edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns a copy of the named district and true, or false if absent.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns copies of all districts sorted by name.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, name := range g.Names() {
		out = append(out, *g.nodes[name])
	}
	return out
}

// Names returns all district names in lexicographic order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Edges returns a copy of the recorded events in input order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Children returns the districts formed from name, in record order.
// A district formed twice from the same parent appears twice.
// The returned slice is a read-only view.
func (g *Graph) Children(name string) []string { return g.outgoing[name] }

// Parents returns the districts name was formed from, in record order.
// The returned slice is a read-only view.
func (g *Graph) Parents(name string) []string { return g.incoming[name] }

// InDegree returns the number of recorded events producing name.
func (g *Graph) InDegree(name string) int { return len(g.incoming[name]) }

// OutDegree returns the number of recorded events with name as source.
func (g *Graph) OutDegree(name string) int { return len(g.outgoing[name]) }

// KnownYears returns the formation years present in the graph, ascending,
// with duplicates kept.
func (g *Graph) KnownYears() []int {
	var years []int
	for _, n := range g.nodes {
		if n.FormationYear != nil {
			years = append(years, *n.FormationYear)
		}
	}
	slices.Sort(years)
	return years
}

// YearConflicts returns the records whose year disagreed with an already
// assigned formation year, in input order.
func (g *Graph) YearConflicts() []YearConflict { return slices.Clone(g.conflicts) }
