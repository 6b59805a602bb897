package view

import (
	"github.com/matzehuels/lineage/pkg/lineage"
)

// =============================================================================
// Graph
// =============================================================================

// Graph is the serialization format for one region's lineage graph.
// Edges keep input order and multiplicity; nodes are sorted by name.
type Graph struct {
	Region string `json:"region" yaml:"region"`
	Nodes  []Node `json:"nodes" yaml:"nodes"`
	Edges  []Edge `json:"edges" yaml:"edges"`
}

// Node is one district.
type Node struct {
	Name          string `json:"name" yaml:"name"`
	FormationYear *int   `json:"formation_year" yaml:"formation_year"`
	Kind          string `json:"kind" yaml:"kind"` // "origin" or "derived"
}

// Edge is one recorded split or rename.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Dest   string `json:"dest" yaml:"dest"`
	Year   *int   `json:"year" yaml:"year"`
}

// FromGraph converts a lineage graph into its serialization form.
func FromGraph(g *lineage.Graph) Graph {
	out := Graph{
		Region: g.Region(),
		Nodes:  make([]Node, 0, g.NodeCount()),
		Edges:  make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{
			Name:          n.Name,
			FormationYear: n.FormationYear,
			Kind:          n.Kind.String(),
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{Source: e.Source, Dest: e.Dest, Year: e.Year})
	}
	return out
}

// =============================================================================
// Tree
// =============================================================================

// TreeNode is the serialization format for a lineage tree.
type TreeNode struct {
	Name     string      `json:"name" yaml:"name"`
	Label    string      `json:"label" yaml:"label"`
	Cycle    bool        `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	Virtual  bool        `json:"virtual,omitempty" yaml:"virtual,omitempty"`
	Children []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// FromTree converts a lineage tree. A nil tree yields nil.
func FromTree(t *lineage.Tree) *TreeNode {
	if t == nil {
		return nil
	}
	n := &TreeNode{
		Name:    t.Name,
		Label:   t.Label,
		Cycle:   t.CyclePlaceholder,
		Virtual: t.Virtual,
	}
	if len(t.Children) > 0 {
		n.Children = make([]*TreeNode, len(t.Children))
		for i, c := range t.Children {
			n.Children[i] = FromTree(c)
		}
	}
	return n
}

// =============================================================================
// Region
// =============================================================================

// Conflict is a year conflict in serialization form.
type Conflict struct {
	District string `json:"district" yaml:"district"`
	Kept     *int   `json:"kept" yaml:"kept"`
	Ignored  *int   `json:"ignored" yaml:"ignored"`
}

// Region bundles every computed view of one region.
type Region struct {
	Region       string          `json:"region" yaml:"region"`
	Roots        []string        `json:"roots" yaml:"roots"`
	FallbackRoot bool            `json:"fallback_root" yaml:"fallback_root"`
	Graph        Graph           `json:"graph" yaml:"graph"`
	Tree         *TreeNode       `json:"tree" yaml:"tree"`
	Layout       []lineage.Point `json:"layout" yaml:"layout"`
	Conflicts    []Conflict      `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// NewRegion assembles the full view of a region from its computed parts.
func NewRegion(g *lineage.Graph, roots []string, fallback bool, tree *lineage.Tree, points []lineage.Point) Region {
	r := Region{
		Region:       g.Region(),
		Roots:        roots,
		FallbackRoot: fallback,
		Graph:        FromGraph(g),
		Tree:         FromTree(tree),
		Layout:       points,
	}
	for _, c := range g.YearConflicts() {
		r.Conflicts = append(r.Conflicts, Conflict{District: c.Name, Kept: c.Kept, Ignored: c.Ignored})
	}
	return r
}
