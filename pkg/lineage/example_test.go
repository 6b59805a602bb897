package lineage_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/lineage/pkg/lineage"
)

func Example() {
	edges := []lineage.EdgeRecord{
		lineage.NewEdgeRecord("A", "B", "Karnataka", 1960),
		lineage.NewEdgeRecord("A", "C", "Karnataka", "1960"),
		lineage.NewEdgeRecord("C", "D", "Karnataka", 1975.0),
	}

	g := lineage.Build(edges, "Karnataka")
	roots, _ := lineage.Roots(g)
	tree := lineage.BuildTree(g, roots, "Karnataka")

	tree.Walk(func(n *lineage.Tree, depth int) bool {
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), n.Label)
		return true
	})
	for _, p := range lineage.Layout(g) {
		fmt.Printf("%s x=%d y=%.1f\n", p.Node, p.X, p.Y)
	}
	// Output:
	// A
	//   B
	//   C
	//     D
	// A x=1955 y=0.0
	// B x=1960 y=-0.5
	// C x=1960 y=0.5
	// D x=1975 y=0.0
}

func ExampleBuildTree_cycle() {
	g := lineage.Build([]lineage.EdgeRecord{
		lineage.NewEdgeRecord("A", "B", "X", nil),
		lineage.NewEdgeRecord("B", "A", "X", nil),
	}, "X")

	roots, fallback := lineage.Roots(g)
	fmt.Println(roots, fallback)

	lineage.BuildTree(g, roots, "X").Walk(func(n *lineage.Tree, depth int) bool {
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), n.Label)
		return true
	})
	// Output:
	// [A] true
	// A
	//   B
	//     A (cycle)
}
