package lineage

import "slices"

// Roots returns the entry points of g for tree construction, sorted by name.
//
// A root is any district without a recorded parent. When g is non-empty but
// every district has a parent (only possible when the records form a pure
// cycle), Roots returns the lexicographically smallest name as a single
// synthetic root and reports fallback = true so callers can warn about the
// malformed region. An empty graph yields no roots.
func Roots(g *Graph) (roots []string, fallback bool) {
	for name := range g.nodes {
		if len(g.incoming[name]) == 0 {
			roots = append(roots, name)
		}
	}
	if len(roots) > 0 {
		slices.Sort(roots)
		return roots, false
	}
	if len(g.nodes) == 0 {
		return []string{}, false
	}
	return g.Names()[:1], true
}
