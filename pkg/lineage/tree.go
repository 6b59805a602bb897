package lineage

// CycleSuffix is appended to the label of a cycle placeholder.
const CycleSuffix = " (cycle)"

// Tree is one node of a lineage tree.
//
// Name is the district name (or the region label for a virtual root). A
// cycle placeholder carries the name of the district it closes on and has
// no children.
type Tree struct {
	Name             string
	Label            string
	Children         []*Tree
	CyclePlaceholder bool
	Virtual          bool
}

// path is an immutable singly linked list of the ancestors on the current
// descent. Extending it never affects sibling branches.
type path struct {
	name   string
	parent *path
}

func (p *path) contains(name string) bool {
	for ; p != nil; p = p.parent {
		if p.name == name {
			return true
		}
	}
	return false
}

func (p *path) push(name string) *path { return &path{name: name, parent: p} }

// BuildTree converts g into a rooted tree starting from roots.
//
// Each descent carries only the names strictly on its own path, so a
// district reachable through two parents is expanded under both (merges
// show up as duplicated subtrees). Revisiting a name already on the path
// emits a placeholder labelled with [CycleSuffix] and stops that branch,
// which bounds recursion depth by the number of distinct names.
//
// With several roots the per-root trees are attached to a virtual root
// labelled regionLabel. A single root is returned directly. No roots
// returns nil.
func BuildTree(g *Graph, roots []string, regionLabel string) *Tree {
	switch len(roots) {
	case 0:
		return nil
	case 1:
		return expand(g, roots[0], nil)
	}
	top := &Tree{
		Name:     regionLabel,
		Label:    regionLabel,
		Virtual:  true,
		Children: make([]*Tree, 0, len(roots)),
	}
	for _, r := range roots {
		top.Children = append(top.Children, expand(g, r, nil))
	}
	return top
}

func expand(g *Graph, name string, ancestors *path) *Tree {
	if ancestors.contains(name) {
		return &Tree{Name: name, Label: name + CycleSuffix, CyclePlaceholder: true}
	}
	t := &Tree{Name: name, Label: name}
	children := g.Children(name)
	if len(children) == 0 {
		return t
	}
	here := ancestors.push(name)
	t.Children = make([]*Tree, 0, len(children))
	for _, c := range children {
		t.Children = append(t.Children, expand(g, c, here))
	}
	return t
}

// Walk calls fn for every node in depth-first pre-order with its depth
// (the receiver is depth 0). Returning false skips the node's children.
func (t *Tree) Walk(fn func(n *Tree, depth int) bool) {
	if t == nil {
		return
	}
	t.walk(fn, 0)
}

func (t *Tree) walk(fn func(*Tree, int) bool, depth int) {
	if !fn(t, depth) {
		return
	}
	for _, c := range t.Children {
		c.walk(fn, depth+1)
	}
}

// Size returns the number of nodes in the tree, placeholders included.
func (t *Tree) Size() int {
	n := 0
	t.Walk(func(*Tree, int) bool { n++; return true })
	return n
}

// Depth returns the number of levels in the tree; 0 for a nil tree.
func (t *Tree) Depth() int {
	deepest := 0
	t.Walk(func(_ *Tree, d int) bool {
		deepest = max(deepest, d+1)
		return true
	})
	return deepest
}

// Placeholders returns the cycle placeholders in pre-order.
func (t *Tree) Placeholders() []*Tree {
	var out []*Tree
	t.Walk(func(n *Tree, _ int) bool {
		if n.CyclePlaceholder {
			out = append(out, n)
		}
		return true
	})
	return out
}
