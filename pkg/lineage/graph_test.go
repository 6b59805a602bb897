package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yr(n int) *int { return &n }

func rec(src, dst string, year any) EdgeRecord {
	return NewEdgeRecord(src, dst, "X", year)
}

func TestBuild_Basic(t *testing.T) {
	g := Build([]EdgeRecord{
		rec("A", "B", 1960),
		rec("A", "C", 1960),
		rec("C", "D", 1975),
	}, "X")

	require.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, []string{"A", "B", "C", "D"}, g.Names())

	a, ok := g.Node("A")
	require.True(t, ok)
	assert.Equal(t, KindOrigin, a.Kind)
	assert.Nil(t, a.FormationYear)

	for name, want := range map[string]int{"B": 1960, "C": 1960, "D": 1975} {
		n, ok := g.Node(name)
		require.True(t, ok, name)
		assert.Equal(t, KindDerived, n.Kind, name)
		require.NotNil(t, n.FormationYear, name)
		assert.Equal(t, want, *n.FormationYear, name)
	}

	assert.Equal(t, []string{"B", "C"}, g.Children("A"))
	assert.Equal(t, []string{"A"}, g.Parents("C"))
}

func TestBuild_NodeSetMatchesEndpoints(t *testing.T) {
	edges := []EdgeRecord{
		rec("P", "Q", nil),
		rec("Q", "R", "1990"),
		rec("S", "Q", 1991),
		rec("R", "P", nil),
	}
	g := Build(edges, "X")

	want := map[string]bool{}
	for _, e := range edges {
		want[e.Source] = true
		want[e.Dest] = true
	}
	got := map[string]bool{}
	for _, n := range g.Nodes() {
		got[n.Name] = true
	}
	assert.Equal(t, want, got)
}

func TestBuild_KindMatchesReverseAdjacency(t *testing.T) {
	g := Build([]EdgeRecord{
		rec("A", "B", 1960),
		rec("B", "C", 1961),
		rec("C", "B", 1962),
		rec("D", "E", nil),
	}, "X")

	for _, n := range g.Nodes() {
		if n.Kind == KindOrigin {
			assert.Empty(t, g.Parents(n.Name), n.Name)
		} else {
			assert.NotEmpty(t, g.Parents(n.Name), n.Name)
		}
	}
}

func TestBuild_MultiParentMerge(t *testing.T) {
	g := Build([]EdgeRecord{
		rec("A", "C", 1970),
		rec("B", "C", 1970),
	}, "X")

	assert.Equal(t, []string{"A", "B"}, g.Parents("C"))
	assert.Equal(t, 2, g.InDegree("C"))
	assert.Empty(t, g.YearConflicts())
}

func TestBuild_FirstYearWins(t *testing.T) {
	tests := []struct {
		name      string
		edges     []EdgeRecord
		want      *int
		conflicts int
	}{
		{
			name:      "first dated",
			edges:     []EdgeRecord{rec("A", "C", 1970), rec("B", "C", 1980)},
			want:      yr(1970),
			conflicts: 1,
		},
		{
			name:      "first undated keeps nil",
			edges:     []EdgeRecord{rec("A", "C", nil), rec("B", "C", 1980)},
			want:      nil,
			conflicts: 1,
		},
		{
			name:      "first unparsable keeps nil",
			edges:     []EdgeRecord{rec("A", "C", "circa 1960"), rec("B", "C", 1961)},
			want:      nil,
			conflicts: 1,
		},
		{
			name:      "later undated is not a conflict",
			edges:     []EdgeRecord{rec("A", "C", 1970), rec("B", "C", nil)},
			want:      yr(1970),
			conflicts: 0,
		},
		{
			name:      "agreeing years",
			edges:     []EdgeRecord{rec("A", "C", 1970), rec("B", "C", "1970.0")},
			want:      yr(1970),
			conflicts: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.edges, "X")
			c, ok := g.Node("C")
			require.True(t, ok)
			assert.Equal(t, tt.want, c.FormationYear)
			assert.Len(t, g.YearConflicts(), tt.conflicts)
		})
	}
}

func TestBuild_YearConflictDetails(t *testing.T) {
	g := Build([]EdgeRecord{rec("A", "C", 1970), rec("B", "C", 1980)}, "X")
	conflicts := g.YearConflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, "C", conflicts[0].Name)
	assert.Equal(t, yr(1970), conflicts[0].Kept)
	assert.Equal(t, yr(1980), conflicts[0].Ignored)
}

func TestBuild_FiltersRegion(t *testing.T) {
	edges := []EdgeRecord{
		NewEdgeRecord("A", "B", "X", 1960),
		NewEdgeRecord("K", "L", "Y", 1961),
		NewEdgeRecord("B", "C", "X", 1962),
	}
	g := Build(edges, "X")
	assert.Equal(t, "X", g.Region())
	assert.Equal(t, []string{"A", "B", "C"}, g.Names())
	assert.Equal(t, 2, g.EdgeCount())
}

func TestBuild_EmptyRegion(t *testing.T) {
	g := Build([]EdgeRecord{NewEdgeRecord("A", "B", "Y", 1960)}, "X")
	assert.Zero(t, g.NodeCount())
	assert.Zero(t, g.EdgeCount())
	assert.Empty(t, g.Nodes())

	g = Build(nil, "X")
	assert.Zero(t, g.NodeCount())
}

func TestBuild_ParallelEdgesPreserved(t *testing.T) {
	g := Build([]EdgeRecord{
		rec("A", "B", 1960),
		rec("A", "B", 1961),
	}, "X")

	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []string{"B", "B"}, g.Children("A"))
	assert.Equal(t, []string{"A", "A"}, g.Parents("B"))

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, yr(1960), edges[0].Year)
	assert.Equal(t, yr(1961), edges[1].Year)
}

func TestBuild_DoesNotAliasInputYear(t *testing.T) {
	y := 1960
	edges := []EdgeRecord{{Source: "A", Dest: "B", Year: &y, Region: "X"}}
	g := Build(edges, "X")
	y = 2000

	b, _ := g.Node("B")
	assert.Equal(t, 1960, *b.FormationYear)
}

func TestGraph_EdgesIsCopy(t *testing.T) {
	g := Build([]EdgeRecord{rec("A", "B", 1960)}, "X")
	edges := g.Edges()
	edges[0].Source = "Z"
	assert.Equal(t, "A", g.Edges()[0].Source)
}

func TestGraph_KnownYears(t *testing.T) {
	g := Build([]EdgeRecord{
		rec("A", "B", 1975),
		rec("A", "C", 1960),
		rec("A", "D", nil),
	}, "X")
	assert.Equal(t, []int{1960, 1975}, g.KnownYears())
}

func TestNodeKind_String(t *testing.T) {
	assert.Equal(t, "origin", KindOrigin.String())
	assert.Equal(t, "derived", KindDerived.String())
}
