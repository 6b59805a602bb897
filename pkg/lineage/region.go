package lineage

import (
	"maps"
	"slices"
)

// Regions returns the distinct non-empty region names in edges, sorted.
func Regions(edges []EdgeRecord) []string {
	seen := make(map[string]struct{})
	for _, e := range edges {
		if e.Region != "" {
			seen[e.Region] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Partition splits edges by region, preserving input order within each
// region. Records with an empty region are dropped.
func Partition(edges []EdgeRecord) map[string][]EdgeRecord {
	out := make(map[string][]EdgeRecord)
	for _, e := range edges {
		if e.Region == "" {
			continue
		}
		out[e.Region] = append(out[e.Region], e)
	}
	return out
}
