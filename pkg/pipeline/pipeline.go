// Package pipeline runs the lineage computation for every region of a
// dataset.
//
// This package is shared by the CLI build command and the HTTP server so
// both produce identical results. For each region it builds the graph,
// resolves roots, expands the cycle-safe tree, computes the temporal layout
// and renders the requested artifacts.
//
// # Architecture
//
// Regions are independent: each one is computed from its own subset of the
// records with no shared mutable state. [Runner.Run] fans regions out over a
// bounded errgroup and collects results into a slice indexed by sorted region
// name, so the output order never depends on scheduling.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Run(ctx, records, pipeline.Options{
//	    Formats: []string{pipeline.FormatJSON, pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range result.Regions {
//	    fmt.Println(r.Name, len(r.Roots))
//	}
package pipeline

import (
	"io"
	"runtime"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
	"github.com/matzehuels/lineage/pkg/render/timeline"
	"github.com/matzehuels/lineage/pkg/view"
)

// =============================================================================
// Formats
// =============================================================================

// Artifact formats.
const (
	FormatJSON     = "json"     // full region view as JSON
	FormatYAML     = "yaml"     // full region view as YAML
	FormatDOT      = "dot"      // node-link graph as Graphviz source
	FormatSVG      = "svg"      // node-link graph rendered by Graphviz
	FormatTimeline = "timeline" // temporal layout as SVG
)

// ValidFormats lists the supported artifact formats in output order.
var ValidFormats = []string{FormatJSON, FormatYAML, FormatDOT, FormatSVG, FormatTimeline}

// DefaultFormats is used when Options.Formats is empty.
var DefaultFormats = []string{FormatJSON, FormatSVG, FormatTimeline}

// ArtifactName returns the file name for an artifact of the region with the
// given file stem, following the "<stem>.<kind>.<ext>" convention. See
// [RegionResult.Stem].
func ArtifactName(stem, format string) string {
	switch format {
	case FormatJSON:
		return stem + ".region.json"
	case FormatYAML:
		return stem + ".region.yaml"
	case FormatDOT:
		return stem + ".graph.dot"
	case FormatSVG:
		return stem + ".graph.svg"
	case FormatTimeline:
		return stem + ".timeline.svg"
	default:
		return stem + "." + format
	}
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Regions restricts the run to the named regions. Empty means all.
	Regions []string

	// Workers bounds concurrent regions. Zero means GOMAXPROCS.
	Workers int

	// Formats lists the artifacts to render per region. Empty means
	// DefaultFormats. Use SkipRender to compute views only.
	Formats []string

	// SkipRender computes graphs, trees and layouts without artifacts.
	SkipRender bool

	// Nodelink and Timeline configure the renderers.
	Nodelink nodelink.Options
	Timeline timeline.Options

	// Logger receives progress. Defaults to a discarding logger.
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be >= 0, got %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if err := errors.ValidateFormats(o.Formats, ValidFormats); err != nil {
		return err
	}
	for _, r := range o.Regions {
		if err := errors.ValidateRegionName(r); err != nil {
			return err
		}
	}
	o.Nodelink.RankDir = strings.ToUpper(strings.TrimSpace(o.Nodelink.RankDir))
	if o.Nodelink.RankDir == "" {
		o.Nodelink.RankDir = nodelink.RankDirs[0]
	}
	if !nodelink.ValidRankDir(o.Nodelink.RankDir) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid rankdir %q (valid: %s)",
			o.Nodelink.RankDir, strings.Join(nodelink.RankDirs, ", "))
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// RegionResult holds everything computed for one region.
type RegionResult struct {
	Name string

	// Stem is the file name stem for the region's artifacts. It is unique
	// among all regions of the dataset, even when two names sanitize to the
	// same [view.FileStem].
	Stem string

	Graph    *lineage.Graph
	Roots    []string
	Fallback bool
	Tree     *lineage.Tree
	Layout   []lineage.Point

	// View is the serializable form of the region, shared by the JSON and
	// YAML artifacts and the HTTP server.
	View view.Region

	// Artifacts maps format to rendered bytes.
	Artifacts map[string][]byte

	Duration time.Duration

	// Err is set when rendering failed. The computed graph, tree and layout
	// are still valid.
	Err error
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs, the manifest and the summary.
	RunID string

	// Regions are sorted by name.
	Regions []RegionResult

	Stats Stats
}

// Stats contains run totals.
type Stats struct {
	Regions   int
	Nodes     int
	Edges     int
	Rootless  int
	Conflicts int
	Failed    int
	Duration  time.Duration
}

// ArtifactName returns the file name of the region's artifact in format.
func (rr *RegionResult) ArtifactName(format string) string {
	return ArtifactName(rr.Stem, format)
}

// Region returns the named region's result.
func (r *Result) Region(name string) (*RegionResult, bool) {
	i := sort.Search(len(r.Regions), func(i int) bool { return r.Regions[i].Name >= name })
	if i < len(r.Regions) && r.Regions[i].Name == name {
		return &r.Regions[i], true
	}
	return nil, false
}

// Names returns the region names in sorted order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Regions))
	for i, rr := range r.Regions {
		names[i] = rr.Name
	}
	return names
}

// Errors returns the per-region failures in region order.
func (r *Result) Errors() []error {
	var errs []error
	for _, rr := range r.Regions {
		if rr.Err != nil {
			errs = append(errs, rr.Err)
		}
	}
	return errs
}
