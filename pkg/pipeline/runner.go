package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/view"
)

// Runner executes the pipeline.
//
// The Runner is stateless except for the logger: it doesn't store results.
// Multiple goroutines can safely use the same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Run computes every selected region of records.
//
// Regions run concurrently, at most opts.Workers at a time. A rendering
// failure in one region is recorded on its RegionResult and does not stop
// the others. Run returns an error only for invalid options, an unknown
// region in opts.Regions, or cancellation of ctx, which is checked before
// each region starts.
func (r *Runner) Run(ctx context.Context, records []lineage.EdgeRecord, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	partition := lineage.Partition(records)
	all := lineage.Regions(records)
	names, err := selectRegions(all, opts.Regions)
	if err != nil {
		return nil, err
	}
	stems := view.UniqueStems(all)

	result := &Result{
		RunID:   uuid.NewString(),
		Regions: make([]RegionResult, len(names)),
	}
	logger := opts.Logger.With("run", result.RunID[:8])
	logger.Debug("starting run", "regions", len(names), "records", len(records), "workers", opts.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rr := r.processRegion(gctx, logger, name, partition[name], opts)
			rr.Stem = stems[name]
			result.Regions[i] = rr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, rr := range result.Regions {
		if rr.Stem != view.FileStem(rr.Name) {
			logger.Warn("region file name collides with another region; adding suffix",
				"region", rr.Name, "stem", rr.Stem)
		}
		result.Stats.Regions++
		result.Stats.Nodes += rr.Graph.NodeCount()
		result.Stats.Edges += rr.Graph.EdgeCount()
		result.Stats.Conflicts += len(rr.Graph.YearConflicts())
		if rr.Fallback {
			result.Stats.Rootless++
		}
		if rr.Err != nil {
			result.Stats.Failed++
		}
	}
	result.Stats.Duration = time.Since(start)

	logger.Info("processed regions",
		"regions", result.Stats.Regions,
		"districts", result.Stats.Nodes,
		"events", result.Stats.Edges,
		"failed", result.Stats.Failed,
		"duration", result.Stats.Duration.Round(time.Millisecond))
	return result, nil
}

// selectRegions returns requested in sorted order, or all when requested
// is empty. Requested names missing from the data are an error.
func selectRegions(all, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return all, nil
	}
	var missing []string
	selected := make([]string, 0, len(requested))
	for _, name := range requested {
		if _, found := slices.BinarySearch(all, name); !found {
			missing = append(missing, name)
			continue
		}
		if !slices.Contains(selected, name) {
			selected = append(selected, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeRegionNotFound, "unknown region(s): %v", missing)
	}
	slices.Sort(selected)
	return selected, nil
}

// ComputeRegion runs the four lineage stages for one region. It never fails.
func ComputeRegion(name string, records []lineage.EdgeRecord) RegionResult {
	g := lineage.Build(records, name)
	roots, fallback := lineage.Roots(g)
	tree := lineage.BuildTree(g, roots, name)
	points := lineage.Layout(g)
	return RegionResult{
		Name:     name,
		Stem:     view.FileStem(name),
		Graph:    g,
		Roots:    roots,
		Fallback: fallback,
		Tree:     tree,
		Layout:   points,
		View:     view.NewRegion(g, roots, fallback, tree, points),
	}
}

func (r *Runner) processRegion(ctx context.Context, logger *log.Logger, name string, records []lineage.EdgeRecord, opts Options) RegionResult {
	hooks := observability.Pipeline()
	hooks.OnRegionStart(ctx, name, len(records))
	start := time.Now()

	rr := ComputeRegion(name, records)

	if rr.Fallback {
		logger.Warn("region has no origin district; using fallback root",
			"region", name, "root", rr.Roots[0])
		hooks.OnRootlessRegion(ctx, name, rr.Roots[0])
	}
	for _, c := range rr.Graph.YearConflicts() {
		logger.Warn("conflicting formation year; keeping first",
			"region", name,
			"district", c.Name,
			"kept", view.YearLabel(c.Kept),
			"ignored", view.YearLabel(c.Ignored))
		hooks.OnYearConflict(ctx, name, c.Name)
	}
	if n := len(rr.Tree.Placeholders()); n > 0 {
		logger.Debug("cut cycles in lineage tree", "region", name, "placeholders", n)
	}

	if !opts.SkipRender {
		rr.Artifacts, rr.Err = Render(ctx, &rr, opts)
		if rr.Err != nil {
			rr.Err = fmt.Errorf("region %s: %w", name, rr.Err)
			logger.Error("render failed", "region", name, "err", rr.Err)
		}
	}

	rr.Duration = time.Since(start)
	hooks.OnRegionComplete(ctx, name, rr.Graph.NodeCount(), rr.Graph.EdgeCount(), rr.Duration, rr.Err)
	logger.Debug("processed region",
		"region", name,
		"districts", rr.Graph.NodeCount(),
		"events", rr.Graph.EdgeCount(),
		"roots", len(rr.Roots),
		"duration", rr.Duration)
	return rr
}
