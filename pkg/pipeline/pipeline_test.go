package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
)

func records() []lineage.EdgeRecord {
	return []lineage.EdgeRecord{
		lineage.NewEdgeRecord("A", "B", "Karnataka", 1960),
		lineage.NewEdgeRecord("A", "C", "Karnataka", 1960),
		lineage.NewEdgeRecord("C", "D", "Karnataka", 1975),
		lineage.NewEdgeRecord("P", "Q", "Goa", nil),
		lineage.NewEdgeRecord("Q", "P", "Goa", nil),
		lineage.NewEdgeRecord("M", "O", "Tamil Nadu", 1970),
		lineage.NewEdgeRecord("N", "O", "Tamil Nadu", 1980),
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	require.NoError(t, o.ValidateAndSetDefaults())
	assert.Equal(t, runtime.GOMAXPROCS(0), o.Workers)
	assert.Equal(t, DefaultFormats, o.Formats)
	assert.NotNil(t, o.Logger)
	assert.Equal(t, "TB", o.Nodelink.RankDir)

	lower := Options{Nodelink: nodelink.Options{RankDir: " lr "}}
	require.NoError(t, lower.ValidateAndSetDefaults())
	assert.Equal(t, "LR", lower.Nodelink.RankDir)

	// idempotent
	require.NoError(t, o.ValidateAndSetDefaults())
	assert.Equal(t, DefaultFormats, o.Formats)

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative workers", Options{Workers: -1}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Formats: []string{"png"}}, errors.ErrCodeInvalidFormat},
		{"blank region", Options{Regions: []string{" "}}, errors.ErrCodeInvalidInput},
		{"unknown rankdir", Options{Nodelink: nodelink.Options{RankDir: "UP"}}, errors.ErrCodeInvalidInput},
		{"rankdir injection", Options{Nodelink: nodelink.Options{RankDir: `TB; "x" -> "y"`}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		format, want string
	}{
		{FormatJSON, "Tamil_Nadu.region.json"},
		{FormatYAML, "Tamil_Nadu.region.yaml"},
		{FormatDOT, "Tamil_Nadu.graph.dot"},
		{FormatSVG, "Tamil_Nadu.graph.svg"},
		{FormatTimeline, "Tamil_Nadu.timeline.svg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ArtifactName("Tamil_Nadu", tt.format))
	}
}

func TestRun_CollidingStems(t *testing.T) {
	recs := []lineage.EdgeRecord{
		lineage.NewEdgeRecord("A", "B", "Tamil Nadu", 1960),
		lineage.NewEdgeRecord("C", "D", "Tamil_Nadu", 1961),
		lineage.NewEdgeRecord("E", "F", "Dadra/Nagar", 1962),
		lineage.NewEdgeRecord("G", "H", "DadraNagar", 1963),
		lineage.NewEdgeRecord("I", "J", "Goa", 1964),
	}
	runner := NewRunner(log.New(&bytes.Buffer{}))
	result, err := runner.Run(context.Background(), recs, Options{SkipRender: true})
	require.NoError(t, err)

	names := make(map[string]string)
	for _, rr := range result.Regions {
		name := rr.ArtifactName(FormatJSON)
		if other, dup := names[name]; dup {
			t.Errorf("%q and %q both write %s", rr.Name, other, name)
		}
		names[name] = rr.Name
	}
	goa, _ := result.Region("Goa")
	assert.Equal(t, "Goa.region.json", goa.ArtifactName(FormatJSON))

	// Selecting one region keeps the stem it has in a full run.
	full, _ := result.Region("Tamil Nadu")
	only, err := runner.Run(context.Background(), recs, Options{Regions: []string{"Tamil Nadu"}, SkipRender: true})
	require.NoError(t, err)
	assert.Equal(t, full.Stem, only.Regions[0].Stem)
	assert.NotEqual(t, "Tamil_Nadu", full.Stem)
}

func TestComputeRegion(t *testing.T) {
	rr := ComputeRegion("Karnataka", records())

	assert.Equal(t, []string{"A"}, rr.Roots)
	assert.False(t, rr.Fallback)
	assert.Equal(t, 4, rr.Graph.NodeCount())
	require.NotNil(t, rr.Tree)
	assert.Equal(t, "A", rr.Tree.Name)
	assert.Len(t, rr.Layout, 4)
	assert.Equal(t, "Karnataka", rr.View.Region)
	assert.Equal(t, rr.Layout, rr.View.Layout)
}

func TestRun(t *testing.T) {
	runner := NewRunner(log.New(&bytes.Buffer{}))
	result, err := runner.Run(context.Background(), records(), Options{
		Workers: 2,
		Formats: []string{FormatJSON, FormatDOT, FormatTimeline},
	})
	require.NoError(t, err)

	assert.Len(t, result.RunID, 36)
	assert.Equal(t, []string{"Goa", "Karnataka", "Tamil Nadu"}, result.Names())

	goa, ok := result.Region("Goa")
	require.True(t, ok)
	assert.True(t, goa.Fallback)
	assert.Equal(t, []string{"P"}, goa.Roots)
	assert.Len(t, goa.Tree.Placeholders(), 1)

	tn, ok := result.Region("Tamil Nadu")
	require.True(t, ok)
	assert.True(t, tn.Tree.Virtual)
	assert.Len(t, tn.Graph.YearConflicts(), 1)

	for _, rr := range result.Regions {
		assert.NoError(t, rr.Err)
		assert.Len(t, rr.Artifacts, 3, rr.Name)
		assert.Contains(t, string(rr.Artifacts[FormatDOT]), "digraph G {")
		assert.Contains(t, string(rr.Artifacts[FormatTimeline]), "<svg ")

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(rr.Artifacts[FormatJSON], &decoded))
		assert.Equal(t, rr.Name, decoded["region"])
	}

	assert.Equal(t, Stats{
		Regions:   3,
		Nodes:     4 + 2 + 3,
		Edges:     3 + 2 + 2,
		Rootless:  1,
		Conflicts: 1,
		Duration:  result.Stats.Duration,
	}, result.Stats)

	_, ok = result.Region("Kerala")
	assert.False(t, ok)
}

func TestRun_SelectedRegions(t *testing.T) {
	runner := NewRunner(log.New(&bytes.Buffer{}))
	result, err := runner.Run(context.Background(), records(), Options{
		Regions:    []string{"Tamil Nadu", "Goa", "Goa"},
		SkipRender: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Goa", "Tamil Nadu"}, result.Names())
	assert.Nil(t, result.Regions[0].Artifacts)

	_, err = runner.Run(context.Background(), records(), Options{Regions: []string{"Kerala"}})
	assert.True(t, errors.Is(err, errors.ErrCodeRegionNotFound), "got %v", err)
}

func TestRun_Deterministic(t *testing.T) {
	runner := NewRunner(log.New(&bytes.Buffer{}))
	opts := Options{Formats: []string{FormatJSON, FormatYAML, FormatDOT, FormatTimeline}}

	first, err := runner.Run(context.Background(), records(), Options{Workers: 1, Formats: opts.Formats})
	require.NoError(t, err)
	for _, workers := range []int{2, 8} {
		again, err := runner.Run(context.Background(), records(), Options{Workers: workers, Formats: opts.Formats})
		require.NoError(t, err)
		require.Equal(t, first.Names(), again.Names())
		for i := range first.Regions {
			assert.Equal(t, first.Regions[i].Artifacts, again.Regions[i].Artifacts, first.Regions[i].Name)
		}
	}
}

func TestRun_Empty(t *testing.T) {
	result, err := NewRunner(log.New(&bytes.Buffer{})).Run(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Regions)
	assert.Zero(t, result.Stats.Regions)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(log.New(&bytes.Buffer{})).Run(ctx, records(), Options{SkipRender: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_LogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	_, err := NewRunner(logger).Run(context.Background(), records(), Options{SkipRender: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "region has no origin district")
	assert.Contains(t, out, "region=Goa")
	assert.Contains(t, out, "conflicting formation year")
	assert.Contains(t, out, "district=O")
	assert.Contains(t, out, "cut cycles in lineage tree")
	assert.Contains(t, out, "processed regions")
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu        sync.Mutex
	started   []string
	completed []string
	rootless  []string
	conflicts []string
}

func (h *recordingHooks) OnRegionStart(_ context.Context, region string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, region)
}

func (h *recordingHooks) OnRegionComplete(_ context.Context, region string, _, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = append(h.completed, region)
}

func (h *recordingHooks) OnRootlessRegion(_ context.Context, region, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rootless = append(h.rootless, region)
}

func (h *recordingHooks) OnYearConflict(_ context.Context, _, district string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conflicts = append(h.conflicts, district)
}

func TestRun_Hooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	_, err := NewRunner(log.New(&bytes.Buffer{})).Run(context.Background(), records(), Options{SkipRender: true})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Goa", "Karnataka", "Tamil Nadu"}, hooks.started)
	assert.ElementsMatch(t, hooks.started, hooks.completed)
	assert.Equal(t, []string{"Goa"}, hooks.rootless)
	assert.Equal(t, []string{"O"}, hooks.conflicts)
}

func TestResult_Errors(t *testing.T) {
	r := &Result{Regions: []RegionResult{
		{Name: "A"},
		{Name: "B", Err: errors.New(errors.ErrCodeInternal, "boom")},
	}}
	errs := r.Errors()
	require.Len(t, errs, 1)
	assert.True(t, strings.Contains(errs[0].Error(), "boom"))
}
