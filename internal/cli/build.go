package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
	"github.com/matzehuels/lineage/pkg/view"
)

// Report files written next to the region artifacts.
const (
	summaryFile  = "summary.md"
	manifestFile = "manifest.json"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output      string   // output directory
	formats     []string // artifact formats, see pipeline.ValidFormats
	regions     []string // restrict to these regions
	workers     int      // concurrent regions
	metricsFile string   // Prometheus text file, empty to skip
	detailed    bool     // year labels in nodelink nodes
	rankDir     string   // Graphviz rankdir
}

// buildCommand creates the build command that writes all per-region outputs.
func (c *CLI) buildCommand() *cobra.Command {
	var formatsStr string
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [edges.csv|edges.json]",
		Short: "Compute every region and write graphs, trees, layouts and a summary",
		Long: `Build reads district split events and writes, for every region:

  <region>.region.json    full view (graph, roots, tree, layout)
  <region>.region.yaml    same view as YAML
  <region>.graph.dot      node-link graph as Graphviz source
  <region>.graph.svg      node-link graph rendered by Graphviz
  <region>.timeline.svg   temporal layout

plus summary.md and manifest.json for the whole run.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeEdgesFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("output") {
				opts.output = c.Config.OutputDir
			}
			if opts.formats = parseFormats(formatsStr); len(opts.formats) == 0 {
				opts.formats = c.Config.Formats
			}
			if !flags.Changed("workers") {
				opts.workers = c.Config.Workers
			}
			if err := errors.ValidateOutputDir(opts.output); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), cmd.ErrOrStderr(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default from config, else .)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "artifact format(s): json, yaml, dot, svg, timeline (comma-separated)")
	cmd.Flags().StringSliceVarP(&opts.regions, "region", "r", nil, "only build these regions (repeatable)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "regions computed concurrently (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics for the run to this file")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show formation years inside graph nodes")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "TB", "Graphviz rank direction: TB, LR, BT, RL")

	_ = cmd.RegisterFlagCompletionFunc("region", func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return c.completeRegions(args, toComplete), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("rankdir", cobra.FixedCompletions(nodelink.RankDirs, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(pipeline.ValidFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, stderr io.Writer, input string, opts buildOpts) error {
	logger := loggerFromContext(ctx)

	records, err := c.loadRecords(ctx, input)
	if err != nil {
		return err
	}

	var registry *prometheus.Registry
	if opts.metricsFile != "" {
		registry = prometheus.NewRegistry()
		hooks := observability.NewPrometheusHooks(registry)
		observability.SetPipelineHooks(hooks)
		defer observability.Reset()
	}

	// Region warnings are logged while the spinner runs.
	spinner := newSpinnerWithContext(ctx, stderr, "Computing regions...")
	runLogger := logger.With()
	runLogger.SetOutput(spinner.Writer(c.logOut))

	spinner.Start()
	result, err := pipeline.NewRunner(runLogger).Run(ctx, records, pipeline.Options{
		Regions:  opts.regions,
		Workers:  opts.workers,
		Formats:  opts.formats,
		Nodelink: nodelink.Options{Detailed: opts.detailed, RankDir: opts.rankDir},
		Timeline: c.Config.Timeline,
		Logger:   runLogger,
	})
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Computed %d regions", len(result.Regions)))
	printStats(result.Stats.Regions, result.Stats.Nodes, result.Stats.Edges)

	summary, failures := writeOutputs(ctx, opts.output, input, result, opts.formats)

	if registry != nil {
		if err := prometheus.WriteToTextfile(opts.metricsFile, registry); err != nil {
			logger.Error("write metrics", "path", opts.metricsFile, "err", err)
		} else {
			printFile(opts.metricsFile)
		}
	}

	if result.Stats.Rootless > 0 {
		printWarning("%d region(s) have no origin district; a fallback root was used", result.Stats.Rootless)
	}
	if result.Stats.Conflicts > 0 {
		printWarning("%d conflicting formation year(s); the first value was kept", result.Stats.Conflicts)
	}
	printNewline()
	printKeyValue("Run", summary.RunID)
	printKeyValue("Output", opts.output)

	if len(failures) > 0 {
		for _, err := range failures {
			printError("%v", err)
		}
		return errors.Join(errors.ErrCodeInternal, failures, "%d of %d region(s) failed", len(failures), len(result.Regions))
	}
	printSuccess("Wrote %d regions", len(result.Regions))
	printNextStep("Browse the results", fmt.Sprintf("%s serve %s", appName, input))
	return nil
}

// writeOutputs writes every region's artifacts plus the summary and
// manifest. A region whose render or write failed is reported in the
// returned slice; the others are still written.
func writeOutputs(ctx context.Context, dir, source string, result *pipeline.Result, formats []string) (view.Summary, []error) {
	logger := loggerFromContext(ctx)
	summary := view.Summary{
		RunID:     result.RunID,
		Source:    filepath.Base(source),
		Generated: time.Now().UTC(),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return summary, []error{fmt.Errorf("create output directory: %w", err)}
	}

	var failures []error
	for _, rr := range result.Regions {
		row := view.NewSummaryRow(rr.View)
		err := rr.Err
		if err == nil {
			row.Files, err = writeRegion(dir, &rr, formats)
		}
		if err != nil {
			logger.Error("region failed", "region", rr.Name, "err", err)
			row.Error = err.Error()
			failures = append(failures, err)
		} else {
			logger.Debug("wrote region", "region", rr.Name, "files", len(row.Files))
		}
		summary.Rows = append(summary.Rows, row)
	}

	if err := writeSummary(filepath.Join(dir, summaryFile), summary); err != nil {
		failures = append(failures, err)
	} else {
		printFile(filepath.Join(dir, summaryFile))
	}
	if err := view.WriteFile(summary, filepath.Join(dir, manifestFile)); err != nil {
		failures = append(failures, err)
	} else {
		printFile(filepath.Join(dir, manifestFile))
	}
	return summary, failures
}

func writeRegion(dir string, rr *pipeline.RegionResult, formats []string) ([]string, error) {
	files := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := rr.Artifacts[format]
		if !ok {
			continue
		}
		name := rr.ArtifactName(format)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return files, fmt.Errorf("region %s: write %s: %w", rr.Name, name, err)
		}
		files = append(files, name)
	}
	return files, nil
}

func writeSummary(path string, s view.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := s.WriteMarkdown(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
