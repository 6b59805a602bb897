package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/buildinfo"
	"github.com/matzehuels/lineage/pkg/config"
	"github.com/matzehuels/lineage/pkg/ingest"
	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lineage"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before each command runs.
	Config config.Config

	configPath string

	// logOut is where Logger writes; a running spinner wraps it.
	logOut io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		logOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Lineage traces how administrative districts split over time",
		Long: `Lineage reads district split events (source district, new district, formation
year, region) and produces, per region, the lineage graph, its root districts,
a cycle-safe lineage tree and a temporal layout.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			if cfg.Path != "" {
				c.Logger.Debug("loaded config", "path", cfg.Path)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lineage/lineage.toml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.regionsCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Input Helpers
// =============================================================================

// loadRecords reads an edges file using the configured column names.
func (c *CLI) loadRecords(ctx context.Context, path string) ([]lineage.EdgeRecord, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	records, stats, err := ingest.ReadFile(path, c.Config.Columns)
	if err != nil {
		return nil, err
	}
	if stats.Dropped() > 0 {
		logger.Warn("dropped rows",
			"self_references", stats.SelfReferences,
			"incomplete", stats.Incomplete)
	}
	if stats.UnknownYears > 0 {
		logger.Debug("rows without formation year", "count", stats.UnknownYears)
	}
	prog.done(fmt.Sprintf("Read %d events from %s", stats.Kept, path))
	return records, nil
}

// computeRegions runs the pipeline without rendering.
func (c *CLI) computeRegions(ctx context.Context, records []lineage.EdgeRecord, regions []string) (*pipeline.Result, error) {
	return pipeline.NewRunner(loggerFromContext(ctx)).Run(ctx, records, pipeline.Options{
		Regions:    regions,
		Workers:    c.Config.Workers,
		SkipRender: true,
	})
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
// Empty input yields nil so the configured formats apply.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
