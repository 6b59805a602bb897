package cli

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
	"github.com/matzehuels/lineage/pkg/server"
)

// serveCommand computes every region once and serves the results.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var detailed bool

	cmd := &cobra.Command{
		Use:               "serve [edges.csv|edges.json]",
		Short:             "Serve computed regions over read-only HTTP",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeEdgesFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), args[0], addr, detailed)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show formation years inside /dot graph nodes")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, addr string, detailed bool) error {
	logger := loggerFromContext(ctx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheusHooks(registry)
	observability.SetPipelineHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	records, err := c.loadRecords(ctx, input)
	if err != nil {
		return err
	}
	result, err := c.computeRegions(ctx, records, nil)
	if err != nil {
		return err
	}

	srv := server.New(result, server.Options{
		Logger:   logger,
		Gatherer: registry,
		Nodelink: nodelink.Options{Detailed: detailed},
	})

	printSuccess("Serving %d regions", len(result.Regions))
	printDetail("run %s", result.RunID)
	printInfo("%s", StyleLink.Render(baseURL(addr)+"/regions"))

	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// baseURL turns a listen address into a clickable URL.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
