// Package pkg provides the libraries behind the lineage tool, which traces how
// administrative districts split over time.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. [lineage] - Domain logic (graph, roots, cycle-safe tree, temporal layout)
//  2. [ingest], [config] - Input (edge files, lineage.toml)
//  3. [pipeline] - Orchestration (per-region build → render)
//  4. [view], [render], [server] - Output (JSON/YAML views, Graphviz and
//     timeline SVG, read-only HTTP)
//
// Cross-cutting packages: [errors] (coded errors), [observability] (hooks and
// Prometheus metrics), [buildinfo] (version).
//
// # Architecture
//
// The typical data flow:
//
//	CSV / JSON edge file
//	         ↓
//	    [ingest] package (clean rows into EdgeRecords)
//	         ↓
//	    [lineage] package (per region: graph → roots → tree → layout)
//	         ↓
//	    [pipeline] package (all regions, bounded concurrency)
//	         ↓
//	    JSON/YAML/DOT/SVG files, terminal output or HTTP
//
// # Quick Start
//
//	records, _, err := ingest.ReadFile("edges.csv", ingest.DefaultColumns())
//	if err != nil {
//	    return err
//	}
//	result, err := pipeline.NewRunner(logger).Run(ctx, records, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, r := range result.Regions {
//	    fmt.Println(r.Name, r.Roots)
//	}
//
// Core packages never log; only [pipeline] and above take a logger.
package pkg
