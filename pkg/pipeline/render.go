package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/lineage/pkg/render/nodelink"
	"github.com/matzehuels/lineage/pkg/render/timeline"
	"github.com/matzehuels/lineage/pkg/view"
)

// Render generates the requested artifacts for a computed region.
func Render(ctx context.Context, rr *RegionResult, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = view.Marshal(rr.View, view.FormatJSON)
		case FormatYAML:
			data, err = view.Marshal(rr.View, view.FormatYAML)
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = nodelink.ToDOT(rr.Graph, opts.Nodelink)
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(ctx, dot)
			}
		case FormatTimeline:
			data = timeline.RenderSVG(rr.Graph, rr.Layout, opts.Timeline)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
