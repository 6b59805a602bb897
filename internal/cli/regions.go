package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/pipeline"
)

// regionsCommand lists the regions of an edges file with their counts.
func (c *CLI) regionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "regions [edges.csv|edges.json]",
		Short:             "List regions with district, event and root counts",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeEdgesFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			records, err := c.loadRecords(ctx, args[0])
			if err != nil {
				return err
			}
			result, err := c.computeRegions(ctx, records, nil)
			if err != nil {
				return err
			}
			return writeRegionsTable(cmd.OutOrStdout(), result)
		},
	}
}

func writeRegionsTable(w io.Writer, result *pipeline.Result) error {
	rows := make([][]string, 0, len(result.Regions))
	for _, rr := range result.Regions {
		roots := strings.Join(rr.Roots, ", ")
		if rr.Fallback {
			roots += " (fallback)"
		}
		rows = append(rows, []string{
			rr.Name,
			strconv.Itoa(rr.Graph.NodeCount()),
			strconv.Itoa(rr.Graph.EdgeCount()),
			roots,
			strconv.Itoa(len(rr.Graph.YearConflicts())),
		})
	}

	headerStyle := StyleTitle.Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("REGION", "DISTRICTS", "EVENTS", "ROOTS", "CONFLICTS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle.Foreground(colorCyan)
			case col == 1 || col == 2 || col == 4:
				return cellStyle.Align(lipgloss.Right)
			case col == 3 && result.Regions[row].Fallback:
				return cellStyle.Foreground(colorYellow)
			default:
				return cellStyle
			}
		})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d regions · %d districts · %d events",
		result.Stats.Regions, result.Stats.Nodes, result.Stats.Edges)))
	return err
}
