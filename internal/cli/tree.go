package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/view"
)

// treeCommand prints the lineage tree of one region.
func (c *CLI) treeCommand() *cobra.Command {
	var years bool

	cmd := &cobra.Command{
		Use:   "tree [edges.csv|edges.json] [region]",
		Short: "Print the lineage tree of a region",
		Long: `Print the lineage tree of a region, starting from its origin districts.

A district reached again through a cycle is shown once more, marked "(cycle)",
and is not expanded further. Regions with several origins are grouped under
the region name.

Without a region argument, an interactive list of the regions in the file
is shown to pick from.`,
		Args: cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return c.completeRegions(args, toComplete), cobra.ShellCompDirectiveNoFileComp
			}
			return completeEdgesFile(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var regions []string
			if len(args) == 2 {
				if err := errors.ValidateRegionName(args[1]); err != nil {
					return err
				}
				regions = []string{args[1]}
			}
			records, err := c.loadRecords(ctx, args[0])
			if err != nil {
				return err
			}
			result, err := c.computeRegions(ctx, records, regions)
			if err != nil {
				return err
			}

			var rr *pipeline.RegionResult
			if len(args) == 2 {
				rr, _ = result.Region(args[1])
			} else {
				name, err := pickRegion(cmd, result)
				if err != nil {
					return err
				}
				if name == "" {
					printDetail("No selection made")
					return nil
				}
				rr, _ = result.Region(name)
			}
			if rr.Fallback {
				printWarning("%s has no origin district; starting from %s", rr.Name, rr.Roots[0])
			}
			return writeTree(cmd.OutOrStdout(), rr.Graph, rr.Tree, years)
		},
	}

	cmd.Flags().BoolVar(&years, "years", true, "show formation years")
	return cmd
}

// pickRegion lets the user choose a region interactively. A single region
// is returned without asking; an empty name means the user quit.
func pickRegion(cmd *cobra.Command, result *pipeline.Result) (string, error) {
	switch len(result.Regions) {
	case 0:
		return "", errors.New(errors.ErrCodeInvalidInput, "no regions found")
	case 1:
		return result.Regions[0].Name, nil
	}

	m := NewRegionListModel(regionChoices(result))
	p := tea.NewProgram(m,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("region picker: %w", err)
	}
	fm, ok := finalModel.(RegionListModel)
	if !ok {
		return "", nil
	}
	return fm.Selected, nil
}

func writeTree(w io.Writer, g *lineage.Graph, t *lineage.Tree, years bool) error {
	if t == nil {
		_, err := fmt.Fprintln(w, StyleDim.Render("(empty region)"))
		return err
	}
	out := toLipglossTree(g, t, years).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim).
		RootStyle(StyleTitle)
	_, err := fmt.Fprintln(w, out.String())
	return err
}

func toLipglossTree(g *lineage.Graph, t *lineage.Tree, years bool) *tree.Tree {
	node := tree.Root(treeLabel(g, t, years))
	for _, child := range t.Children {
		if len(child.Children) == 0 {
			node.Child(treeLabel(g, child, years))
			continue
		}
		node.Child(toLipglossTree(g, child, years))
	}
	return node
}

func treeLabel(g *lineage.Graph, t *lineage.Tree, years bool) string {
	switch {
	case t.CyclePlaceholder:
		return StyleWarning.Render(t.Label)
	case t.Virtual:
		return StyleHighlight.Render(t.Label)
	}
	if !years {
		return StyleValue.Render(t.Label)
	}
	n, _ := g.Node(t.Name)
	year := view.YearLabel(n.FormationYear)
	if n.IsOrigin() && n.FormationYear == nil {
		year = "origin"
	}
	return StyleValue.Render(t.Label) + " " + StyleDim.Render(year)
}
