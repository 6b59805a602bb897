package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/ingest"
	"github.com/matzehuels/lineage/pkg/lineage"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for lineage.

Besides commands and flags, the scripts complete edge files (.csv, .json)
and the region names found in them, for "tree <edges> <region>" and
"build --region".

Bash:
  $ source <(lineage completion bash)

Zsh:
  $ lineage completion zsh > "${fpath[1]}/_lineage"

Fish:
  $ lineage completion fish > ~/.config/fish/completions/lineage.fish

PowerShell:
  PS> lineage completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// edgeFileExts are offered when completing an edges file argument.
var edgeFileExts = []string{"csv", "json"}

// completeEdgesFile completes the edges file argument.
func completeEdgesFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return edgeFileExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeRegions returns the regions of the edges file in args[0] that
// start with toComplete. It reads the file with the configured columns and
// returns nothing when it cannot.
func (c *CLI) completeRegions(args []string, toComplete string) []string {
	if len(args) == 0 {
		return nil
	}
	records, _, err := ingest.ReadFile(args[0], c.Config.Columns)
	if err != nil {
		return nil
	}
	var out []string
	for _, region := range lineage.Regions(records) {
		if strings.HasPrefix(strings.ToLower(region), strings.ToLower(toComplete)) {
			out = append(out, region)
		}
	}
	return out
}
