package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/flowviz/pkg/errors"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for flowviz.

Bash:
  $ source <(flowviz completion bash)

Zsh:
  $ flowviz completion zsh > "${fpath[1]}/_flowviz"

Fish:
  $ flowviz completion fish | source

PowerShell:
  PS> flowviz completion powershell | Out-String | Invoke-Expression
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
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// completeGraphFiles offers files with a flow graph extension for the first
// positional argument.
func completeGraphFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	exts := make([]string, len(errs.GraphExtensions))
	for i, ext := range errs.GraphExtensions {
		exts[i] = ext[1:]
	}
	return exts, cobra.ShellCompDirectiveFilterFileExt
}
