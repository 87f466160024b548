package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/convgraph/internal/config"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for convgraph.

To load completions:

Bash:
  $ source <(convgraph completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ convgraph completion bash > /etc/bash_completion.d/convgraph
  # macOS:
  $ convgraph completion bash > $(brew --prefix)/etc/bash_completion.d/convgraph

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ convgraph completion zsh > "${fpath[1]}/_convgraph"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ convgraph completion fish | source

  # To load completions for each session, execute once:
  $ convgraph completion fish > ~/.config/fish/completions/convgraph.fish

PowerShell:
  PS> convgraph completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> convgraph completion powershell > convgraph.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// completeTypes completes the first two positional arguments with catalog
// names, including the aliases of the default configuration file.
func (c *CLI) completeTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) >= 2 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	catalog := typedecl.DefaultCatalog()
	if cfg, err := config.LoadDefault(); err == nil {
		_ = cfg.ApplyAliases(catalog)
	}

	var names []string
	for _, name := range catalog.Names() {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
