package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Print a shell completion script",
	Long: `Print a completion script for the given shell to stdout.
Saved target names and setting keys complete as arguments.

  bash:       source <(pira completion bash)
  zsh:        pira completion zsh > "${fpath[1]}/_pira"
  fish:       pira completion fish | source
  powershell: pira completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	// Generating scripts needs no database.
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return completionScripts[args[0]](os.Stdout)
	},
}

// completionScripts maps each supported shell to its script generator.
var completionScripts = map[string]func(io.Writer) error{
	"bash":       func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
	"zsh":        rootCmd.GenZshCompletion,
	"fish":       func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
	"powershell": rootCmd.GenPowerShellCompletionWithDesc,
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
