package commands

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script",
	Long: `To load completions:

Bash:
  $ source <(routeviz completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ routeviz completion bash > /etc/bash_completion.d/routeviz
  # macOS:
  $ routeviz completion bash > /usr/local/etc/bash_completion.d/routeviz

Zsh:
  $ routeviz completion zsh > "${fpath[1]}/_routeviz"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ routeviz completion fish | source

  # To load completions for each session, execute once:
  $ routeviz completion fish > ~/.config/fish/completions/routeviz.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			_, err := out.Write([]byte(humanBashCompletion))
			return err
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		}
		return rootCmd.GenPowerShellCompletion(out)
	},
}

// humanBashCompletion is a short handwritten script.
const humanBashCompletion = `
# routeviz bash completion

_routeviz_completion() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="validate replay scenario completion help"

    case "${prev}" in
        validate|replay)
            COMPREPLY=( $(compgen -W "--scenario --file --algorithm --start --end --format --output --max-steps --help" -- ${cur}) )
            return 0
            ;;
        scenario)
            COMPREPLY=( $(compgen -W "list show save import delete load" -- ${cur}) )
            return 0
            ;;
        --algorithm|-a)
            COMPREPLY=( $(compgen -W "dijkstra bellman-ford" -- ${cur}) )
            return 0
            ;;
        --format)
            COMPREPLY=( $(compgen -W "text json csv" -- ${cur}) )
            return 0
            ;;
        --lock-policy)
            COMPREPLY=( $(compgen -W "reject ignore" -- ${cur}) )
            return 0
            ;;
        --file|-f|--output|-o|--config|--rules|--log-file)
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- ${cur}) )
            return 0
            ;;
        *)
            ;;
    esac

    # Global Flags
    if [[ ${cur} == -* ]] ; then
        COMPREPLY=( $(compgen -W "--help --version --config --backend --timeout --scenarios --rules --lock-policy --otel-endpoint --log-file --verbose" -- ${cur}) )
        return 0
    fi

    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
}

complete -F _routeviz_completion routeviz
`
