package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/workstation-tools/internal/application/picker"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
)

func main() {
	cli.LoadEnv()

	root := &cobra.Command{
		Use:   "tmux-fzf-picker",
		Short: "fzf file/directory picker for tmux popups",
	}
	root.AddCommand(pickCmd())
	cli.Execute(root)
}

func pickCmd() *cobra.Command {
	var opts picker.Options
	var ignore bool

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Generate fzf picker scripts and print the runner path",
		Example: `  bind-key f run-shell 'tmux display-popup -E "$(tmux-fzf-picker pick -t f -d #{pane_current_path} -p #{pane_id})"'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console.Setup(false)
			opts.ShowIgnored = !ignore
			p, err := picker.Write(opts, os.TempDir(), cli.Home())
			if err != nil {
				return err
			}
			// No trailing newline: tmux execs the output verbatim.
			fmt.Fprint(console.Out(), p.Runner)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.Type, "type", "t", "f", "Search type: f=files, d=directories")
	fs.StringVarP(&opts.Dir, "dir", "d", "", "Directory to search in")
	fs.StringVarP(&opts.PaneID, "pane-id", "p", "", "Tmux pane ID to send results to")
	fs.BoolVar(&ignore, "ignore", true, "Respect .gitignore (--ignore=false shows gitignored files)")
	fs.StringSliceVar(&opts.Exclude, "exclude", nil, "Exclude patterns (replaces the default .git,node_modules)")
	fs.BoolVar(&opts.Toggles, "toggles", true, "Enable ctrl-g/ctrl-h toggle bindings")
	fs.StringVar(&opts.Prefix, "prefix", "", "Prefix to prepend to selected paths")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("pane-id")
	return cmd
}
