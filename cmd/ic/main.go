package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/workstation-tools/internal/application/ic"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/prompt"
	"github.com/workstation-tools/internal/shellint"
)

func main() {
	cli.LoadEnv()
	console.Setup(os.Getenv("IC_DEBUG") != "")

	var scriptPath string
	newService := func() ic.Service {
		return ic.NewService(ic.ServiceDeps{
			Runner:   execx.OSRunner{},
			Shell:    shellint.New(scriptPath, os.Stdout),
			Prompter: prompt.Stdio(),
			Home:     cli.Home(),
		})
	}

	root := &cobra.Command{
		Use:   "ic",
		Short: "Simple git clone & nested tmux attach manager",
		Example: `  ic c user/repo     # Clone git@github.com:user/repo.git into ~/repos
  ic c myrepo        # Clone git@github.com:instacart/myrepo.git
  ic a               # Attach to nested tmux (create if needed)
  ic a --force       # Detach other clients and attach
  ic a --cwd         # Attach from the current directory`,
	}
	root.PersistentFlags().StringVar(&scriptPath, "shell-integration-script", "", "File path for shell integration script")
	_ = root.PersistentFlags().MarkHidden("shell-integration-script")

	cloneCmd := &cobra.Command{
		Use:     "clone <user/repo|repo|url>",
		Aliases: []string{"c"},
		Short:   "Clone a GitHub repo with SSH and run setup hooks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := newService().Clone(cmd.Context(), args[0])
			return err
		},
	}

	var opts ic.AttachOptions
	attachCmd := &cobra.Command{
		Use:     "attach",
		Aliases: []string{"a"},
		Short:   "Attach current repo to a nested tmux session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newService().Attach(cmd.Context(), opts)
		},
	}
	attachCmd.Flags().BoolVar(&opts.Force, "force", false, "Detach other clients and attach")
	attachCmd.Flags().BoolVar(&opts.CWD, "cwd", false, "Use current working directory without requiring the repos dir")

	workspaceCmd := &cobra.Command{
		Use:   "workspace [path]",
		Short: "Print the workspace containing path (default: current directory)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := os.Getwd()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				path = args[0]
			}
			if ws := newService().Workspace(path); ws != "" {
				fmt.Println(ws)
			}
			return nil
		},
	}

	hooksCmd := &cobra.Command{
		Use:   "hooks <user/repo> [dir]",
		Short: "Show the setup hooks that clone would run",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 2 {
				dir = args[1]
			}
			for _, h := range newService().Hooks(args[0], dir) {
				fmt.Println(h)
			}
			return nil
		},
	}

	root.AddCommand(cloneCmd, attachCmd, workspaceCmd, hooksCmd)
	cli.Execute(root)
}
