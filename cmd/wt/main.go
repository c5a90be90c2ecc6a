package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/workstation-tools/internal/application/worktree"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/execx"
)

func emitCD(path string) {
	if path != "" {
		fmt.Println(worktree.CDMarker + path)
	}
}

func main() {
	cli.LoadEnv()

	var (
		verbose bool
		branch  string
	)
	newService := func() worktree.Service {
		return worktree.NewService(worktree.ServiceDeps{Runner: execx.OSRunner{}, Home: cli.Home()})
	}

	root := &cobra.Command{
		Use:   "wt [-b branch [base]]",
		Short: "Git worktree manager",
		Long: `Git worktree manager.

Directory structure:
  ~/repos/myrepo/
    bare/              Bare git repository
    master/            Master worktree
    feature-branch/    Other worktrees

Without arguments an fzf picker switches between worktrees.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(*cobra.Command, []string) {
			console.Setup(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService()
			if branch != "" {
				base := ""
				if len(args) == 1 {
					base = args[0]
				}
				path, err := svc.CreateBranch(cmd.Context(), branch, base)
				emitCD(path)
				return err
			}
			if len(args) > 0 {
				return fmt.Errorf("unknown subcommand: %s", args[0])
			}
			path, err := svc.Pick(cmd.Context())
			emitCD(path)
			return err
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output")
	root.Flags().StringVarP(&branch, "branch", "b", "", "Create a new branch and worktree (base defaults to current branch)")

	cloneCmd := &cobra.Command{
		Use:   "clone <user/repo|repo>",
		Short: "Clone a repo bare into ~/repos and create the master worktree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := newService().Clone(cmd.Context(), args[0])
			emitCD(path)
			return err
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all worktrees",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := newService().List(cmd.Context())
			if err != nil {
				return err
			}
			for _, w := range list {
				fmt.Fprintf(os.Stdout, "%-40s %s\n", w.Path, console.Cyan("["+w.Name()+"]"))
			}
			return nil
		},
	}

	var force bool
	removeCmd := &cobra.Command{
		Use:     "remove <name|path>",
		Aliases: []string{"rm"},
		Short:   "Remove a worktree (refuses uncommitted or untracked changes)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newService().Remove(cmd.Context(), args[0], force)
		},
	}
	removeCmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even with local changes")

	root.AddCommand(cloneCmd, listCmd, removeCmd)
	cli.Execute(root)
}
