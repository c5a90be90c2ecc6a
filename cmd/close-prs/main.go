package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workstation-tools/internal/application/prs"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/prompt"
)

func main() {
	cli.LoadEnv()
	v := viper.New()

	root := &cobra.Command{
		Use:   "close-prs",
		Short: "Close open pull requests in a GitHub repository",
		Example: `  close-prs                          # Close draft PRs older than 30 days in current repo
  close-prs --close-ready            # Close all PRs (including ready) older than 30 days
  close-prs --older-than 60          # Close draft PRs older than 60 days
  close-prs --author octocat         # Close draft PRs by octocat
  close-prs -R owner/repo --dry-run  # Preview what would be closed in owner/repo
  close-prs -m "Closing stale PR"    # Close with a comment`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.InitConfig(v, "close-prs")
			console.Setup(v.GetBool("verbose"))
			opts := prs.Options{
				Repo:       v.GetString("repo"),
				CloseReady: v.GetBool("close-ready"),
				OlderThan:  v.GetInt("older-than"),
				Author:     v.GetString("author"),
				Base:       v.GetString("base"),
				Label:      v.GetString("label"),
				Message:    v.GetString("message"),
				DryRun:     v.GetBool("dry-run"),
				Yes:        v.GetBool("yes"),
				Limit:      v.GetInt("limit"),
			}
			svc := prs.NewService(prs.ServiceDeps{Runner: execx.OSRunner{}, Prompter: prompt.Stdio()})
			return svc.Run(cmd.Context(), opts)
		},
	}

	fs := root.Flags()
	fs.StringP("repo", "R", "", "Repository in OWNER/REPO format (defaults to current repo)")
	fs.Bool("close-ready", false, "Also close non-draft (ready) PRs")
	fs.IntP("older-than", "o", 30, "Only close PRs older than N days")
	fs.StringP("author", "a", "", "Only close PRs by this GitHub user")
	fs.StringP("base", "b", "", "Only close PRs targeting this base branch")
	fs.StringP("label", "L", "", "Only close PRs with this label")
	fs.StringP("message", "m", "", "Comment to add when closing")
	fs.BoolP("dry-run", "n", false, "Preview what would be closed without making changes")
	fs.BoolP("yes", "y", false, "Skip confirmation prompt")
	fs.IntP("limit", "l", 1000, "Maximum number of PRs to fetch (batches of 100)")
	fs.BoolP("verbose", "v", false, "Enable verbose output")
	cli.BindFlags(v, fs)

	cli.Execute(root)
}
