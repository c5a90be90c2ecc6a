package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workstation-tools/internal/application/gitclean"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/prompt"
)

func main() {
	cli.LoadEnv()
	v := viper.New()

	var opts gitclean.PruneOptions
	root := &cobra.Command{
		Use:   "git-prune-old",
		Short: "Delete local (and in-sync remote) branches with no commits in N days",
		Example: `  git-prune-old                    # Branches older than 30 days
  git-prune-old --days 60          # Branches older than 60 days
  git-prune-old --dry-run          # Preview what would be deleted
  git-prune-old --no-delete-remote # Only delete local branches`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.InitConfig(v, "git-prune-old")
			opts.Options = gitclean.LoadOptions(v)
			opts.Days = v.GetInt("days")
			console.Setup(opts.Verbose)

			svc := gitclean.NewService(gitclean.ServiceDeps{Runner: execx.OSRunner{}, Prompter: prompt.Stdio()})
			return svc.Prune(cmd.Context(), opts)
		},
	}
	fs := root.Flags()
	gitclean.AddFlags(fs, &opts.Options)
	fs.IntVarP(&opts.Days, "days", "d", 30, "Delete branches older than this many days")
	cli.BindFlags(v, fs)

	cli.Execute(root)
}
