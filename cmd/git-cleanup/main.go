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

	var opts gitclean.CleanupOptions
	root := &cobra.Command{
		Use:   "git-cleanup",
		Short: "Delete local branches merged into main or whose remote is gone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.InitConfig(v, "git-cleanup")
			opts.Options = gitclean.LoadOptions(v)
			opts.IncludeGone = v.GetBool("include-gone")
			console.Setup(opts.Verbose)

			svc := gitclean.NewService(gitclean.ServiceDeps{Runner: execx.OSRunner{}, Prompter: prompt.Stdio()})
			return svc.Cleanup(cmd.Context(), opts)
		},
	}
	fs := root.Flags()
	gitclean.AddFlags(fs, &opts.Options)
	fs.BoolVarP(&opts.IncludeGone, "include-gone", "g", true, "Include branches whose remote is gone (squash-merged)")
	cli.BindFlags(v, fs)

	cli.Execute(root)
}
