package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workstation-tools/internal/application/zshprof"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
)

func main() {
	cli.LoadEnv()
	v := viper.New()

	root := &cobra.Command{
		Use:     "analyze-zsh-startup <logfile>",
		Short:   "Show the slowest commands in a zsh startup trace",
		Example: "  analyze-zsh-startup zsh_profile.xyz   # Analyze zsh startup log file",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cli.InitConfig(v, "analyze-zsh-startup")
			console.Setup(false)
			entries, err := zshprof.Load(args[0], os.Stdin, true)
			if err != nil {
				return err
			}
			zshprof.WriteStartupReport(console.Out(), entries, v.GetFloat64("threshold"), v.GetInt("top"))
			return nil
		},
	}
	fs := root.Flags()
	fs.Float64P("threshold", "t", 10, "Only show entries taking more than N milliseconds")
	fs.IntP("top", "n", 20, "Show top N slowest entries")
	cli.BindFlags(v, fs)

	cli.Execute(root)
}
