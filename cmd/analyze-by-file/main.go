package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/workstation-tools/internal/application/zshprof"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
)

func main() {
	cli.LoadEnv()

	root := &cobra.Command{
		Use:   "analyze-by-file [logfile]",
		Short: "Show cumulative zsh startup time per sourced file (reads stdin without a file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			console.Setup(false)
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			entries, err := zshprof.Load(path, os.Stdin, false)
			if err != nil {
				return err
			}
			zshprof.WriteFileReport(console.Out(), entries)
			return nil
		},
	}
	cli.Execute(root)
}
