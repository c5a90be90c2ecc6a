package main

import (
	"github.com/spf13/cobra"
	"github.com/workstation-tools/internal/application/healthcheck"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/execx"
)

func main() {
	cli.LoadEnv()

	root := &cobra.Command{
		Use:   "tmux-health-check",
		Short: "Verify the nested tmux keybinding chain is healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console.Setup(false)
			checker := &healthcheck.Checker{Runner: execx.OSRunner{}, Home: cli.Home()}
			report := checker.Run(cmd.Context())
			healthcheck.Write(console.Out(), report)
			if report.Count(healthcheck.Fail) > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
	cli.Execute(root)
}
