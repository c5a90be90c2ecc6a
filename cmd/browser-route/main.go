package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workstation-tools/internal/application/browser"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/execx"
)

func main() {
	cli.LoadEnv()
	v := viper.New()
	home := cli.Home()

	root := &cobra.Command{
		Use:   "browser-route <url>",
		Short: "Pick the browser and profile a URL should open in",
		Example: `  browser-route https://github.com/org/repo         # Print the decision
  browser-route --open https://meet.google.com/abc  # Open it`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.InitConfig(v, "browser-route")
			console.Setup(v.GetBool("verbose"))

			rules, err := browser.Load(v.GetString("rules"))
			if err != nil {
				return err
			}
			d := rules.Route(args[0])
			console.Println("%s", browser.Describe(d))
			if !v.GetBool("open") {
				return nil
			}
			c := browser.OpenCommand(d, home)
			console.Debug("running %s", c.String())
			_, err = execx.OSRunner{}.Run(cmd.Context(), c)
			return err
		},
	}

	fs := root.Flags()
	fs.String("rules", browser.ConfigPath(home), "Rules file (built-in rules when missing)")
	fs.Bool("open", false, "Open the URL in the chosen browser")
	fs.BoolP("verbose", "v", false, "Verbose output")
	cli.BindFlags(v, fs)

	cli.Execute(root)
}
