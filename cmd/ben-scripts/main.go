package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/workstation-tools/internal/application/manifest"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
)

func main() {
	cli.LoadEnv()
	var asJSON, warn bool

	root := &cobra.Command{
		Use:   "ben-scripts",
		Short: "List all available scripts with descriptions",
		Example: `  ben-scripts              # List all scripts
  ben-scripts --json       # Output as JSON
  ben-scripts --warn=false # Suppress warnings`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			console.Setup(false)
			m, err := manifest.Default()
			if err != nil {
				return err
			}
			entries := m.Entries()
			if asJSON {
				return manifest.WriteJSON(console.Out(), entries)
			}
			manifest.WriteTable(console.Out(), entries)

			if warn {
				exe, err := os.Executable()
				if err != nil {
					return err
				}
				unlisted, err := m.Unlisted(filepath.Dir(exe))
				if err != nil {
					console.Debug("cannot scan %s: %v", filepath.Dir(exe), err)
					return nil
				}
				manifest.WriteUnlisted(console.Out(), unlisted)
			}
			return nil
		},
	}
	root.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	root.Flags().BoolVarP(&warn, "warn", "w", true, "Show warnings about unlisted executables")
	cli.Execute(root)
}
