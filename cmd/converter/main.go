package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/workstation-tools/internal/application/mbox"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
)

func main() {
	cli.LoadEnv()
	console.Setup(os.Getenv("CONVERTER_DEBUG") != "")
	conv := mbox.NewConverter(os.Stderr)

	root := &cobra.Command{
		Use:   "converter",
		Short: "Convert maildir folders to mbox files",
	}

	var maildir, output string
	single := &cobra.Command{
		Use:   "single",
		Short: "Convert a single maildir to mbox format",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := conv.Convert(maildir, output)
			return err
		},
	}
	single.Flags().StringVarP(&maildir, "maildir", "m", "", "Input maildir path containing 'cur' and 'new' directories")
	single.Flags().StringVarP(&output, "output", "o", "", "Output mbox file path")
	_ = single.MarkFlagRequired("maildir")
	_ = single.MarkFlagRequired("output")

	var userDir, outDir string
	userdir := &cobra.Command{
		Use:   "userdir",
		Short: "Convert all maildirs under a user directory to mbox format",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			results, err := conv.ConvertUserDir(userDir, outDir)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					console.Warn("%s: %v", r.User, r.Err)
				}
			}
			return nil
		},
	}
	userdir.Flags().StringVarP(&userDir, "maildir", "m", "", "User directory containing multiple maildir folders")
	userdir.Flags().StringVarP(&outDir, "output-dir", "o", "", "Output directory for mbox files")
	_ = userdir.MarkFlagRequired("maildir")
	_ = userdir.MarkFlagRequired("output-dir")

	root.AddCommand(single, userdir)
	cli.Execute(root)
}
