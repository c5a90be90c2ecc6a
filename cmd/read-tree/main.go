package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workstation-tools/internal/application/readtree"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/console"
	"golang.org/x/term"
)

func main() {
	cli.LoadEnv()
	v := viper.New()

	root := &cobra.Command{
		Use:   "read-tree [path]",
		Short: "Read every file under a directory to force cloud files local",
		Example: `  read-tree ~/Documents            # Scan Documents folder
  read-tree -p ~/Documents         # Same, with the flag
  read-tree ~/OneDrive -c 200 -s   # High concurrency, skip hidden files
  read-tree ~/Projects -d 3        # Max depth of 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.InitConfig(v, "read-tree")
			console.Setup(false)

			path := v.GetString("path")
			if len(args) == 1 {
				path = args[0]
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("cannot access %s: %w", path, err)
			}
			if !info.IsDir() {
				return &cli.ExitError{Code: 1, Msg: fmt.Sprintf("%s is not a directory", path)}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			width := 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
			progress := &readtree.Progress{Out: os.Stdout, PathWidth: max(40, width-60)}
			walker := readtree.NewWalker(readtree.Options{
				Concurrency: v.GetInt("concurrency"),
				SkipHidden:  v.GetBool("skip-hidden"),
				MaxDepth:    v.GetInt("max-depth"),
			}, progress.Render)

			console.Println("Scanning %s with concurrency %d", path, v.GetInt("concurrency"))
			progress.Begin()
			stats, err := walker.Walk(ctx, path)
			progress.Finish(stats)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	fs := root.Flags()
	fs.StringP("path", "p", ".", "Directory path to scan")
	fs.IntP("concurrency", "c", 100, "Number of concurrent file operations")
	fs.BoolP("skip-hidden", "s", false, "Skip hidden files and directories")
	fs.IntP("max-depth", "d", -1, "Maximum directory depth to scan (-1 for unlimited)")
	cli.BindFlags(v, fs)

	cli.Execute(root)
}
