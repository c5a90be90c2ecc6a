package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workstation-tools/internal/application/download"
	"github.com/workstation-tools/internal/application/links"
	"github.com/workstation-tools/internal/application/queue"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/config"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/infrastructure/dynamo"
	"github.com/workstation-tools/internal/infrastructure/sns"
	"github.com/workstation-tools/internal/prompt"
)

// app builds the queue lazily so commands that never touch DynamoDB
// (token) do not need AWS credentials.
type app struct {
	cfg *config.Config
	v   *viper.Viper
}

func (a *app) queue(ctx context.Context) (queue.Service, error) {
	aws := a.cfg.DownloaderAWS()
	client, err := dynamo.NewClient(ctx, aws)
	if err != nil {
		return nil, err
	}
	pub, err := sns.NewPublisher(ctx, aws, a.cfg.SNSTopicARN)
	if err != nil {
		return nil, err
	}
	return queue.NewService(dynamo.NewQueueRepo(client, a.cfg.DownloadTable), pub), nil
}

// bind reads cmd's flags through viper, so DOWNLOADER_<FLAG> env vars apply.
func (a *app) bind(cmd *cobra.Command) {
	cli.BindFlags(a.v, cmd.Flags())
	console.Setup(a.v.GetBool("verbose") || os.Getenv("DOWNLOADER_DEBUG") != "")
}

func main() {
	cli.LoadEnv()
	a := &app{cfg: config.Load(), v: viper.New()}
	cli.InitConfig(a.v, "downloader")

	root := &cobra.Command{
		Use:   "downloader",
		Short: "Queue and download files through a DynamoDB-backed queue",
	}
	root.AddCommand(
		migrateCmd(a),
		addCmd(a),
		listCmd(a),
		removeCmd(a),
		downloadCmd(a),
		fromClipboardCmd(a),
		serveCmd(a),
		tokenCmd(a),
		secretCmd(),
	)
	cli.Execute(root)
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the DynamoDB table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.bind(cmd)
			q, err := a.queue(cmd.Context())
			if err != nil {
				return err
			}
			created, err := q.Migrate(cmd.Context())
			if err != nil {
				return fmt.Errorf("create table %s: %w", a.cfg.DownloadTable, err)
			}
			if created {
				console.Success("Table %s created successfully", a.cfg.DownloadTable)
			} else {
				console.Info("Table %s already exists", a.cfg.DownloadTable)
			}
			return nil
		},
	}
}

func addCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new download item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.bind(cmd)
			q, err := a.queue(cmd.Context())
			if err != nil {
				return err
			}
			item, err := q.Add(cmd.Context(), a.v.GetString("url"), a.v.GetString("name"))
			if err != nil {
				return err
			}
			console.Success("Added download item: %s", item.ID)
			console.Println("  %s (%s)", item.Filename, item.URL)
			return nil
		},
	}
	cmd.Flags().StringP("url", "u", "", "URL to download")
	cmd.Flags().StringP("name", "n", "", "Name used for the filename (defaults to the URL)")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all download items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.bind(cmd)
			q, err := a.queue(cmd.Context())
			if err != nil {
				return err
			}
			items, err := q.List(cmd.Context(), a.v.GetBool("errors"))
			if err != nil {
				return err
			}
			if len(items) == 0 {
				console.Info("No items in the queue")
				return nil
			}
			for _, it := range items {
				console.Println("%s  %s  %s", console.Muted(it.ID), console.Bold(it.Filename), it.URL)
				console.Println("    created %s", it.CreationTime)
				if it.Failed() {
					console.Println("    %s %s (last attempt %s)", console.Red("error:"), *it.Error, deref(it.LastAttempt))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolP("errors", "e", false, "Only show items with errors")
	return cmd
}

func removeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a download item by id or url",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.bind(cmd)
			q, err := a.queue(cmd.Context())
			if err != nil {
				return err
			}
			if id := a.v.GetString("id"); id != "" {
				if err := q.RemoveByID(cmd.Context(), id); err != nil {
					return err
				}
				console.Success("Removed item %s", id)
				return nil
			}
			u := a.v.GetString("url")
			n, err := q.RemoveByURL(cmd.Context(), u)
			if err != nil {
				return err
			}
			console.Success("Removed %d item(s) with url %s", n, u)
			return nil
		},
	}
	cmd.Flags().StringP("id", "i", "", "ID of the item to remove")
	cmd.Flags().StringP("url", "u", "", "Remove every item queued for this URL")
	cmd.MarkFlagsOneRequired("id", "url")
	cmd.MarkFlagsMutuallyExclusive("id", "url")
	return cmd
}

func downloadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download one item, or keep processing the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.bind(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dir := expandHome(a.v.GetString("dir"))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			q, err := a.queue(ctx)
			if err != nil {
				return err
			}
			fetcher := download.NewFetcher(&http.Client{}, dir)
			loop := a.v.GetBool("loop")
			if loop {
				fetcher.WithBreaker(5, 30*time.Second)
			}
			w := download.NewWorker(q, fetcher, a.v.GetInt("parallel"))

			if loop {
				return w.Loop(ctx)
			}
			id := a.v.GetString("id")
			if id == "" {
				return fmt.Errorf("either --id or --loop must be specified")
			}
			_, err = w.DownloadOne(ctx, id)
			return err
		},
	}
	fs := cmd.Flags()
	fs.StringP("id", "i", "", "ID of the item to download")
	fs.BoolP("loop", "l", false, "Continuously process the queue")
	fs.StringP("dir", "d", a.cfg.DownloadDir, "Directory to save downloads")
	fs.IntP("parallel", "p", 1, "Maximum concurrent downloads in loop mode")
	fs.BoolP("verbose", "v", false, "Verbose output")
	cmd.MarkFlagsMutuallyExclusive("id", "loop")
	return cmd
}

func fromClipboardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fromclipboard",
		Short: "Add download items from links in the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.bind(cmd)
			ctx := cmd.Context()
			raw, found, err := links.FromClipboard(ctx, links.System{Runner: execx.OSRunner{}})
			if err != nil {
				return err
			}
			if a.v.GetBool("verbose") {
				console.Println("Raw clipboard content:")
				console.Println("%s", strings.Repeat("-", 40))
				console.Println("%s", raw)
				console.Println("%s\n", strings.Repeat("-", 40))
			}
			if len(found) == 0 {
				console.Info("No URLs found in clipboard content")
				return nil
			}

			console.Info("Found %d URLs in clipboard:", len(found))
			for _, l := range found {
				console.Println("%s (%s)", queue.FilenameFor(l.URL, l.Text), l.URL)
			}
			if a.v.GetBool("dry-run") {
				console.Info("This was a dry run. No URLs were added to the queue.")
				return nil
			}
			if a.v.GetBool("confirm") {
				if err := prompt.Stdio().WaitEnter("Press Enter to add these items to the queue (Ctrl+C to cancel)..."); err != nil {
					return err
				}
			}

			q, err := a.queue(ctx)
			if err != nil {
				return err
			}
			entries := make([]queue.Entry, len(found))
			for i, l := range found {
				entries[i] = queue.Entry{URL: l.URL, Name: l.Text}
			}
			added := queue.AddAll(ctx, q, entries, func(e queue.Entry, err error) {
				console.Warn("Skipped %s: %v", e.URL, err)
			})
			for _, item := range added {
				console.Success("Added: %s: %s (%s)", item.ID, item.Filename, item.URL)
			}
			if len(added) < len(entries) {
				console.Warn("Added %d of %d URLs", len(added), len(entries))
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.BoolP("dry-run", "d", false, "Preview URLs without adding them to the queue")
	fs.BoolP("verbose", "v", false, "Show raw clipboard content")
	fs.BoolP("confirm", "c", false, "Confirm before adding items")
	return cmd
}

func expandHome(p string) string {
	if p == "~" {
		return cli.Home()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(cli.Home(), p[2:])
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return "never"
	}
	return *s
}
