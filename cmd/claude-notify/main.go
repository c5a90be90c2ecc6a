package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workstation-tools/internal/application/notify"
	"github.com/workstation-tools/internal/cli"
	"github.com/workstation-tools/internal/config"
	"github.com/workstation-tools/internal/console"
	"github.com/workstation-tools/internal/execx"
	"github.com/workstation-tools/internal/infrastructure/sns"
	"golang.org/x/term"
)

const stdinTimeout = 500 * time.Millisecond

func main() {
	cli.LoadEnv()
	cfg := config.Load()
	v := viper.New()
	cli.InitConfig(v, "claude-notify")

	root := &cobra.Command{
		Use:   "claude-notify [type|json]",
		Short: "Desktop notifications for Claude Code and Codex hooks",
		Long: `Reads a hook payload from stdin (or, with --codex, from the first argument)
and shows a terminal-notifier alert unless the session's tmux window is on screen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.BindFlags(v, cmd.Flags())
			debug := v.GetBool("debug")
			console.Setup(debug)

			codex := v.GetBool("codex")
			in, rest, err := readInput(codex, args)
			if err != nil {
				return err
			}
			if len(in) == 0 && len(rest) == 0 {
				console.Debug("no hook input and no arguments, nothing to do")
				return nil
			}

			svc, err := newService(cmd.Context(), cfg, v)
			if err != nil {
				return err
			}
			cwd, _ := os.Getwd()
			out, err := svc.Handle(cmd.Context(), notify.Request{
				Input: in,
				Args:  rest,
				Codex: codex,
				PPID:  os.Getppid(),
				Cwd:   cwd,
			})
			if err != nil {
				return err
			}
			if out.Skipped != "" {
				console.Debug("skipped %s for session %s: %s", out.Type, out.Session, out.Skipped)
				return nil
			}
			console.Debug("notification args = %q", out.Args)
			return nil
		},
	}

	fs := root.Flags()
	fs.Bool("codex", false, "Payload comes from Codex as the first argument")
	fs.BoolP("debug", "v", false, "Print debug output to stderr")
	fs.String("openai-base-url", "", "OpenAI-compatible endpoint for session summaries")
	fs.String("openai-api-key", os.Getenv("OPENAI_API_KEY"), "API key for the summary endpoint")
	fs.String("openai-model", notify.DefaultSummaryModel, "Model used for session summaries")
	fs.String("sns-topic-arn", "", "Also publish notifications to this SNS topic")

	cli.Execute(root)
}

// readInput returns the payload and the positional args that were not consumed by it.
func readInput(codex bool, args []string) (notify.Input, []string, error) {
	if codex && len(args) > 0 && notify.LooksLikeJSON(args[0]) {
		in, err := notify.ParseInput([]byte(args[0]))
		return in, args[1:], err
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return notify.Input{}, args, nil
	}
	data, err := notify.ReadWithTimeout(os.Stdin, stdinTimeout)
	if notify.IsTimeout(err) {
		console.Debug("stdin read timed out")
		return notify.Input{}, args, nil
	}
	if err != nil {
		return nil, nil, err
	}
	in, err := notify.ParseInput(data)
	return in, args, err
}

func newService(ctx context.Context, cfg *config.Config, v *viper.Viper) (notify.Service, error) {
	home := cli.Home()
	cacheDir := filepath.Join(home, ".config", "claude-notify")

	pub, err := sns.NewPublisher(ctx, cfg.BaseAWS(), v.GetString("sns-topic-arn"))
	if err != nil {
		return nil, err
	}

	var summarizer notify.Summarizer
	if v.GetString("openai-base-url") != "" || v.GetString("openai-api-key") != "" {
		summarizer = notify.NewOpenAISummarizer(notify.SummarizerConfig{
			BaseURL: v.GetString("openai-base-url"),
			APIKey:  v.GetString("openai-api-key"),
			Model:   v.GetString("openai-model"),
		})
	}

	return notify.NewService(notify.ServiceDeps{
		Runner:      execx.OSRunner{},
		States:      notify.NewStateStore(filepath.Join(home, ".claude")),
		Cache:       notify.SummaryCache{Path: filepath.Join(cacheDir, "summaries.json")},
		Summarizer:  summarizer,
		Publisher:   pub,
		Log:         &notify.FileLog{Path: filepath.Join(cacheDir, "notifications.log")},
		Home:        home,
		ProjectsDir: filepath.Join(home, ".claude", "projects"),
		CacheDir:    cacheDir,
	}), nil
}
