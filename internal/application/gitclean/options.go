// Package gitclean deletes merged, gone or stale local branches and their
// in-sync remote counterparts.
package gitclean

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Options are shared by git-cleanup and git-prune-old.
type Options struct {
	DryRun         bool
	Force          bool
	MainBranch     string
	Remote         string
	NoDeleteRemote bool
	Verbose        bool
}

// AddFlags registers the shared flags on fs.
func AddFlags(fs *pflag.FlagSet, o *Options) {
	fs.BoolVarP(&o.DryRun, "dry-run", "n", false, "Preview what would be deleted without making changes")
	fs.BoolVarP(&o.Force, "force", "f", false, "Skip confirmation prompts")
	fs.StringVarP(&o.MainBranch, "main-branch", "m", "", "Main branch (auto-detected if not provided)")
	fs.StringVarP(&o.Remote, "remote", "r", "origin", "Remote to use")
	fs.BoolVar(&o.NoDeleteRemote, "no-delete-remote", false, "Only delete local branches, not remote branches")
	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "Enable verbose output")
}

// LoadOptions reads the shared options back from v after flags were bound,
// so environment and config file values apply.
func LoadOptions(v *viper.Viper) Options {
	return Options{
		DryRun:         v.GetBool("dry-run"),
		Force:          v.GetBool("force"),
		MainBranch:     v.GetString("main-branch"),
		Remote:         v.GetString("remote"),
		NoDeleteRemote: v.GetBool("no-delete-remote"),
		Verbose:        v.GetBool("verbose"),
	}
}

// CleanupOptions configures Cleanup.
type CleanupOptions struct {
	Options
	IncludeGone bool
}

// PruneOptions configures Prune.
type PruneOptions struct {
	Options
	Days int
}
