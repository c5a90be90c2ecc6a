// Package cli holds the cobra/viper plumbing every command shares.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/workstation-tools/internal/console"
)

// ExitError ends the process with Code. An empty Msg prints nothing.
type ExitError struct {
	Code int
	Msg  string
}

func (e *ExitError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Msg
}

// LoadEnv reads a .env file from the working directory if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, reading from environment")
	}
}

// Execute runs root, printing any returned error once and exiting non-zero.
func Execute(root *cobra.Command) {
	root.SilenceErrors = true
	root.SilenceUsage = true
	if err := root.Execute(); err != nil {
		os.Exit(ReportError(err))
	}
}

// ReportError prints err and returns the exit code it maps to.
func ReportError(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		if ee.Msg != "" {
			console.Error(ee.Msg)
		}
		return ee.Code
	}
	console.Error(err.Error())
	return 1
}

// InitConfig wires viper for tool: env vars prefixed with the upper-cased
// tool name, plus an optional ~/.config/<tool>/config.yaml.
func InitConfig(v *viper.Viper, tool string) {
	prefix := strings.ToUpper(strings.ReplaceAll(tool, "-", "_"))
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", tool))
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", v.ConfigFileUsed())
	}
}

// BindFlags binds every flag in fs to v under its own name, so flag > env > file > default.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

// Home returns the user's home directory, falling back to $HOME.
func Home() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}
