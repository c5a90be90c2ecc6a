// Package browser decides which browser, and which Chrome profile, a URL
// opens in.
package browser

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/workstation-tools/internal/domain"
	"github.com/workstation-tools/internal/execx"
)

//go:embed rules.toml
var defaultRules string

// Handler routes URLs matching Match. Args may contain {url}.
type Handler struct {
	Match      string   `toml:"match"`
	Browser    string   `toml:"browser"`
	Profile    string   `toml:"profile"`
	AppPath    string   `toml:"app_path"`
	Args       []string `toml:"args"`
	RewriteURL string   `toml:"rewrite_url"`

	re *regexp.Regexp
}

// Rules is the routing table.
type Rules struct {
	DefaultBrowser string    `toml:"default_browser"`
	Handlers       []Handler `toml:"handler"`
}

// Decision is where a URL goes.
type Decision struct {
	URL     string
	Browser string
	Profile string
	AppPath string
	Args    []string
	// Match is the pattern that matched, empty for the default browser.
	Match string
}

// ConfigPath is ~/.config/browser-route/rules.toml.
func ConfigPath(home string) string {
	return filepath.Join(home, ".config", "browser-route", "rules.toml")
}

// Default returns the built-in rules.
func Default() (*Rules, error) {
	return Parse(defaultRules)
}

// Parse decodes and compiles rules from TOML text.
func Parse(data string) (*Rules, error) {
	var r Rules
	if _, err := toml.Decode(data, &r); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Load reads rules from path, falling back to the built-in rules when the
// file does not exist.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func (r *Rules) compile() error {
	if r.DefaultBrowser == "" {
		return fmt.Errorf("default_browser is required: %w", domain.ErrBadRequest)
	}
	for i := range r.Handlers {
		h := &r.Handlers[i]
		if h.Browser == "" && h.AppPath == "" {
			return fmt.Errorf("handler %d (%s) has no browser or app_path: %w", i+1, h.Match, domain.ErrBadRequest)
		}
		re, err := regexp.Compile(h.Match)
		if err != nil {
			return fmt.Errorf("handler %d: bad match %q: %v: %w", i+1, h.Match, err, domain.ErrBadRequest)
		}
		h.re = re
	}
	return nil
}

// Route returns the first matching handler's decision, else the default browser.
func (r *Rules) Route(url string) Decision {
	for _, h := range r.Handlers {
		if !h.re.MatchString(url) {
			continue
		}
		target := url
		if h.RewriteURL != "" {
			target = h.RewriteURL
		}
		args := make([]string, len(h.Args))
		for i, a := range h.Args {
			args[i] = strings.ReplaceAll(a, "{url}", target)
		}
		return Decision{
			URL:     target,
			Browser: h.Browser,
			Profile: h.Profile,
			AppPath: h.AppPath,
			Args:    args,
			Match:   h.Match,
		}
	}
	return Decision{URL: url, Browser: r.DefaultBrowser}
}

// OpenCommand builds the macOS open(1) invocation for d. A leading ~ in
// AppPath is expanded against home.
func OpenCommand(d Decision, home string) execx.Cmd {
	if d.AppPath != "" {
		app := d.AppPath
		if app == "~" || strings.HasPrefix(app, "~/") {
			app = home + app[1:]
		}
		return execx.Cmd{Name: "open", Args: []string{"-a", app, d.URL}}
	}
	if d.Profile == "" && len(d.Args) == 0 {
		return execx.Cmd{Name: "open", Args: []string{"-a", d.Browser, d.URL}}
	}
	// Everything after --args goes to the browser, so the URL travels there too.
	args := []string{"-n", "-a", d.Browser, "--args"}
	if d.Profile != "" {
		args = append(args, "--profile-directory="+d.Profile)
	}
	if len(d.Args) > 0 {
		args = append(args, d.Args...)
	} else {
		args = append(args, d.URL)
	}
	return execx.Cmd{Name: "open", Args: args}
}

// Describe renders d for the terminal.
func Describe(d Decision) string {
	var b strings.Builder
	target := d.Browser
	if d.AppPath != "" {
		target = d.AppPath
	}
	fmt.Fprintf(&b, "%s -> %s", d.URL, target)
	if d.Profile != "" {
		fmt.Fprintf(&b, " (profile %s)", d.Profile)
	}
	if d.Match == "" {
		b.WriteString(" [default]")
	} else {
		fmt.Fprintf(&b, " [%s]", d.Match)
	}
	return b.String()
}
