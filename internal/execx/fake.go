package execx

import (
	"context"
	"strings"
	"sync"
)

// Fake is a scripted Runner for tests. Responses are keyed by the command
// line ("git status --porcelain"); unknown commands succeed with empty output.
type Fake struct {
	mu        sync.Mutex
	Responses map[string]Result
	Errors    map[string]error
	Calls     []Cmd
}

func NewFake() *Fake {
	return &Fake{Responses: map[string]Result{}, Errors: map[string]error{}}
}

// On registers stdout for a command line.
func (f *Fake) On(cmdline, stdout string) *Fake {
	f.Responses[cmdline] = Result{Stdout: stdout}
	return f
}

// Fail makes a command line exit with code 1.
func (f *Fake) Fail(cmdline string) *Fake {
	f.Errors[cmdline] = &ExitError{Cmd: cmdline, Code: 1}
	return f
}

func (f *Fake) Run(_ context.Context, c Cmd) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, c)
	key := c.String()
	if err, ok := f.Errors[key]; ok {
		return Result{ExitCode: 1}, err
	}
	return f.Responses[key], nil
}

// Ran reports whether a command line was executed.
func (f *Fake) Ran(cmdline string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c.String() == cmdline {
			return true
		}
	}
	return false
}

// CallLines returns every executed command line in order.
func (f *Fake) CallLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}

// RanPrefix reports whether any executed command line starts with prefix.
func (f *Fake) RanPrefix(prefix string) bool {
	for _, l := range f.CallLines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
