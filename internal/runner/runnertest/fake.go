// Package runnertest provides a scripted Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"reef-installer/internal/runner"
)

// Response is what the fake returns for a matching command.
type Response struct {
	Result runner.Result
	Err    error
}

// Fake records every command and answers from a table keyed by the joined argv
// (or by argv[0] when no exact entry exists). Unknown commands succeed with no output.
type Fake struct {
	mu        sync.Mutex
	responses map[string]Response
	paths     map[string]string
	Calls     []runner.Command
	Sink      runner.Line
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		responses: make(map[string]Response),
		paths:     make(map[string]string),
	}
}

// On registers a response for a command, given as its space-joined argv or its program name.
func (f *Fake) On(command string, res runner.Result, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[command] = Response{Result: res, Err: err}
	return f
}

// Tool marks name as present on PATH at path.
func (f *Fake) Tool(name, path string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[name] = path
	return f
}

// Run records cmd and returns the registered response.
func (f *Fake) Run(_ context.Context, cmd runner.Command) (runner.Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	resp, ok := f.responses[strings.Join(cmd.Argv, " ")]
	if !ok && len(cmd.Argv) > 0 {
		resp = f.responses[cmd.Argv[0]]
	}
	sink := f.Sink
	f.mu.Unlock()

	if cmd.Mirror && sink != nil && resp.Result.Output != "" {
		for _, line := range strings.Split(strings.TrimSuffix(resp.Result.Output, "\n"), "\n") {
			sink.Output(line)
		}
	}
	return resp.Result, resp.Err
}

// LookPath answers from the registered tools.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}

// Ran reports whether any recorded command starts with the given argv prefix.
func (f *Fake) Ran(prefix ...string) bool {
	return len(f.Matching(prefix...)) > 0
}

// Matching returns the recorded commands whose argv starts with prefix.
func (f *Fake) Matching(prefix ...string) []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []runner.Command
	for _, c := range f.Calls {
		if len(c.Argv) < len(prefix) {
			continue
		}
		match := true
		for i, p := range prefix {
			if c.Argv[i] != p {
				match = false
				break
			}
		}
		if match {
			out = append(out, c)
		}
	}
	return out
}
