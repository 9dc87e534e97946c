// Package runner executes external commands for the install steps.
// A non-zero exit status is reported as data in Result; an error means the
// command never ran to completion (not startable, or its context expired).
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// Exit codes reported when a command could not produce its own.
const (
	ExitNotStartable = 127
	ExitTimeout      = 124 // the command's deadline expired
	ExitInterrupted  = 130 // the command's context was cancelled (SIGINT/SIGTERM)
)

// DefaultWaitDelay bounds how long Run keeps reading output after the process
// exited or its context ended. Daemons spawned by the command that inherit
// stdout/stderr would otherwise keep the pipes open forever.
const DefaultWaitDelay = 10 * time.Second

// Line receives one line of mirrored output. *logger.Logger satisfies it.
type Line interface {
	Output(line string)
}

// Command describes a single invocation.
//   - Argv: program and arguments, Argv[0] resolved through PATH.
//   - Env: variables added to the parent environment for this invocation only.
//   - Dir: working directory, empty for the current one.
//   - Mirror: stream output line by line to the Runner's sink while it runs.
type Command struct {
	Argv   []string
	Env    map[string]string
	Dir    string
	Mirror bool
}

// String renders the command for log messages.
func (c Command) String() string {
	return strings.Join(c.Argv, " ")
}

// Result is the outcome of a command that ran.
type Result struct {
	ExitCode int
	Output   string // stdout and stderr combined, in emission order
}

// Runner is the collaborator every step uses to touch the OS.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) (string, error)
}

// Exec runs commands with os/exec.
type Exec struct {
	sink Line

	// WaitDelay is applied to every command, see DefaultWaitDelay.
	WaitDelay time.Duration
}

// New returns an Exec that mirrors output to sink. A nil sink disables mirroring.
func New(sink Line) *Exec {
	return &Exec{sink: sink, WaitDelay: DefaultWaitDelay}
}

// LookPath reports where name would be found on PATH.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes cmd and waits for it to exit.
func (e *Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Argv) == 0 {
		return Result{ExitCode: ExitNotStartable}, errors.New("empty command")
	}

	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	c.WaitDelay = e.WaitDelay
	if len(cmd.Env) > 0 {
		c.Env = MergeEnv(os.Environ(), cmd.Env)
	}

	var captured bytes.Buffer
	var w io.Writer = &captured
	var mirror *lineWriter
	if cmd.Mirror && e.sink != nil {
		mirror = &lineWriter{sink: e.sink}
		w = io.MultiWriter(&captured, mirror)
	}
	// One writer for both streams: os/exec then serializes the writes,
	// which keeps stdout and stderr lines from interleaving mid-line.
	c.Stdout = w
	c.Stderr = w

	runErr := c.Run()
	if mirror != nil {
		mirror.flush()
	}
	res := Result{Output: captured.String()}

	// Cancellation and deadline are told apart: only an expired deadline is a timeout.
	if runErr != nil && ctx.Err() != nil {
		res.ExitCode = ExitInterrupted
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.ExitCode = ExitTimeout
		}
		return res, fmt.Errorf("%s: %w", cmd.Argv[0], ctx.Err())
	}
	// The process exited 0 but something it spawned still held the output pipes.
	if errors.Is(runErr, exec.ErrWaitDelay) {
		return res, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = ExitNotStartable
		return res, fmt.Errorf("failed to start %s: %w", cmd.Argv[0], runErr)
	}
	return res, nil
}

// MergeEnv overlays extra onto base (KEY=VALUE entries). Overridden keys are
// replaced in place, new keys are appended in sorted order.
func MergeEnv(base []string, extra map[string]string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(extra))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if v, ok := extra[key]; ok {
			merged = append(merged, key+"="+v)
			seen[key] = true
			continue
		}
		merged = append(merged, kv)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		merged = append(merged, k+"="+extra[k])
	}
	return merged
}

// lineWriter forwards complete lines to a sink, holding back a partial tail.
type lineWriter struct {
	sink Line
	buf  []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.sink.Output(strings.TrimRight(string(w.buf[:i]), "\r"))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.buf) > 0 {
		w.sink.Output(string(w.buf))
		w.buf = nil
	}
}
