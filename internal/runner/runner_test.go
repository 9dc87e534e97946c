package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	lines []string
}

func (s *recordingSink) Output(line string) {
	s.lines = append(s.lines, line)
}

func sh(script string) Command {
	return Command{Argv: []string{"/bin/sh", "-c", script}}
}

func TestRun_CapturesOutput(t *testing.T) {
	res, err := New(nil).Run(context.Background(), sh("echo hello"))

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Output)
}

func TestRun_NonZeroExitIsData(t *testing.T) {
	res, err := New(nil).Run(context.Background(), sh("echo failing; exit 42"))

	require.NoError(t, err)
	assert.Equal(t, 42, res.ExitCode)
	assert.Equal(t, "failing\n", res.Output)
}

func TestRun_CombinesStderrIntoOutput(t *testing.T) {
	res, err := New(nil).Run(context.Background(), sh("echo out; echo err >&2; echo out2"))

	require.NoError(t, err)
	assert.Equal(t, "out\nerr\nout2\n", res.Output)
}

func TestRun_MirrorsLinesInOrder(t *testing.T) {
	sink := &recordingSink{}
	cmd := sh("echo one; echo two >&2; printf three")
	cmd.Mirror = true

	res, err := New(sink).Run(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, sink.lines)
	assert.Equal(t, "one\ntwo\nthree", res.Output)
}

func TestRun_NoMirrorWhenDisabled(t *testing.T) {
	sink := &recordingSink{}

	_, err := New(sink).Run(context.Background(), sh("echo quiet"))

	require.NoError(t, err)
	assert.Empty(t, sink.lines)
}

func TestRun_PassesEnvToThisInvocationOnly(t *testing.T) {
	cmd := sh(`echo "$LAX_DEBUG"`)
	cmd.Env = map[string]string{"LAX_DEBUG": "true"}

	res, err := New(nil).Run(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, "true\n", res.Output)
	_, set := os.LookupEnv("LAX_DEBUG")
	assert.False(t, set, "parent environment must not change")
}

func TestRun_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0644))
	cmd := sh("ls")
	cmd.Dir = dir

	res, err := New(nil).Run(context.Background(), cmd)

	require.NoError(t, err)
	assert.Contains(t, res.Output, "marker.txt")
}

func TestRun_NotStartable(t *testing.T) {
	res, err := New(nil).Run(context.Background(), Command{Argv: []string{"/definitely/not/here-xyz"}})

	require.Error(t, err)
	assert.Equal(t, ExitNotStartable, res.ExitCode)
}

func TestRun_EmptyCommand(t *testing.T) {
	_, err := New(nil).Run(context.Background(), Command{})
	assert.Error(t, err)
}

func TestRun_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := New(nil).Run(ctx, sh("sleep 5"))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ExitTimeout, res.ExitCode)
}

func TestRun_CancelledWhileRunningIsInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(100*time.Millisecond, cancel)

	res, err := New(nil).Run(ctx, sh("sleep 5"))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ExitInterrupted, res.ExitCode)
}

func TestRun_BackgroundChildDoesNotBlock(t *testing.T) {
	e := New(nil)
	e.WaitDelay = 200 * time.Millisecond

	start := time.Now()
	res, err := e.Run(context.Background(), sh("sleep 3 & echo started"))

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Output, "started")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/bin", "LAX_DEBUG=false", "HOME=/root"}

	merged := MergeEnv(base, map[string]string{
		"LAX_DEBUG":     "true",
		"_JAVA_OPTIONS": "-Xmx2g",
		"A_FIRST":       "1",
	})

	assert.Equal(t, []string{
		"PATH=/bin",
		"LAX_DEBUG=true",
		"HOME=/root",
		"A_FIRST=1",
		"_JAVA_OPTIONS=-Xmx2g",
	}, merged)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "systemctl stop httpd", Command{Argv: []string{"systemctl", "stop", "httpd"}}.String())
}
