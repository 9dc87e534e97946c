package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestTimestampedPath(t *testing.T) {
	assert.Equal(t, "out_20240102_030405.log", TimestampedPath("out", fixedClock()))
	assert.Equal(t, "/var/log/reef_20240102_030405.log", TimestampedPath("/var/log/reef", fixedClock()))
}

func TestLog_ConsoleFormat(t *testing.T) {
	var stdout bytes.Buffer
	l := New(Options{Stdout: &stdout, Now: fixedClock})

	l.Log("hello", "")

	assert.Equal(t, "[2024-01-02 03:04:05] hello\n", stdout.String())
}

func TestLog_ColoredVariantGoesToConsoleOnly(t *testing.T) {
	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")
	l := New(Options{Stdout: &stdout, FilePath: path, Now: fixedClock})

	l.Log("plain", "\x1b[32mplain\x1b[0m")
	require.NoError(t, l.Close())

	assert.Contains(t, stdout.String(), "\x1b[32mplain\x1b[0m")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[2024-01-02 03:04:05] plain\n", string(data))
}

func TestLog_FileMirrorsEveryMessageInOrderWithoutEscapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l := New(Options{Stdout: &bytes.Buffer{}, FilePath: path, Now: fixedClock})

	l.Info("first %d", 1)
	l.Warn("second")
	l.Log("\x1b[1;31mthird\x1b[0m", "")
	l.Output("fourth")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "[2024-01-02 03:04:05] [INFO] first 1", lines[0])
	assert.Equal(t, "[2024-01-02 03:04:05] [WARN] second", lines[1])
	assert.Equal(t, "[2024-01-02 03:04:05] third", lines[2])
	assert.Equal(t, "[2024-01-02 03:04:05] fourth", lines[3])
	assert.NotContains(t, string(data), "\x1b[")
}

func TestLog_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0644))

	l := New(Options{Stdout: &bytes.Buffer{}, FilePath: path, Now: fixedClock})
	l.Output("next")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous\n[2024-01-02 03:04:05] next\n", string(data))
}

func TestDebug_OnlyWhenVerbose(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    bool
	}{
		{"quiet drops debug", false, false},
		{"verbose prints debug", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			l := New(Options{Stdout: &stdout, Verbose: tt.verbose, Now: fixedClock})

			l.Debug("details %s", "here")

			assert.Equal(t, tt.want, strings.Contains(stdout.String(), "[DEBUG] details here"))
			assert.Equal(t, tt.verbose, l.Verbose())
		})
	}
}

func TestNew_UnwritableFileWarnsOnceAndContinues(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing-dir", "run.log")

	l := New(Options{Stdout: &stdout, Stderr: &stderr, FilePath: path, Now: fixedClock})
	l.Info("still logging")
	l.Info("and again")

	assert.Empty(t, l.Path())
	assert.Equal(t, 1, strings.Count(stderr.String(), "unavailable"))
	assert.Contains(t, stdout.String(), "still logging")
	assert.Contains(t, stdout.String(), "and again")
}

func TestPath_ReportsOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l := New(Options{Stdout: &bytes.Buffer{}, FilePath: path})
	defer l.Close()

	assert.Equal(t, path, l.Path())
}
