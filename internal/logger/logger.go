package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi" // Strips escape sequences before lines reach the log file
	"github.com/fatih/color"          // Colored console output per log level
)

// timestampLayout is the prefix stamped on every line, console and file alike.
const timestampLayout = "2006-01-02 15:04:05"

// fileSuffixLayout is used by TimestampedPath for the -o flag.
const fileSuffixLayout = "20060102_150405"

// Level colors, following the original palette of the setup tool:
// green for normal progress, magenta for warnings, red for errors, cyan for debug.
var (
	infoColor    = color.New(color.FgGreen)
	warnColor    = color.New(color.FgHiMagenta)
	errorColor   = color.New(color.FgRed)
	debugColor   = color.New(color.FgCyan)
	successColor = color.New(color.FgHiGreen, color.Bold)
)

// Options configures a Logger.
//   - Verbose: enables Debug output.
//   - FilePath: when set, every line is also appended to this file with ANSI codes removed.
//   - Stdout / Stderr: console sinks, default to os.Stdout and os.Stderr.
//   - Now: clock used for timestamps, defaults to time.Now.
type Options struct {
	Verbose  bool
	FilePath string
	Stdout   io.Writer
	Stderr   io.Writer
	Now      func() time.Time
}

// Logger writes timestamped lines to the console and, optionally, to a log file.
// Console lines keep their color; file lines are plain text.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	file    io.WriteCloser
	path    string
	verbose bool
	now     func() time.Time
	warned  bool // file sink failure already reported
}

// New creates a Logger. A log file that cannot be opened does not fail the
// run: the failure is reported once on stderr and the logger continues console-only.
func New(opts Options) *Logger {
	l := &Logger{
		out:     opts.Stdout,
		errOut:  opts.Stderr,
		verbose: opts.Verbose,
		now:     opts.Now,
		path:    opts.FilePath,
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.errOut == nil {
		l.errOut = os.Stderr
	}
	if l.now == nil {
		l.now = time.Now
	}

	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			l.fileFailed(err)
		} else {
			l.file = f
		}
	}
	return l
}

// Discard returns a logger that writes nowhere. Handy in tests.
func Discard() *Logger {
	return New(Options{Stdout: io.Discard, Stderr: io.Discard})
}

// TimestampedPath builds the log file name used for `-o FILE`: FILE_YYYYMMDD_HHMMSS.log.
func TimestampedPath(base string, now time.Time) string {
	return fmt.Sprintf("%s_%s.log", base, now.Format(fileSuffixLayout))
}

// Path returns the log file path, or "" when logging to console only.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.path
}

// Verbose reports whether debug output is enabled.
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Log writes "[timestamp] message" to the console. When colored is non-empty
// it is printed to the console instead of message. The file always receives
// message with escape sequences stripped.
func (l *Logger) Log(message, colored string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamp := "[" + l.now().Format(timestampLayout) + "] "

	console := message
	if colored != "" {
		console = colored
	}
	_, _ = fmt.Fprintln(l.out, stamp+console)

	if l.file == nil {
		return
	}
	if _, err := io.WriteString(l.file, ansi.Strip(stamp+message)+"\n"); err != nil {
		l.fileFailed(err)
	}
}

// Info logs normal progress.
func (l *Logger) Info(format string, a ...any) {
	l.level(infoColor, "[INFO] ", format, a...)
}

// Warn logs a non-fatal problem.
func (l *Logger) Warn(format string, a ...any) {
	l.level(warnColor, "[WARN] ", format, a...)
}

// Error logs a fatal problem. Aborting is up to the caller.
func (l *Logger) Error(format string, a ...any) {
	l.level(errorColor, "[ERROR] ", format, a...)
}

// Success logs a completed milestone.
func (l *Logger) Success(format string, a ...any) {
	l.level(successColor, "[OK] ", format, a...)
}

// Debug logs only when verbose output is enabled.
func (l *Logger) Debug(format string, a ...any) {
	if !l.verbose {
		return
	}
	l.level(debugColor, "[DEBUG] ", format, a...)
}

// Output logs one line of mirrored child-process output, uncolored.
func (l *Logger) Output(line string) {
	l.Log(line, "")
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) level(c *color.Color, tag, format string, a ...any) {
	msg := tag + fmt.Sprintf(format, a...)
	l.Log(msg, c.Sprint(msg))
}

// fileFailed reports a file sink failure once and drops the sink.
// Callers hold l.mu or run before the logger is shared.
func (l *Logger) fileFailed(err error) {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	if l.warned {
		return
	}
	l.warned = true
	_, _ = fmt.Fprintln(l.errOut, warnColor.Sprintf("[WARN] Log file %s unavailable, continuing without it: %v", l.path, err))
}
