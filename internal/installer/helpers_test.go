package installer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"reef-installer/internal/config"
	"reef-installer/internal/runner"
	"reef-installer/internal/runner/runnertest"
)

var testStart = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// testInstaller bundles an Installer wired to a scripted runner with
// everything it touches moved under a temporary directory.
type testInstaller struct {
	*Installer
	fake *runnertest.Fake
	out  *bytes.Buffer
	dir  string
}

// output returns everything logged so far without color codes.
func (ti *testInstaller) output() string {
	return ansi.Strip(ti.out.String())
}

func newTestInstaller(t *testing.T, preset string) *testInstaller {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.Default(preset)
	require.NoError(t, err)
	cfg.Installer.Path = filepath.Join(dir, "DigitalReef*.bin")
	cfg.Installer.WorkDir = filepath.Join(dir, "work")
	cfg.License.Destination = filepath.Join(dir, "opt", "license", "license.dat")
	cfg.Cleanup.Paths = nil
	cfg.HostID.Script = filepath.Join(dir, "hostid.sh")
	cfg.Present.SysInfoScript = ""
	cfg.QR.Mode = config.QRNone

	log, out := newTestLogger()
	fake := runnertest.New()
	fake.Sink = log
	fake.Tool("ip", "/usr/sbin/ip").Tool("systemctl", "/usr/bin/systemctl")

	in := New(cfg, log, fake)
	in.Now = func() time.Time { return testStart }
	in.Hostname = func() (string, error) { return "reef01", nil }

	return &testInstaller{Installer: in, fake: fake, out: out, dir: dir}
}

// writeFile creates path with content and mode, including parent directories.
func writeFile(t *testing.T, path, content string, mode os.FileMode) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func result(code int, output string) runner.Result {
	return runner.Result{ExitCode: code, Output: output}
}
