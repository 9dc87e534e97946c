package installer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reef-installer/internal/runner"
)

func installContext(ti *testInstaller) *RunContext {
	rc := ti.NewRunContext()
	rc.InstallerPath = filepath.Join(ti.dir, "DigitalReef_5.2.bin")
	rc.InstallerEnv = map[string]string{"LAX_DEBUG": "true"}
	rc.IP = "10.0.0.5"
	return rc
}

func TestInstallerArgs_DefaultTemplate(t *testing.T) {
	ti := newTestInstaller(t, "")

	args, err := ti.installerArgs(installContext(ti))

	require.NoError(t, err)
	want := []string{
		"-i", "silent",
		"-DNODE_TYPE=ALL_IN_ONE",
		"-DREALM_NAME=DigitalReef",
		"-DIPADDRESS=10.0.0.5",
		"-DDATABASE_IP=10.0.0.5",
		"-DFEATURE_FLAG=true",
	}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("installer args mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallerArgs_AddressPassedOncePerProperty(t *testing.T) {
	ti := newTestInstaller(t, "")

	args, err := ti.installerArgs(installContext(ti))
	require.NoError(t, err)

	joined := strings.Join(args, " ")
	assert.Equal(t, 1, strings.Count(joined, "-DIPADDRESS=10.0.0.5"))
	assert.Equal(t, 1, strings.Count(joined, "-DDATABASE_IP=10.0.0.5"))
}

func TestInstallerArgs_SprigFunctions(t *testing.T) {
	ti := newTestInstaller(t, "")
	ti.Config.Installer.Args = []string{"-DHOST={{ .Hostname | upper }}", "-DREALM={{ .Realm | lower }}"}

	args, err := ti.installerArgs(installContext(ti))

	require.NoError(t, err)
	assert.Equal(t, []string{"-DHOST=REEF01", "-DREALM=digitalreef"}, args)
}

func TestInstallerArgs_BadTemplate(t *testing.T) {
	ti := newTestInstaller(t, "")
	ti.Config.Installer.Args = []string{"-DX={{ .Missing }}"}

	_, err := ti.installerArgs(installContext(ti))

	assert.Error(t, err)
}

func TestRunInstaller_PassesEnvAndMirrorsOutput(t *testing.T) {
	ti := newTestInstaller(t, "")
	rc := installContext(ti)
	ti.fake.On(rc.InstallerPath, result(0, "Preparing to install\nInstallation complete.\n"), nil)

	require.NoError(t, ti.runInstaller(context.Background(), rc))

	calls := ti.fake.Matching(rc.InstallerPath)
	require.Len(t, calls, 1)
	c := calls[0]
	assert.Equal(t, rc.InstallerEnv, c.Env)
	assert.Equal(t, ti.dir, c.Dir)
	assert.True(t, c.Mirror)
	assert.Equal(t, "-i", c.Argv[1])
	assert.Contains(t, ti.output(), "Installation complete.")
	assert.Contains(t, ti.output(), "[OK] Installer completed")
}

func TestRunInstaller_NonZeroExitIsFatalWithSameCode(t *testing.T) {
	ti := newTestInstaller(t, "")
	rc := installContext(ti)
	ti.fake.On(rc.InstallerPath, result(7, "Installation failed"), nil)

	err := ti.runInstaller(context.Background(), rc)

	require.Error(t, err)
	assert.False(t, IsWarning(err))
	assert.Equal(t, 7, ExitCode(err))
}

func TestRunInstaller_TimeoutKillsInstaller(t *testing.T) {
	ti := newTestInstaller(t, "")
	rc := installContext(ti)
	writeFile(t, rc.InstallerPath, "#!/bin/sh\nexec sleep 5\n", 0755)
	ti.Runner = runner.New(ti.Log)
	ti.Config.Installer.Timeout = 100 * time.Millisecond

	start := time.Now()
	err := ti.runInstaller(context.Background(), rc)

	require.Error(t, err)
	assert.Equal(t, runner.ExitTimeout, ExitCode(err))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunInstaller_InterruptExits130(t *testing.T) {
	ti := newTestInstaller(t, "")
	rc := installContext(ti)
	writeFile(t, rc.InstallerPath, "#!/bin/sh\nexec sleep 5\n", 0755)
	ti.Runner = runner.New(ti.Log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(100*time.Millisecond, cancel)

	err := ti.runInstaller(ctx, rc)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ExitInterrupted, ExitCode(err))
}
