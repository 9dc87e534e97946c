package installer

import (
	"context"
	"strings"

	"golang.org/x/sys/unix"

	"reef-installer/internal/present"
	"reef-installer/internal/runner"
)

// presentResults prints the final report. It never fails the run: a broken
// system-info script or QR encoder only reduces what is shown.
func (in *Installer) presentResults(ctx context.Context, rc *RunContext) error {
	report := present.Report{
		Hostname: rc.Hostname,
		HostID:   rc.HostID,
		IP:       rc.IP,
		Duration: in.Now().Sub(rc.StartedAt),
		SysInfo:  in.systemInfo(ctx),
	}

	// Emit the rendered report line by line so the log file gets it too
	for _, line := range strings.Split(strings.TrimRight(in.Formatter.Render(ctx, report, in.qr), "\n"), "\n") {
		in.Log.Output(line)
	}
	return nil
}

// systemInfo runs the optional vendor system-info script and returns its output.
func (in *Installer) systemInfo(ctx context.Context) string {
	script := in.Config.Present.SysInfoScript
	if script == "" || !fileExists(script) {
		return ""
	}
	argv := []string{script}
	if unix.Access(script, unix.X_OK) != nil {
		argv = []string{"sh", script}
	}
	res, err := in.Runner.Run(ctx, runner.Command{Argv: argv})
	if err != nil || res.ExitCode != 0 {
		in.Log.Debug("System info script %s failed (exit code %d): %v", script, res.ExitCode, err)
		return ""
	}
	return res.Output
}
