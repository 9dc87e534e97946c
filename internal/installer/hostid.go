package installer

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"reef-installer/internal/config"
	"reef-installer/internal/runner"
)

// UnknownHostID is reported when the host id cannot be read and policy allows it.
const UnknownHostID = "UNKNOWN"

// parseHostID takes the last non-empty line of hostid.sh output and returns
// its field-th whitespace-separated token (1-based), or "" when absent.
func parseHostID(output string, field int) string {
	// Scan from the bottom for the last line that has content
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		if field < 1 || len(tokens) < field {
			return ""
		}
		return tokens[field-1]
	}
	return ""
}

// retrieveHostID asks the vendor script for the hardware host id.
func (in *Installer) retrieveHostID(ctx context.Context, rc *RunContext) error {
	cfg := in.Config.HostID

	// A missing script is fatal or UNKNOWN depending on policy
	if !fileExists(cfg.Script) {
		if cfg.MissingScript == config.MissingScriptUnknown {
			rc.HostID = UnknownHostID
			in.Log.Warn("Host id script %s not found, host id set to %s", cfg.Script, UnknownHostID)
			return nil
		}
		return fmt.Errorf("host id script %s not found", cfg.Script)
	}

	// Run through sh when the script lacks the executable bit
	argv := []string{cfg.Script, "-g"}
	if unix.Access(cfg.Script, unix.X_OK) != nil {
		argv = append([]string{"sh"}, argv...)
	}
	cmd := runner.Command{Argv: argv}
	in.Log.Debug("Running command: %s", cmd)

	res, err := in.Runner.Run(ctx, cmd)
	if err != nil {
		return withExitCode(res.ExitCode, fmt.Errorf("host id script failed: %w", err))
	}
	if res.ExitCode != 0 {
		in.Log.Debug("%s exited with code %d", cfg.Script, res.ExitCode)
	}

	// Pick the configured field out of the script output
	id := parseHostID(res.Output, cfg.Field)
	if id == "" {
		if cfg.FailOnEmpty {
			return fmt.Errorf("host id script %s returned no host id", cfg.Script)
		}
		id = UnknownHostID
		in.Log.Warn("Host id script returned no host id, using %s", id)
	}
	rc.HostID = id
	in.Log.Info("Host id: %s", in.Formatter.FormatHostID(id))
	return nil
}
