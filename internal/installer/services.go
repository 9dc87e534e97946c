package installer

import (
	"context"
	"errors"
	"fmt"

	"reef-installer/internal/runner"
)

// stopServices stops the services that conflict with the installer.
// Failures are warnings: a service that is already stopped or not installed is fine.
func (in *Installer) stopServices(ctx context.Context, _ *RunContext) error {
	cfg := in.Config.Services
	// Quiet systemctl down to the configured log level
	env := map[string]string{}
	if cfg.LogLevel != "" {
		env["SYSTEMD_LOG_LEVEL"] = cfg.LogLevel
	}

	var errs []error
	for _, name := range cfg.Names {
		cmd := runner.Command{Argv: []string{"systemctl", "stop", name}, Env: env}
		in.Log.Debug("Running command: %s", cmd)

		// Record the failure and keep going with the next service
		res, err := in.Runner.Run(ctx, cmd)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
		case res.ExitCode != 0:
			errs = append(errs, fmt.Errorf("stop %s: systemctl exited with code %d", name, res.ExitCode))
			in.Log.Debug("systemctl output: %s", res.Output)
		default:
			in.Log.Info("Stopped %s", name)
		}
	}
	return Warning(errors.Join(errs...))
}
