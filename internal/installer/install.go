package installer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3" // Template helpers for installer arguments

	"reef-installer/internal/runner"
)

// argData is the data available to installer argument templates.
type argData struct {
	IP       string
	NodeType string
	Realm    string
	Feature  string
	Hostname string
}

// installerArgs renders the configured argument templates for this run.
func (in *Installer) installerArgs(rc *RunContext) ([]string, error) {
	cfg := in.Config.Installer
	data := argData{
		IP:       rc.IP,
		NodeType: cfg.NodeType,
		Realm:    cfg.Realm,
		Feature:  cfg.Feature,
		Hostname: rc.Hostname,
	}

	// Render each argument on its own so errors name the offending one
	args := make([]string, 0, len(cfg.Args))
	for i, raw := range cfg.Args {
		tmpl, err := template.New(fmt.Sprintf("arg%d", i)).
			Funcs(sprig.TxtFuncMap()).
			Option("missingkey=error").
			Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing installer argument %q: %w", raw, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("rendering installer argument %q: %w", raw, err)
		}
		args = append(args, buf.String())
	}
	return args, nil
}

// runInstaller invokes the vendor installer in silent mode with its output
// mirrored to the log. A non-zero exit aborts the run with the same code.
func (in *Installer) runInstaller(ctx context.Context, rc *RunContext) error {
	args, err := in.installerArgs(rc)
	if err != nil {
		return err
	}

	// Bound the installer run when a timeout is configured
	if timeout := in.Config.Installer.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
		in.Log.Debug("Installer timeout set to %s", timeout)
	}

	// Run from the installer's directory with its environment, mirroring output
	cmd := runner.Command{
		Argv:   append([]string{rc.InstallerPath}, args...),
		Env:    rc.InstallerEnv,
		Dir:    filepath.Dir(rc.InstallerPath),
		Mirror: true,
	}
	in.Log.Info("Running command: %s", cmd)

	// Any failure aborts the run with the installer's own exit code
	res, err := in.Runner.Run(ctx, cmd)
	if err != nil {
		return withExitCode(res.ExitCode, fmt.Errorf("installer did not complete: %w", err))
	}
	if res.ExitCode != 0 {
		return withExitCode(res.ExitCode, fmt.Errorf("installer exited with code %d", res.ExitCode))
	}
	in.Log.Success("Installer completed")
	return nil
}
