package installer

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix" // access(2) for the executable check
)

// validatePrerequisites checks everything the install needs before touching
// the machine: required tools, the installer itself and the license file.
// A missing tool or installer is fatal; a missing license is only a warning.
func (in *Installer) validatePrerequisites(_ context.Context, rc *RunContext) error {
	// Look up every required tool and collect the missing ones
	var missing []string
	for _, tool := range in.Config.RequiredTools {
		path, err := in.Runner.LookPath(tool)
		if err != nil {
			in.Log.Error("Required tool %s not found on PATH", tool)
			missing = append(missing, tool)
			continue
		}
		in.Log.Debug("Found %s at %s", tool, path)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %v", missing)
	}

	// Locate the installer, extracting a bundle if needed
	installer, err := in.resolveInstaller()
	if err != nil {
		return err
	}
	if err := ensureExecutable(installer); err != nil {
		return err
	}
	rc.InstallerPath = installer
	in.Log.Info("Installer: %s", installer)

	// The license is optional at this point, a missing one only warns
	if rc.LicensePath != "" && !fileExists(rc.LicensePath) {
		in.Log.Warn("License file %s not found, the appliance will need a license after install", rc.LicensePath)
	}
	return nil
}

// resolveInstaller finds the installer executable from the configured path.
// The path may be a glob (first sorted match wins) and may name a bundle,
// which is extracted into the work directory and searched.
func (in *Installer) resolveInstaller() (string, error) {
	cfg := in.Config.Installer

	matches, err := globMatches(cfg.Path)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("installer not found: nothing matches %s", cfg.Path)
	}
	if len(matches) > 1 {
		in.Log.Warn("Several installers match %s, using %s", cfg.Path, matches[0])
	}
	path := matches[0]
	if !fileExists(path) {
		return "", fmt.Errorf("installer %s is not a regular file", path)
	}

	// A plain installer binary is used as is
	if !isArchive(path) {
		return path, nil
	}

	// Otherwise, treat as a bundle and search the extracted tree

	in.Log.Info("Extracting installer bundle %s to %s", path, cfg.WorkDir)
	dir, err := ExtractArchive(path, cfg.WorkDir)
	if err != nil {
		return "", err
	}
	found, err := findInstaller(dir, cfg.Binary)
	if err != nil {
		return "", fmt.Errorf("installer bundle %s: %w", path, err)
	}
	return found, nil
}

// ensureExecutable makes path executable when access(2) says it is not.
func ensureExecutable(path string) error {
	if err := unix.Access(path, unix.X_OK); err == nil {
		return nil
	}
	// Not executable yet, fix the permissions and check again
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("installer %s is not executable and chmod failed: %w", path, err)
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("installer %s is still not executable: %w", path, err)
	}
	return nil
}
