package installer

import (
	"context"
	"sort"
)

// configureEnvironment prepares the variables handed to the installer
// process (LAX_DEBUG, _JAVA_OPTIONS and any env-file entries). The parent
// environment is left untouched, the map only travels with the installer command.
func (in *Installer) configureEnvironment(_ context.Context, rc *RunContext) error {
	env := make(map[string]string, len(in.Config.Installer.Env))
	keys := make([]string, 0, len(in.Config.Installer.Env))
	for k, v := range in.Config.Installer.Env {
		env[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		in.Log.Debug("Installer env %s=%s", k, env[k])
	}
	rc.InstallerEnv = env
	return nil
}
