package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds the run configuration.
//
// The preset is chosen first (the preset argument wins over the file's own
// `preset:` key, and both default to PresetStrict), then the YAML file at path
// is decoded over the preset's values, then the installer env file, if any, is
// merged over installer.env. An empty path yields the preset unchanged.
// The result is not validated: callers apply CLI overrides and then call Validate.
func Load(path, preset string) (*Config, error) {
	var raw []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		raw = data

		// Peek at the preset so the file can pick its own defaults.
		var head struct {
			Preset string `yaml:"preset"`
		}
		if err := yaml.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if preset == "" {
			preset = head.Preset
		}
	}

	cfg, err := Default(preset)
	if err != nil {
		return nil, err
	}

	if raw != nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		// The decoded file may carry a different preset key than the one applied.
		cfg.Preset = preset
		if cfg.Preset == "" {
			cfg.Preset = PresetStrict
		}
	}

	if err := cfg.loadEnvFile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile merges the installer dotenv file into Installer.Env.
func (c *Config) loadEnvFile() error {
	if c.Installer.EnvFile == "" {
		return nil
	}
	vars, err := godotenv.Read(c.Installer.EnvFile)
	if err != nil {
		return fmt.Errorf("failed to read installer env file %s: %w", c.Installer.EnvFile, err)
	}
	if c.Installer.Env == nil {
		c.Installer.Env = make(map[string]string, len(vars))
	}
	for k, v := range vars {
		c.Installer.Env[k] = v
	}
	return nil
}

// Validate checks the values that would otherwise fail late in the pipeline.
func (c *Config) Validate() error {
	if c.Installer.Path == "" {
		return fmt.Errorf("installer.path must be set")
	}
	if len(c.Installer.Args) == 0 {
		return fmt.Errorf("installer.args must not be empty")
	}
	if c.Installer.Timeout < 0 {
		return fmt.Errorf("installer.timeout must not be negative, got %s", c.Installer.Timeout)
	}
	switch c.Network.Policy {
	case NetworkStrict, NetworkFallback:
	default:
		return fmt.Errorf("network.policy must be %q or %q, got %q", NetworkStrict, NetworkFallback, c.Network.Policy)
	}
	if c.Network.IP != "" && net.ParseIP(c.Network.IP).To4() == nil {
		return fmt.Errorf("network.ip %q is not an IPv4 address", c.Network.IP)
	}
	switch c.HostID.MissingScript {
	case MissingScriptFail, MissingScriptUnknown:
	default:
		return fmt.Errorf("hostid.missing_script must be %q or %q, got %q", MissingScriptFail, MissingScriptUnknown, c.HostID.MissingScript)
	}
	if c.HostID.Field < 1 {
		return fmt.Errorf("hostid.field must be 1 or greater, got %d", c.HostID.Field)
	}
	switch c.QR.Mode {
	case QRAuto, QRExternal, QRBuiltin, QRNone:
	default:
		return fmt.Errorf("qr.mode must be one of auto, external, builtin, none, got %q", c.QR.Mode)
	}
	if c.Present.Port <= 0 || c.Present.Port > 65535 {
		return fmt.Errorf("present.port %d is out of range", c.Present.Port)
	}
	if c.License.Source != "" && c.License.Destination == "" {
		return fmt.Errorf("license.destination must be set when a license source is given")
	}
	if pattern := cleanupPatternCovering(c.License.Destination, c.Cleanup.Paths); pattern != "" {
		return fmt.Errorf("license.destination %s would be removed by cleanup path %q", c.License.Destination, pattern)
	}
	return nil
}

// cleanupPatternCovering returns the first cleanup pattern that matches path
// or one of its parent directories, or "" when path survives the cleanup step.
func cleanupPatternCovering(path string, patterns []string) string {
	if path == "" {
		return ""
	}
	for _, pattern := range patterns {
		// Walk up from the file itself to the root.
		for p := filepath.Clean(path); ; p = filepath.Dir(p) {
			if ok, err := doublestar.PathMatch(filepath.Clean(pattern), p); err == nil && ok {
				return pattern
			}
			if p == filepath.Dir(p) {
				break
			}
		}
	}
	return ""
}
