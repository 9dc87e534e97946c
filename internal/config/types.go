package config

import "time"

// Preset names. Each preset reproduces one of the two historical install
// scripts, which disagree on fallback behavior.
const (
	PresetStrict  = "strict"  // no IP fallback, missing hostid.sh is fatal
	PresetLenient = "lenient" // IP fallback + placeholder, missing hostid.sh yields UNKNOWN
)

// IP detection policies.
const (
	NetworkStrict   = "strict"
	NetworkFallback = "fallback"
)

// Missing host-id script policies.
const (
	MissingScriptFail    = "fail"
	MissingScriptUnknown = "unknown"
)

// QR encoder modes.
const (
	QRAuto     = "auto"     // external encoder if available, builtin otherwise
	QRExternal = "external" // external encoder only, plain-text fallback otherwise
	QRBuiltin  = "builtin"  // in-process encoder
	QRNone     = "none"     // always plain-text fallback
)

// Config is the fully resolved configuration of one install run.
// It is produced by Load from a preset, an optional YAML file and CLI overrides.
type Config struct {
	Preset        string          `yaml:"preset"`
	RequiredTools []string        `yaml:"required_tools"`
	Installer     InstallerConfig `yaml:"installer"`
	License       LicenseConfig   `yaml:"license"`
	Services      ServicesConfig  `yaml:"services"`
	Cleanup       CleanupConfig   `yaml:"cleanup"`
	Network       NetworkConfig   `yaml:"network"`
	HostID        HostIDConfig    `yaml:"hostid"`
	Present       PresentConfig   `yaml:"present"`
	QR            QRConfig        `yaml:"qr"`
	Log           LogConfig       `yaml:"log"`
}

// InstallerConfig describes the vendor installer and how it is invoked.
//   - Path: installer binary or bundle; may be a doublestar glob, first match wins.
//   - Binary: name prefix of the executable to look for inside an extracted bundle.
//   - WorkDir: extraction directory for bundles.
//   - NodeType / Realm / Feature: values substituted into Args.
//   - Args: text/template strings rendered per run (sprig functions available).
//   - Env: variables set for the installer process only.
//   - EnvFile: optional dotenv file merged over Env.
//   - Timeout: 0 disables the deadline.
type InstallerConfig struct {
	Path     string            `yaml:"path"`
	Binary   string            `yaml:"binary"`
	WorkDir  string            `yaml:"work_dir"`
	NodeType string            `yaml:"node_type"`
	Realm    string            `yaml:"realm"`
	Feature  string            `yaml:"feature"`
	Args     []string          `yaml:"args"`
	Env      map[string]string `yaml:"env"`
	EnvFile  string            `yaml:"env_file"`
	Timeout  time.Duration     `yaml:"timeout"`
}

// LicenseConfig holds the optional license file and where it must be copied.
type LicenseConfig struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// ServicesConfig lists services that conflict with the installer.
type ServicesConfig struct {
	Names    []string `yaml:"names"`
	LogLevel string   `yaml:"log_level"` // exported as SYSTEMD_LOG_LEVEL for systemctl
}

// CleanupConfig lists doublestar patterns removed before installing.
type CleanupConfig struct {
	Paths []string `yaml:"paths"`
}

// NetworkConfig controls IP address detection.
type NetworkConfig struct {
	IP          string `yaml:"ip"` // explicit address, skips detection
	Policy      string `yaml:"policy"`
	Probe       string `yaml:"probe"` // destination used for the route lookup
	Placeholder string `yaml:"placeholder"`
}

// HostIDConfig controls host id retrieval from the vendor script.
type HostIDConfig struct {
	Script        string `yaml:"script"`
	Field         int    `yaml:"field"` // 1-based whitespace field on the last line
	MissingScript string `yaml:"missing_script"`
	FailOnEmpty   bool   `yaml:"fail_on_empty"`
}

// PresentConfig controls the final report.
type PresentConfig struct {
	Port          int    `yaml:"port"`
	SysInfoScript string `yaml:"sysinfo_script"`
	MailTo        string `yaml:"mail_to"`
	Subject       string `yaml:"subject"`
}

// QRConfig controls QR code rendering.
type QRConfig struct {
	Mode           string `yaml:"mode"`
	Binary         string `yaml:"binary"`
	InstallMissing bool   `yaml:"install_missing"`
}

// LogConfig controls the log file. File is used literally; the -o flag
// produces a timestamped name instead.
type LogConfig struct {
	File string `yaml:"file"`
}
