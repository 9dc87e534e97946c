package installer

import "time"

// RunContext is the state of one install run. The orchestrator owns it and
// hands it to each step in turn. Each field is filled by a single step and is
// never cleared afterwards.
type RunContext struct {
	RunID     string
	StartedAt time.Time
	Hostname  string

	// LicensePath is the license file given by the operator, empty when none.
	LicensePath string
	// LogPath is the log file path, empty when logging to console only.
	LogPath string
	Verbose bool

	// InstallerPath is the resolved installer executable (set by step 1).
	InstallerPath string
	// InstallerEnv is the environment added to the installer process (set by step 5).
	InstallerEnv map[string]string
	// IP is the primary IPv4 address handed to the installer (set by step 6).
	IP string
	// HostID is the hardware identifier reported by hostid.sh (set by step 8).
	HostID string
}
