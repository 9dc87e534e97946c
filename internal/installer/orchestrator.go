// Package installer drives the silent installation of the Digital Reef
// appliance as a fixed sequence of steps, from prerequisite checks to the
// final host id report.
package installer

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid" // Run identifiers for log correlation

	"reef-installer/internal/config"
	"reef-installer/internal/logger"
	"reef-installer/internal/present"
	"reef-installer/internal/runner"
)

// Step names, in pipeline order.
const (
	StepPrerequisites = "Validate prerequisites"
	StepStopServices  = "Stop services"
	StepCopyLicense   = "Copy license"
	StepCleanup       = "Clean up previous installation"
	StepEnvironment   = "Configure debug environment"
	StepDetectIP      = "Detect IP address"
	StepRunInstaller  = "Run installer"
	StepHostID        = "Retrieve host id"
	StepPresent       = "Present results"
)

// Installer holds the collaborators shared by every step.
type Installer struct {
	Config    *config.Config
	Log       *logger.Logger
	Runner    runner.Runner
	Formatter *present.Formatter

	// Detectors overrides the IP detection chain chosen by network.policy.
	Detectors []IPDetector

	// Now and Hostname are replaceable for tests.
	Now      func() time.Time
	Hostname func() (string, error)

	// qr is probed once per run, before the first step.
	qr present.Capability
}

// New wires an Installer with the real clock and hostname.
func New(cfg *config.Config, log *logger.Logger, r runner.Runner) *Installer {
	return &Installer{
		Config:    cfg,
		Log:       log,
		Runner:    r,
		Formatter: present.NewFormatter(cfg.Present),
		Now:       time.Now,
		Hostname:  os.Hostname,
	}
}

// Steps returns the full install pipeline in its fixed order.
func (in *Installer) Steps() []Step {
	return []Step{
		{Name: StepPrerequisites, Action: in.validatePrerequisites},
		{Name: StepStopServices, Action: in.stopServices},
		{Name: StepCopyLicense, Action: in.copyLicense},
		{Name: StepCleanup, Action: in.cleanup},
		{Name: StepEnvironment, Action: in.configureEnvironment},
		{Name: StepDetectIP, Action: in.detectIP},
		{Name: StepRunInstaller, Action: in.runInstaller},
		{Name: StepHostID, Action: in.retrieveHostID},
		{Name: StepPresent, Action: in.presentResults},
	}
}

// HostIDSteps returns the pipeline that only re-reads and shows the host id
// of an appliance that is already installed.
func (in *Installer) HostIDSteps() []Step {
	return []Step{
		{Name: StepDetectIP, Action: in.detectIP},
		{Name: StepHostID, Action: in.retrieveHostID},
		{Name: StepPresent, Action: in.presentResults},
	}
}

// NewRunContext starts the state of a run.
func (in *Installer) NewRunContext() *RunContext {
	rc := &RunContext{
		RunID:       uuid.NewString(),
		StartedAt:   in.Now(),
		LicensePath: in.Config.License.Source,
		LogPath:     in.Log.Path(),
		Verbose:     in.Log.Verbose(),
	}
	if name, err := in.Hostname(); err == nil {
		rc.Hostname = name
	} else {
		in.Log.Warn("Could not determine hostname: %v", err)
		rc.Hostname = "unknown"
	}
	return rc
}

// Run executes the full install pipeline.
func (in *Installer) Run(ctx context.Context) (*RunContext, error) {
	return in.run(ctx, in.Steps())
}

// RunHostID executes the host id pipeline.
func (in *Installer) RunHostID(ctx context.Context) (*RunContext, error) {
	return in.run(ctx, in.HostIDSteps())
}

func (in *Installer) run(ctx context.Context, steps []Step) (*RunContext, error) {
	rc := in.NewRunContext()
	in.Log.Info("Digital Reef installer run %s on %s (preset %s)", rc.RunID, rc.Hostname, in.Config.Preset)
	if rc.LogPath != "" {
		in.Log.Info("Logging to %s", rc.LogPath)
	}

	// Decide once how the QR code will be rendered
	in.qr = present.Probe(ctx, in.Config.QR, in.Runner, in.Log)
	in.Log.Debug("QR rendering: %s", in.qr.Source)

	p := &Pipeline{Steps: steps, Log: in.Log}
	in.Log.Debug("Running %s", p)
	if err := p.Run(ctx, rc); err != nil {
		return rc, err
	}
	in.Log.Success("Finished in %s", in.Now().Sub(rc.StartedAt).Round(time.Second))
	return rc, nil
}
