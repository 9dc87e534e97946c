package installer

import (
	"context"
	"errors"
	"fmt"

	"reef-installer/internal/logger"
)

// Step is a named unit of work in the install pipeline.
// Action returns nil on success, a Warning(...) for a failure the run
// tolerates, and any other error to abort the run.
type Step struct {
	Name   string
	Action func(ctx context.Context, rc *RunContext) error
}

// Pipeline runs steps strictly in order. There are no retries and no skipping:
// the run either completes every step or stops at the first fatal one.
type Pipeline struct {
	Steps []Step
	Log   *logger.Logger
}

// Run executes every step against rc. It returns nil when all steps complete
// and a *StepError for the first fatal step; later steps never run.
func (p *Pipeline) Run(ctx context.Context, rc *RunContext) error {
	total := len(p.Steps)
	for i, step := range p.Steps {
		index := i + 1

		if err := ctx.Err(); err != nil {
			p.Log.Error("Run interrupted before step %d/%d (%s): %v", index, total, step.Name, err)
			return &StepError{Step: step.Name, Index: index, Cause: err, ExitCode: ExitInterrupted}
		}

		p.Log.Info("[%d/%d] %s", index, total, step.Name)
		err := step.Action(ctx, rc)
		if err == nil {
			p.Log.Debug("Step %q completed", step.Name)
			continue
		}

		if IsWarning(err) {
			p.Log.Warn("%s: %v", step.Name, err)
			continue
		}

		stepErr := &StepError{Step: step.Name, Index: index, Cause: err, ExitCode: ExitCode(err)}
		// A step that failed because the run was cancelled reports the interrupt.
		if errors.Is(ctx.Err(), context.Canceled) {
			stepErr.ExitCode = ExitInterrupted
		}
		p.Log.Error("%s failed: %v", step.Name, err)
		p.Log.Error("Aborting installation (exit code %d)", stepErr.ExitCode)
		return stepErr
	}
	p.Log.Debug("All %d steps completed", total)
	return nil
}

// Names lists the step names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name
	}
	return names
}

// String renders the pipeline for debug output.
func (p *Pipeline) String() string {
	return fmt.Sprintf("pipeline%v", p.Names())
}
