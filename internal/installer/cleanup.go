package installer

import (
	"context"
	"os"
)

// cleanup removes leftovers of previous installations. Every removal is best
// effort: patterns that match nothing are silent and failures are only logged
// at debug level, so the step always succeeds and running it twice is a no-op.
func (in *Installer) cleanup(_ context.Context, _ *RunContext) error {
	for _, pattern := range in.Config.Cleanup.Paths {
		// Expand the pattern into the paths that exist right now
		matches, err := globMatches(pattern)
		if err != nil {
			in.Log.Debug("Skipping cleanup pattern: %v", err)
			continue
		}
		// Remove each match, files and directory trees alike
		for _, match := range matches {
			if err := os.RemoveAll(match); err != nil {
				in.Log.Debug("Failed to remove %s: %v", match, err)
				continue
			}
			in.Log.Info("Removed %s", match)
		}
	}
	return nil
}
