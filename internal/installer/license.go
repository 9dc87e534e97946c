package installer

import (
	"context"
	"fmt"
)

// copyLicense copies the operator's license file into place. Without a
// license the step is skipped; a failed copy is a warning.
func (in *Installer) copyLicense(_ context.Context, rc *RunContext) error {
	if rc.LicensePath == "" {
		in.Log.Info("No license file configured, skipping")
		return nil
	}

	dst := in.Config.License.Destination
	if err := copyFile(rc.LicensePath, dst, 0644); err != nil {
		return Warning(fmt.Errorf("failed to copy license %s to %s: %w", rc.LicensePath, dst, err))
	}
	in.Log.Info("Copied license to %s", dst)
	return nil
}
