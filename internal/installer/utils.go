package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// copyFile copies a file from src to dst, creating any missing directories in
// the destination path. A zero modeOverride keeps the source permissions.
func copyFile(src, dst string, modeOverride os.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close target failed: %w", cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}

	// Set permissions: use override if provided, otherwise preserve source mode
	mode := modeOverride
	if mode == 0 {
		stat, err := in.Stat()
		if err != nil {
			return fmt.Errorf("stat source failed: %w", err)
		}
		mode = stat.Mode().Perm()
	}
	return os.Chmod(dst, mode)
}

// globMatches expands a doublestar pattern into the existing paths it names,
// sorted. A literal path yields itself when it exists.
func globMatches(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
