package installer

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArchive(t *testing.T) {
	tests := map[string]bool{
		"DigitalReef_5.2.bin":    false,
		"bundle.tar.gz":          true,
		"bundle.TGZ":             true,
		"bundle.tar.bz2":         true,
		"bundle.tar.xz":          true,
		"bundle.tar":             true,
		"bundle.zip":             true,
		"bundle.7z":              true,
		"DigitalReef.bin.backup": false,
	}
	for name, want := range tests {
		assert.Equal(t, want, isArchive(name), name)
	}
}

func TestExtractArchive_TarGz(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bundle.tgz")
	writeTarGz(t, src, map[string]tarEntry{
		"a/b/file.txt": {body: "hello", mode: 0600},
	})
	dest := filepath.Join(dir, "out")

	got, err := ExtractArchive(src, dest)

	require.NoError(t, err)
	assert.Equal(t, dest, got)
	data, err := os.ReadFile(filepath.Join(dest, "a", "b", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestExtractArchive_RejectsEntriesOutsideDest(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.tar")
	f, err := os.Create(src)
	require.NoError(t, err)
	tw := tar.NewWriter(f)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../escape.txt", Mode: 0644, Size: 1, Typeflag: tar.TypeReg}))
	_, err = tw.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, f.Close())

	_, err = ExtractArchive(src, filepath.Join(dir, "out"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestExtractArchive_Unsupported(t *testing.T) {
	dir := t.TempDir()
	_, err := ExtractArchive(filepath.Join(dir, "bundle.rar"), filepath.Join(dir, "out"))
	assert.ErrorContains(t, err, "unsupported archive format")
}

func TestFindInstaller_PrefersShallowExecutable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "DigitalReef.txt"), "", 0644)
	writeFile(t, filepath.Join(root, "support", "deep", "DigitalReef.bin"), "", 0755)
	want := writeFile(t, filepath.Join(root, "sub", "DigitalReef.bin"), "", 0755)

	got, err := findInstaller(root, "DigitalReef")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindInstaller_FallsBackToNonExecutable(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, filepath.Join(root, "DigitalReef.bin"), "", 0644)

	got, err := findInstaller(root, "DigitalReef")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
