package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
}

func TestDirCatalog_Releases(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"bioconductor_docker_RELEASE_3_13.sif",
		"bioconductor_docker_RELEASE_3_9.sif",
		"bioconductor_docker_RELEASE_3_17.sif",
		"bioconductor_docker_RELEASE_3_17.sif.bak",
		"bioconductor_docker_devel.sif",
		"rocker_4_1.sif",
		"notes.txt",
	)

	releases, err := NewDirCatalog(dir).Releases()
	require.NoError(t, err)
	assert.Equal(t, []string{"3.9", "3.13", "3.17"}, releases)
}

func TestDirCatalog_Empty(t *testing.T) {
	releases, err := NewDirCatalog(t.TempDir()).Releases()
	require.NoError(t, err)
	assert.Empty(t, releases)

	releases, err = NewDirCatalog(filepath.Join(t.TempDir(), "missing")).Releases()
	require.NoError(t, err)
	assert.Empty(t, releases)
}

func TestDirCatalog_Path(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "bioconductor_docker_RELEASE_3_13.sif")
	c := NewDirCatalog(dir)

	path, err := c.Path("3.13")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join(dir, "bioconductor_docker_RELEASE_3_13.sif"), path)

	_, err = c.Path("3.99")
	assert.ErrorContains(t, err, "no image for release 3.99")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "bioconductor_docker_RELEASE_3_13.sif", FileName("3.13"))
}

func TestDirCatalog_PathResolvesEveryRelease(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"bioconductor_docker_RELEASE_3_09.sif",
		"bioconductor_docker_RELEASE_3_13-custom.sif",
		"bioconductor_docker_RELEASE_03_14.sif",
		"bioconductor_docker_RELEASE_3_16.sif",
		"bioconductor_docker_RELEASE_3_16-old.sif",
	)
	c := NewDirCatalog(dir)

	releases, err := c.Releases()
	require.NoError(t, err)
	assert.Equal(t, []string{"3.9", "3.13", "3.14", "3.16"}, releases)

	for _, r := range releases {
		path, err := c.Path(r)
		require.NoError(t, err, r)
		_, err = os.Stat(path)
		assert.NoError(t, err, r)
	}

	path, err := c.Path("3.9")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bioconductor_docker_RELEASE_3_09.sif"), path)

	path, err = c.Path("3.09")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bioconductor_docker_RELEASE_3_09.sif"), path)

	// The canonically named file beats a suffixed one.
	path, err = c.Path("3.16")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bioconductor_docker_RELEASE_3_16.sif"), path)
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "3.9", Canonical("3.09"))
	assert.Equal(t, "3.13", Canonical("03.13"))
	assert.Equal(t, "3.0", Canonical("3.00"))
	assert.Equal(t, "devel", Canonical("devel"))
}
