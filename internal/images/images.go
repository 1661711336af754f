// Package images discovers the Bioconductor container releases available to
// RStudio sessions.
package images

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

var releasePattern = regexp.MustCompile(`bioconductor_docker_RELEASE_(\d+)_(\d+)`)

// FileName returns the image file name of a "<major>.<minor>" release.
func FileName(release string) string {
	return fmt.Sprintf("bioconductor_docker_RELEASE_%s.sif", strings.ReplaceAll(release, ".", "_"))
}

// Catalog resolves releases to container image paths.
type Catalog interface {
	Releases() ([]string, error)
	Path(release string) (string, error)
}

// DirCatalog looks for *.sif images in a single directory.
type DirCatalog struct {
	Dir string
}

func NewDirCatalog(dir string) *DirCatalog {
	return &DirCatalog{Dir: dir}
}

// Releases lists every release with an image in the directory, oldest first.
func (c *DirCatalog) Releases() ([]string, error) {
	found, err := c.scan()
	if err != nil {
		return nil, err
	}
	releases := make([]string, 0, len(found))
	for r := range found {
		releases = append(releases, r)
	}
	slices.SortFunc(releases, func(a, b string) int {
		return semver.Compare("v"+a, "v"+b)
	})
	return releases, nil
}

// Path returns the absolute path of the release's image, which must exist.
func (c *DirCatalog) Path(release string) (string, error) {
	found, err := c.scan()
	if err != nil {
		return "", err
	}
	path, ok := found[Canonical(release)]
	if !ok {
		return "", fmt.Errorf("no image for release %s in %s", release, c.Dir)
	}
	return path, nil
}

// scan maps each release to its absolute image path. When several files carry
// the same release, the one named exactly FileName(release) wins, then the
// first in lexical order.
func (c *DirCatalog) scan() (map[string]string, error) {
	dir, err := filepath.Abs(c.Dir)
	if err != nil {
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.sif"))
	if err != nil {
		return nil, err
	}

	found := make(map[string]string)
	for _, file := range files {
		base := filepath.Base(file)
		m := releasePattern.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		r := trimZeros(m[1]) + "." + trimZeros(m[2])
		if _, ok := found[r]; !ok || base == FileName(r) {
			found[r] = file
		}
	}
	return found, nil
}

// Canonical writes a release the way Releases reports it, so "3.09" and
// "03.9" both become "3.9".
func Canonical(release string) string {
	major, minor, ok := strings.Cut(release, ".")
	if !ok {
		return release
	}
	return trimZeros(major) + "." + trimZeros(minor)
}

// semver rejects leading zeros.
func trimZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}
