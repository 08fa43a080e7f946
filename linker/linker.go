// Package linker computes the symlink network which makes every artist
// directory of a various-artists album contain the complete album.
//
// Given destination paths like
//
//	<root>/Artist1/Album/01.mp3
//	<root>/Artist1/Album/02.mp3
//	<root>/Artist2/Album/03.mp3
//
// each file is linked into every other credited artist's copy of the album
// directory, so browsing any one artist shows the full tracklist.
package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"
)

// AmbiguousAlbumError is raised when one album name spans what must be two
// unrelated releases. It is fatal on purpose: a human has to rename one of
// them, guessing a partition here would corrupt the library.
type AmbiguousAlbumError struct {
	Album string
}

func (e AmbiguousAlbumError) Error() string {
	return fmt.Sprintf("Multiple albums named '%s' detected. Manual resolution is required.", e.Album)
}

// Plan maps each real file to the symlink destinations which should point
// at it. Paths are grouped into albums by their album segment; within one
// album group the leading whitespace-delimited token of each basename (the
// sort prefix) must be unique, otherwise the group actually holds two
// releases which share a name and an AmbiguousAlbumError is returned.
//
// exists reports whether a real file already occupies a candidate
// destination, in which case that edge is skipped silently. A nil exists
// checks the filesystem.
//
// Results are deterministic: albums, files and destination sets are all
// processed and returned in sorted order. For k artists and n files, and
// no pre-existing destinations, exactly (k-1)*n edges are produced.
func Plan(paths []string, exists func(string) bool) (map[string][]string, error) {
	if exists == nil {
		exists = fileExists
	}

	links := make(map[string][]string, len(paths))
	byAlbum := map[string][]string{}
	for _, p := range paths {
		links[p] = []string{}
		byAlbum[album(p)] = append(byAlbum[album(p)], p)
	}

	for _, alb := range slices.Sorted(maps.Keys(byAlbum)) {
		albumFiles := byAlbum[alb]

		prefixes := map[string]struct{}{}
		for _, f := range albumFiles {
			prefixes[sortPrefix(f)] = struct{}{}
		}
		if len(prefixes) != len(albumFiles) {
			return nil, AmbiguousAlbumError{Album: alb}
		}

		albumArtists := map[string]struct{}{}
		for _, f := range albumFiles {
			albumArtists[artist(f)] = struct{}{}
		}

		slices.Sort(albumFiles)
		for _, f := range albumFiles {
			own := artist(f)
			for other := range albumArtists {
				if other == own {
					continue
				}
				// swap only the artist path component, a naive
				// substring replace would also mangle eg
				// "Artist1/Artist1 - Artist2/.."
				dest := withArtist(f, other)
				if exists(dest) {
					continue
				}
				links[f] = append(links[f], dest)
			}
			slices.Sort(links[f])
		}
	}

	return links, nil
}

// RelativeLink creates a relative symlink at dst pointing to src, where both
// live under root in <root>/<artist>/<album>/<file> form. The link target
// climbs two directories to reach the root:
//
//	../../<artistA>/<album>/<fileA>
//
// An already existing dst is benign and ignored.
func RelativeLink(root, src, dst string) error {
	target := "../.." + strings.TrimPrefix(src, root)
	err := os.Symlink(target, dst)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	return err
}

func album(path string) string  { return segment(path, 2) }
func artist(path string) string { return segment(path, 3) }

func segment(path string, fromEnd int) string {
	parts := strings.Split(path, "/")
	if len(parts) < fromEnd {
		return ""
	}
	return parts[len(parts)-fromEnd]
}

func withArtist(path, artist string) string {
	parts := strings.Split(path, "/")
	parts[len(parts)-3] = artist
	return strings.Join(parts, "/")
}

func sortPrefix(path string) string {
	base := segment(path, 1)
	prefix, _, _ := strings.Cut(base, " ")
	return prefix
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
