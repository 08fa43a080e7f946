package pathformat

import (
	"fmt"
	"strings"
)

const (
	// MaxPathLen is a conservative full-path limit so that the library
	// stays portable onto NTFS mounts.
	MaxPathLen = 255

	// MaxArtistLen guards against pathological artist credits, eg
	// https://www.discogs.com/master/2152342
	MaxArtistLen = 160
)

// destPath is a destination path split by its last three separators into
// the fixed-depth segments the library layout guarantees.
type destPath struct {
	root   string
	artist string
	album  string
	file   string // includes extension
}

func splitDest(path string) (destPath, bool) {
	var d destPath
	rest := path
	rest, d.file, _ = cutLast(rest, "/")
	rest, d.album, _ = cutLast(rest, "/")
	var ok bool
	d.root, d.artist, ok = cutLast(rest, "/")
	return d, ok
}

func (d destPath) join() string {
	return strings.Join([]string{d.root, d.artist, d.album, d.file}, "/")
}

// Truncate shortens path to MaxPathLen using the default artist limit. See
// TruncateN.
func Truncate(path string) string {
	return TruncateN(path, MaxArtistLen, MaxPathLen)
}

// TruncateN returns path shortened to at most maxLen characters, or ""
// when the artist segment alone exceeds maxArtistLen, which signals that
// the artist tag needs fixing upstream rather than here.
//
// The artist segment, the file's leading sort prefix (track number) and
// the extension are never touched. The title is dropped first, silently;
// if that isn't enough, the album is shortened with a "..." marker while
// any trailing "(year)" suffix is kept for indexing.
//
// A pathological artist just under maxArtistLen combined with a long year
// suffix can still leave the result over maxLen; like the filesystems it
// targets, the caller is expected to tolerate that rare case.
func TruncateN(path string, maxArtistLen, maxLen int) string {
	d, ok := splitDest(path)
	if !ok {
		return path
	}
	if len(d.artist) > maxArtistLen {
		return ""
	}

	excess := len(path) - maxLen
	if excess <= 0 {
		return path
	}

	stem, ext, _ := cutLast(d.file, ".")
	prefix, title, hasTitle := strings.Cut(stem, " ")

	// the title carries no ordering information, so it can lose exactly
	// the excess with no marker: abcdef.mp3 -> abcde.mp3
	if hasTitle && len(title) >= excess {
		d.file = fmt.Sprintf("%s %s.%s", prefix, title[:len(title)-excess], ext)
		return d.join()
	}

	// drop the title entirely, keep the sort prefix
	d.file = prefix + "." + ext
	if hasTitle {
		excess -= len(title) + 1
	}

	if excess > 0 {
		if strings.HasSuffix(d.album, ")") {
			// keep the trailing year parenthetical intact:
			// abcdef (YYYY) -> ab... (YYYY)
			name, year, _ := cutLast(d.album, " ")
			d.album = ellipsize(name, excess+len(ellipsis)) + " " + year
		} else {
			d.album = ellipsize(d.album, excess+len(ellipsis))
		}
	}
	return d.join()
}

const ellipsis = "..."

func ellipsize(s string, cut int) string {
	if cut >= len(s) {
		return ellipsis
	}
	return s[:len(s)-cut] + ellipsis
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
