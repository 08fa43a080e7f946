// Package tagmap scores and diffs local file tags against a reconciled
// Discogs release.
package tagmap

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"

	"go.dita.xyz/dita/release"
	"go.dita.xyz/dita/tags"
)

var dmp = diffmatchpatch.New()

type Diff struct {
	Field         string
	Before, After []diffmatchpatch.Diff
	Equal         bool
}

type TagWeights map[string]float64

func (tw TagWeights) For(field string) float64 {
	if field == "" {
		return 1
	}
	for f, w := range tw {
		if strings.HasPrefix(field, f) {
			return w
		}
	}
	return 1
}

// DiffRelease compares the tags of files against the reconciled release,
// returning a 0-100 match score and per-field diffs. The tracklists must be
// the same length.
func DiffRelease(weights TagWeights, rel *release.Release, files []*tags.File) (float64, []Diff) {
	if len(files) == 0 {
		return 0, nil
	}
	if len(rel.Tracks) != len(files) {
		panic(fmt.Errorf("len(rel.Tracks) != len(files)"))
	}
	f := files[0]

	var score float64
	diff := Differ(weights, &score)

	var diffs []Diff
	diffs = append(diffs,
		diff("release", f.Read(tags.Album), rel.Album),
		diff("artist", f.Read(tags.Artist), rel.Tracks[0].Artist),
		diff("date", f.Read(tags.Date), rel.Date),
	)

	for i, f := range files {
		diffs = append(diffs, diff(
			fmt.Sprintf("track %d", i+1),
			strings.Join(filterZero(f.Read(tags.Artist), f.Read(tags.Title)), " – "),
			strings.Join(filterZero(rel.Tracks[i].Artist, rel.Tracks[i].Title), " – "),
		))
	}

	return score, diffs
}

// WriteFile replaces a file's tags with the reconciled values for its track.
// Unknown tags are dropped so stale metadata doesn't ride along.
func WriteFile(rel *release.Release, i int, f *tags.File) {
	track := rel.Tracks[i]

	f.ClearUnknown()
	f.Write(tags.Album, rel.Album)
	f.Write(tags.AlbumArtist, rel.Artist)
	f.Write(tags.Date, rel.Date)
	f.Write(tags.Genre, f.Read(tags.Genre)) // genre is curated separately, keep it
	f.Write(tags.Title, track.Title)
	f.Write(tags.Artist, track.Artist)
	f.Write(tags.TrackNumber, track.Number)
	if rel.Compilation {
		f.Write(tags.Compilation, "1")
	} else {
		f.Clear(tags.Compilation)
	}
}

func Differ(weights TagWeights, score *float64) func(field string, a, b string) Diff {
	var total float64
	var dist float64

	return func(field, a, b string) Diff {
		// separate, normalised diff only for score. if we have both fields
		if a != "" && b != "" {
			a, b := norm(a), norm(b)

			diffs := dmp.DiffMain(a, b, false)
			dist += float64(dmp.DiffLevenshtein(diffs)) * weights.For(field)
			total += float64(len([]rune(b)))

			*score = 100 - (dist * 100 / total)
		}

		diffs := dmp.DiffMain(a, b, false)
		dist := float64(dmp.DiffLevenshtein(diffs))
		return Diff{
			Field:  field,
			Before: filterFunc(diffs, func(d diffmatchpatch.Diff) bool { return d.Type <= diffmatchpatch.DiffEqual }),
			After:  filterFunc(diffs, func(d diffmatchpatch.Diff) bool { return d.Type >= diffmatchpatch.DiffEqual }),
			Equal:  dist == 0,
		}
	}
}

func norm(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		if unicode.IsNumber(r) {
			return r
		}
		return -1
	}, input)
}

func filterZero[T comparable](elms ...T) []T {
	var zero T
	var r []T
	for _, el := range elms {
		if el != zero {
			r = append(r, el)
		}
	}
	return r
}

func filterFunc[T any](diffs []T, f func(T) bool) []T {
	var r []T
	for _, diff := range diffs {
		if f(diff) {
			r = append(r, diff)
		}
	}
	return r
}
