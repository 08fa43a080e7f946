// Package release reconciles Discogs metadata into flat tag values. All of
// the heuristics here operate on an already fetched release, so that no
// network calls hide inside tag decisions.
package release

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.dita.xyz/dita/discogs"
)

type Release struct {
	DiscogsID   int
	Album       string
	Artist      string
	Date        string
	Genre       string
	Compilation bool
	Tracks      []Track
}

type Track struct {
	Number   string
	Title    string
	Artist   string
	Duration int // seconds
}

// FromDiscogs builds the tag values for a release. The caller resolves
// masterYear (the original year via the master release) beforehand, zero
// meaning unknown.
func FromDiscogs(rel *discogs.Release, masterYear int) (*Release, error) {
	tracklist := Tracklist(rel)
	if len(tracklist) == 0 {
		return nil, fmt.Errorf("release %d has no usable tracks", rel.ID)
	}

	artists := Artists(rel, len(tracklist))

	// a split with a doubled tracklist credits every artist twice
	if len(artists) == 2*len(tracklist) {
		artists = artists[:len(artists)/2]
	}
	for i, artist := range artists {
		artists[i] = CleanArtist(artist)
	}
	if len(artists) != 1 && len(artists) != len(tracklist) {
		return nil, fmt.Errorf("release %d: got %d artists for %d tracks", rel.ID, len(artists), len(tracklist))
	}

	album := Titlecase(rel.Title)
	if slices.Contains(rel.Genres, "Classical") && IsClassical(rel) {
		if performers := Performers(rel, artists); len(performers) > 0 {
			album += " [" + strings.Join(performers, ", ") + "]"
		}
	}

	date := masterYear
	if date == 0 {
		date = rel.Year
	}
	if date == 0 {
		if year, ok := YearFromNotes(rel.Notes); ok {
			date = year
		}
	}

	numWidth := 2
	if len(tracklist) > 99 {
		numWidth = 3
	}

	r := &Release{
		DiscogsID:   rel.ID,
		Album:       album,
		Date:        strconv.Itoa(date),
		Genre:       primaryGenre(rel),
		Compilation: len(artists) > 1,
	}
	for i, track := range tracklist {
		artist := artists[0]
		if r.Compilation {
			artist = artists[i]
		}
		r.Tracks = append(r.Tracks, Track{
			Number:   fmt.Sprintf("%0*d", numWidth, i+1),
			Title:    Titlecase(track.Title),
			Artist:   artist,
			Duration: ParseDuration(track.Duration),
		})
	}

	if r.Compilation {
		r.Artist = strings.Join(slices.Compact(slices.Sorted(slices.Values(artists))), ", ")
	} else {
		r.Artist = artists[0]
	}
	return r, nil
}

// Tracklist flattens a release's tracklist into taggable rows. Headings and
// video positions are dropped, subtracks are merged into their parent title,
// and doubled tracklists (cassettes listing both sides) are halved.
func Tracklist(rel *discogs.Release) []discogs.Track {
	var tracks []discogs.Track
	for _, track := range rel.Tracklist {
		if track.Type == "heading" {
			continue
		}
		if skipPosition(track.Position) {
			continue
		}
		if len(track.SubTracks) > 0 {
			for _, sub := range track.SubTracks {
				merged := track
				merged.SubTracks = nil
				merged.Title = track.Title + " - " + sub.Title
				merged.Duration = sub.Duration
				tracks = append(tracks, merged)
			}
			continue
		}
		if strings.TrimSpace(track.Title) == "" {
			continue
		}
		tracks = append(tracks, track)
	}
	if doubled(tracks) {
		tracks = tracks[:len(tracks)/2]
	}
	return tracks
}

func skipPosition(position string) bool {
	position = strings.ToLower(position)
	return strings.Contains(position, "video") || strings.Contains(position, "dvd")
}

func doubled(tracks []discogs.Track) bool {
	if len(tracks) == 0 || len(tracks)%2 != 0 {
		return false
	}
	titles := make([]string, 0, len(tracks))
	counts := map[string]int{}
	for _, track := range tracks {
		title := strings.TrimSpace(track.Title)
		titles = append(titles, title)
		counts[title]++
	}
	half := len(titles) / 2
	if !slices.Equal(titles[:half], titles[half:]) {
		return false
	}
	for _, n := range counts {
		if n != 2 {
			return false
		}
	}
	return true
}

// Artists extracts the artist per track, or a single artist for the whole
// release. Broadly there are three release shapes: classical (composers
// only), non-classical splits (per-track artists), and standard releases
// (artists_sort).
func Artists(rel *discogs.Release, numTracks int) []string {
	// 1. per-track credits, composer role required for classical
	artists := compact(trackArtists(rel, IsClassical(rel)))
	if len(artists) == numTracks {
		return artists
	}

	// 2. album credits with track ranges
	if IsClassical(rel) {
		artists = compact(albumCreditArtists(rel))
		if len(artists) == 1 || len(artists) == numTracks {
			return artists
		}
	}

	// 3. release artists
	artists = artists[:0]
	for _, artist := range rel.Artists {
		artists = append(artists, artist.Name)
	}
	artists = compact(artists)
	if len(artists) == 1 || len(artists) == numTracks {
		return artists
	}

	// 4. artists_sort, which always exists
	artist := rel.ArtistsSort
	if len(rel.Artists) > 1 {
		artist = strings.ReplaceAll(artist, " & ", ", ")
		artist = strings.ReplaceAll(artist, " / ", ", ")
		if len(artist) > 100 {
			artist, _, _ = strings.Cut(artist, ",")
		}
	}
	return []string{artist}
}

func trackArtists(rel *discogs.Release, requireComposer bool) []string {
	var artists []string
	for _, track := range rel.Tracklist {
		switch {
		case requireComposer && len(track.ExtraArtists) > 0:
			var composers []string
			for _, artist := range track.ExtraArtists {
				if strings.HasPrefix(artist.Role, "Compos") {
					composers = append(composers, artist.Name)
				}
			}
			if len(composers) == 0 {
				continue
			}
			composer := strings.Join(composers, ", ")
			// subtracks inherit the parent track's composer
			for range max(1, len(track.SubTracks)) {
				artists = append(artists, composer)
			}
		case len(track.Artists) > 0:
			artists = append(artists, track.Artists[0].Name)
		}
	}
	return artists
}

func albumCreditArtists(rel *discogs.Release) []string {
	var composers []discogs.Artist
	for _, artist := range rel.ExtraArtists {
		if strings.HasPrefix(artist.Role, "Compos") {
			composers = append(composers, artist)
		}
	}
	if len(composers) == 1 {
		return []string{composers[0].Name}
	}

	byTrack := map[int]string{}
	for _, composer := range composers {
		nums, err := ParseNumRange(composer.Tracks)
		if err != nil {
			return nil
		}
		for _, n := range nums {
			byTrack[n] = composer.Name
		}
	}
	var names []string
	for _, n := range slices.Sorted(maps.Keys(byTrack)) {
		names = append(names, byTrack[n])
	}
	return names
}

// IsClassical reports whether the release is best treated as classical, that
// is tagged Classical outright or tagged with none of the broad popular
// genres.
func IsClassical(rel *discogs.Release) bool {
	if slices.Contains(rel.Genres, "Classical") {
		return true
	}
	for _, genre := range rel.Genres {
		switch genre {
		case "Jazz", "Pop", "Folk, World, & Country", "Electronic", "Rock":
			return false
		}
	}
	return true
}

// Performers extracts the non-composer artists of a classical release, for
// appending to the album title. Composer credit only ever appears under
// extraartists.
func Performers(rel *discogs.Release, composers []string) []string {
	var performers []string
	for _, artist := range rel.Artists {
		performers = append(performers, artist.Name)
	}
	if len(performers) == 0 {
		for _, artist := range rel.ExtraArtists {
			switch strings.ToLower(artist.Role) {
			case "conductor", "orchestra", "directed":
				performers = append(performers, artist.Name)
			}
		}
	}
	for i, performer := range performers {
		performers[i] = CleanArtist(performer)
	}
	performers = slices.Compact(performers)
	performers = slices.DeleteFunc(performers, func(p string) bool {
		return slices.Contains(composers, p)
	})
	return performers
}

func primaryGenre(rel *discogs.Release) string {
	if len(rel.Styles) > 0 {
		return rel.Styles[0]
	}
	if len(rel.Genres) > 0 {
		return rel.Genres[0]
	}
	return ""
}

var yearExpr = regexp.MustCompile(`(?:19|20)\d{2}`)

// Year extracts the four digit year from a date string, eg "2018-06-15" ->
// "2018". Unrecognised dates pass through unchanged.
func Year(date string) string {
	if m := yearExpr.FindString(date); m != "" {
		return m
	}
	return date
}

// YearFromNotes digs a year out of release notes, but only when the notes
// mention exactly one distinct year.
func YearFromNotes(notes string) (int, bool) {
	matches := yearExpr.FindAllString(notes, -1)
	slices.Sort(matches)
	matches = slices.Compact(matches)
	if len(matches) != 1 {
		return 0, false
	}
	year, _ := strconv.Atoi(matches[0])
	return year, true
}

// ParseDuration converts a Discogs duration string ("4:20", "1:02:03") to
// seconds. Anything unparseable is 0.
func ParseDuration(dur string) int {
	parts := strings.Split(dur, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	var total int
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}

const durTolerance = 15 // seconds

// DurationsMatch compares file durations against tracklist durations. Missing
// durations on either side fail the check, per-track drift within the
// tolerance passes, and larger drift passes only if the totals still agree.
func DurationsMatch(fileDurations, trackDurations []int) bool {
	if len(fileDurations) != len(trackDurations) {
		return false
	}
	var maxDiff, fileTotal, trackTotal int
	for i := range fileDurations {
		if fileDurations[i] == 0 || trackDurations[i] == 0 {
			return false
		}
		diff := trackDurations[i] - fileDurations[i]
		if diff < 0 {
			diff = -diff
		}
		maxDiff = max(maxDiff, diff)
		fileTotal += fileDurations[i]
		trackTotal += trackDurations[i]
	}
	totalDiff := trackTotal - fileTotal
	if totalDiff < 0 {
		totalDiff = -totalDiff
	}
	return maxDiff <= durTolerance || totalDiff <= 2*durTolerance
}

func compact(items []string) []string {
	return slices.DeleteFunc(items, func(s string) bool { return s == "" })
}
