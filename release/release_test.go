package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.dita.xyz/dita/discogs"
)

func TestTracklistSubtracks(t *testing.T) {
	t.Parallel()

	rel := &discogs.Release{Tracklist: []discogs.Track{
		{Position: "", Type: "heading", Title: "Side A"},
		{
			Position: "1", Type: "index", Title: "Die Kunst Der Fuge, BWV 1080",
			SubTracks: []discogs.Track{
				{Position: "1", Title: "Contrapunctus 1", Duration: "2:57"},
				{Position: "2", Title: "Contrapunctus 2", Duration: "3:10"},
			},
		},
		{Position: "2", Type: "track", Title: "Encore", Duration: "4:01"},
		{Position: "Video 1", Type: "track", Title: "Interview"},
		{Position: "3", Type: "track", Title: "   "},
	}}

	tracks := Tracklist(rel)
	require.Len(t, tracks, 3)
	assert.Equal(t, "Die Kunst Der Fuge, BWV 1080 - Contrapunctus 1", tracks[0].Title)
	assert.Equal(t, "2:57", tracks[0].Duration)
	assert.Equal(t, "Die Kunst Der Fuge, BWV 1080 - Contrapunctus 2", tracks[1].Title)
	assert.Equal(t, "Encore", tracks[2].Title)
}

func TestTracklistDoubled(t *testing.T) {
	t.Parallel()

	// cassettes list the same programme once per side
	rel := &discogs.Release{Tracklist: []discogs.Track{
		{Position: "A1", Type: "track", Title: "One"},
		{Position: "A2", Type: "track", Title: "Two"},
		{Position: "B1", Type: "track", Title: "One"},
		{Position: "B2", Type: "track", Title: "Two"},
	}}
	tracks := Tracklist(rel)
	require.Len(t, tracks, 2)
	assert.Equal(t, "One", tracks[0].Title)
	assert.Equal(t, "Two", tracks[1].Title)

	// same titles but not mirrored halves stay intact
	rel = &discogs.Release{Tracklist: []discogs.Track{
		{Position: "A1", Type: "track", Title: "One"},
		{Position: "A2", Type: "track", Title: "One"},
		{Position: "B1", Type: "track", Title: "Two"},
		{Position: "B2", Type: "track", Title: "Two"},
	}}
	assert.Len(t, Tracklist(rel), 4)
}

func TestArtistsSplitRelease(t *testing.T) {
	t.Parallel()

	rel := &discogs.Release{
		Genres: []string{"Rock"},
		Tracklist: []discogs.Track{
			{Position: "1", Type: "track", Title: "a", Artists: []discogs.Artist{{Name: "Artist1"}}},
			{Position: "2", Type: "track", Title: "b", Artists: []discogs.Artist{{Name: "Artist2"}}},
		},
	}
	assert.Equal(t, []string{"Artist1", "Artist2"}, Artists(rel, 2))
}

func TestArtistsClassicalTrackCredits(t *testing.T) {
	t.Parallel()

	rel := &discogs.Release{
		Genres: []string{"Classical"},
		Tracklist: []discogs.Track{
			{Position: "1", Type: "track", Title: "a", ExtraArtists: []discogs.Artist{{Name: "Bach", Role: "Composed By"}}},
			{Position: "2", Type: "track", Title: "b", ExtraArtists: []discogs.Artist{{Name: "Handel", Role: "Composed By"}}},
		},
	}
	assert.Equal(t, []string{"Bach", "Handel"}, Artists(rel, 2))
}

func TestArtistsAlbumCreditRanges(t *testing.T) {
	t.Parallel()

	rel := &discogs.Release{
		Genres: []string{"Classical"},
		ExtraArtists: []discogs.Artist{
			{Name: "Bach", Role: "Composed By", Tracks: "1 to 3"},
			{Name: "Handel", Role: "Composed By", Tracks: "4-5"},
		},
		Tracklist: []discogs.Track{
			{Position: "1", Type: "track", Title: "a"},
			{Position: "2", Type: "track", Title: "b"},
			{Position: "3", Type: "track", Title: "c"},
			{Position: "4", Type: "track", Title: "d"},
			{Position: "5", Type: "track", Title: "e"},
		},
	}
	assert.Equal(t, []string{"Bach", "Bach", "Bach", "Handel", "Handel"}, Artists(rel, 5))
}

func TestArtistsSortFallback(t *testing.T) {
	t.Parallel()

	rel := &discogs.Release{
		Genres:      []string{"Electronic"},
		Artists:     []discogs.Artist{{Name: "Artist1"}, {Name: "Artist2"}, {Name: "Artist3"}},
		ArtistsSort: "Artist1 & Artist2 / Artist3",
		Tracklist: []discogs.Track{
			{Position: "1", Type: "track", Title: "a"},
			{Position: "2", Type: "track", Title: "b"},
		},
	}
	assert.Equal(t, []string{"Artist1, Artist2, Artist3"}, Artists(rel, 2))
}

func TestFromDiscogs(t *testing.T) {
	t.Parallel()

	rel := &discogs.Release{
		ID:      123,
		Title:   "songs from the big chair",
		Year:    1999,
		Genres:  []string{"Rock"},
		Styles:  []string{"Synth-pop"},
		Artists: []discogs.Artist{{Name: "Tears For Fears"}},
		Tracklist: []discogs.Track{
			{Position: "1", Type: "track", Title: "Shout", Duration: "6:32"},
			{Position: "2", Type: "track", Title: "everybody wants to rule the world", Duration: "4:11"},
		},
	}

	got, err := FromDiscogs(rel, 1985)
	require.NoError(t, err)
	assert.Equal(t, 123, got.DiscogsID)
	assert.Equal(t, "Songs From the Big Chair", got.Album)
	assert.Equal(t, "Tears for Fears", got.Artist)
	assert.Equal(t, "1985", got.Date)
	assert.Equal(t, "Synth-pop", got.Genre)
	assert.False(t, got.Compilation)
	require.Len(t, got.Tracks, 2)
	assert.Equal(t, Track{Number: "01", Title: "Shout", Artist: "Tears for Fears", Duration: 392}, got.Tracks[0])
	assert.Equal(t, Track{Number: "02", Title: "Everybody Wants to Rule the World", Artist: "Tears for Fears", Duration: 251}, got.Tracks[1])
}

func TestFromDiscogsCompilation(t *testing.T) {
	t.Parallel()

	rel := &discogs.Release{
		ID:     9,
		Title:  "A Split",
		Year:   2010,
		Genres: []string{"Electronic"},
		Tracklist: []discogs.Track{
			{Position: "1", Type: "track", Title: "a", Artists: []discogs.Artist{{Name: "Beta"}}},
			{Position: "2", Type: "track", Title: "b", Artists: []discogs.Artist{{Name: "Alpha"}}},
		},
	}

	got, err := FromDiscogs(rel, 0)
	require.NoError(t, err)
	assert.True(t, got.Compilation)
	assert.Equal(t, "Alpha, Beta", got.Artist)
	assert.Equal(t, "Beta", got.Tracks[0].Artist)
	assert.Equal(t, "Alpha", got.Tracks[1].Artist)
	assert.Equal(t, "2010", got.Date)
}

func TestFromDiscogsClassicalPerformers(t *testing.T) {
	t.Parallel()

	rel := &discogs.Release{
		ID:     7,
		Title:  "Inventions & Sinfonias",
		Year:   2015,
		Genres: []string{"Classical"},
		Artists: []discogs.Artist{
			{Name: "Glenn Gould"},
		},
		Tracklist: []discogs.Track{
			{Position: "1", Type: "track", Title: "Invention 1", ExtraArtists: []discogs.Artist{{Name: "Bach", Role: "Composed By"}}},
		},
	}

	got, err := FromDiscogs(rel, 0)
	require.NoError(t, err)
	assert.Equal(t, "Bach", got.Artist)
	assert.Equal(t, "Inventions & Sinfonias [Glenn Gould]", got.Album)
}

func TestYear(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2018", Year("2018"))
	assert.Equal(t, "2018", Year("2018-06-15"))
	assert.Equal(t, "1983", Year("15 June 1983"))
	assert.Equal(t, "0", Year("0"))
}

func TestYearFromNotes(t *testing.T) {
	t.Parallel()

	year, ok := YearFromNotes("Recorded live in 1974.")
	assert.True(t, ok)
	assert.Equal(t, 1974, year)

	// one distinct year mentioned twice still counts
	year, ok = YearFromNotes("Recorded 1974, mixed 1974.")
	assert.True(t, ok)
	assert.Equal(t, 1974, year)

	_, ok = YearFromNotes("Recorded 1974, remastered 2004.")
	assert.False(t, ok)

	_, ok = YearFromNotes("no dates here")
	assert.False(t, ok)
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ParseDuration(""))
	assert.Equal(t, 0, ParseDuration("420"))
	assert.Equal(t, 260, ParseDuration("4:20"))
	assert.Equal(t, 3723, ParseDuration("1:02:03"))
	assert.Equal(t, 0, ParseDuration("a:b"))
}

func TestDurationsMatch(t *testing.T) {
	t.Parallel()

	assert.True(t, DurationsMatch([]int{200, 300}, []int{205, 295}))
	assert.False(t, DurationsMatch([]int{200, 300}, []int{0, 300}))
	assert.False(t, DurationsMatch([]int{0, 300}, []int{200, 300}))
	assert.False(t, DurationsMatch([]int{200}, []int{200, 300}))
	// large drift on one track, but totals agree
	assert.True(t, DurationsMatch([]int{200, 300}, []int{230, 280}))
	assert.False(t, DurationsMatch([]int{200, 300}, []int{260, 360}))
}

func TestIsClassical(t *testing.T) {
	t.Parallel()

	assert.True(t, IsClassical(&discogs.Release{Genres: []string{"Classical"}}))
	assert.True(t, IsClassical(&discogs.Release{Genres: []string{"Classical", "Electronic"}}))
	assert.True(t, IsClassical(&discogs.Release{Genres: []string{"Stage & Screen"}}))
	assert.False(t, IsClassical(&discogs.Release{Genres: []string{"Rock"}}))
	assert.False(t, IsClassical(&discogs.Release{Genres: []string{"Jazz", "Stage & Screen"}}))
}
