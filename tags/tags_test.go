package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanRead(t *testing.T) {
	t.Parallel()

	assert.True(t, CanRead("/m/a/01 title.flac"))
	assert.True(t, CanRead("/m/a/01 title.MP3"))
	assert.True(t, CanRead("/m/a/01 title.opus"))
	assert.False(t, CanRead("/m/a/cover.jpg"))
	assert.False(t, CanRead("/m/a/notes.txt"))
	assert.False(t, CanRead("/m/a/noext"))
}

func TestNormalise(t *testing.T) {
	t.Parallel()

	raw := map[string][]string{
		"year":  {"1981"},
		"track": {"02"},
		"title": {"Red Barchetta"},
	}
	normalise(raw, alternatives)
	assert.Equal(t, map[string][]string{
		Date:        {"1981"},
		TrackNumber: {"02"},
		Title:       {"Red Barchetta"},
	}, raw)

	// the canonical key wins over its alternative
	raw = map[string][]string{
		"date": {"1981"},
		"year": {"1999"},
	}
	normalise(raw, alternatives)
	assert.Equal(t, []string{"1981"}, raw[Date])
}

func TestReadWrite(t *testing.T) {
	t.Parallel()

	f := &File{raw: map[string][]string{}}
	f.Write(Artist, "Rush")
	f.WriteNum(TrackNumber, 2)
	assert.Equal(t, "Rush", f.Read(Artist))
	assert.Equal(t, 2, f.ReadNum(TrackNumber))

	// writing nothing clears
	f.Write(Artist)
	assert.Equal(t, "", f.Read(Artist))
	f.WriteNum(TrackNumber, 0)
	assert.Equal(t, 0, f.ReadNum(TrackNumber))
}

func TestReadNum(t *testing.T) {
	t.Parallel()

	f := &File{raw: map[string][]string{TrackNumber: {"02/12"}}}
	assert.Equal(t, 2, f.ReadNum(TrackNumber))

	f = &File{raw: map[string][]string{TrackNumber: {"no number"}}}
	assert.Equal(t, 0, f.ReadNum(TrackNumber))
}

func TestMissingRequired(t *testing.T) {
	t.Parallel()

	f := &File{raw: map[string][]string{
		Album:       {"Moving Pictures"},
		Artist:      {"Rush"},
		Date:        {"1981"},
		Genre:       {"Progressive Rock"},
		Title:       {"Red Barchetta"},
		TrackNumber: {"02"},
	}}
	assert.Empty(t, f.MissingRequired())

	f.Clear(Genre)
	f.Clear(Date)
	assert.Equal(t, []string{Date, Genre}, f.MissingRequired())
}

func TestClearUnknown(t *testing.T) {
	t.Parallel()

	f := &File{raw: map[string][]string{
		Album:            {"x"},
		"some_weird_tag": {"y"},
	}}
	f.ClearUnknown()
	assert.Equal(t, map[string][]string{Album: {"x"}}, f.raw)
}

func TestReadAllSorted(t *testing.T) {
	t.Parallel()

	f := &File{raw: map[string][]string{
		Title:  {"t"},
		Album:  {"al"},
		Artist: {"ar"},
	}}
	var keys []string
	f.ReadAll(func(k string, vs []string) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []string{Album, Artist, Title}, keys)
}
