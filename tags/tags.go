// Package tags wraps taglib with normalised tag keys.
package tags

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sentriz/audiotags"
)

var ErrWrite = errors.New("error writing tags")

const (
	Album        = "album"
	AlbumArtist  = "albumartist"
	Date         = "date"
	Genre        = "genre"
	Title        = "title"
	Artist       = "artist"
	TrackNumber  = "tracknumber"
	DiscNumber   = "discnumber"
	Compilation  = "compilation"
	CatalogueNum = "catalognumber"
	Label        = "label"
	Comment      = "comment"
)

// tag keys as written by other programs, folded into ours on read
var alternatives = map[string]string{
	"album_artist": AlbumArtist,
	"year":         Date,
	"track":        TrackNumber,
	"trackc":       TrackNumber,
	"catalognum":   CatalogueNum,
	"organization": Label,
	"description":  Comment,
}

var knownTags = map[string]struct{}{
	Album: {}, AlbumArtist: {}, Date: {}, Genre: {}, Title: {}, Artist: {},
	TrackNumber: {}, DiscNumber: {}, Compilation: {}, CatalogueNum: {},
	Label: {}, Comment: {},
}

// Required is the set of fields every file must carry before it can be filed
// into the library.
var Required = []string{Album, Artist, Date, Genre, Title, TrackNumber}

func CanRead(absPath string) bool {
	switch ext := strings.ToLower(filepath.Ext(absPath)); ext {
	case ".mp3", ".flac", ".aac", ".m4a", ".m4b", ".ogg", ".opus", ".wma", ".wav", ".wv":
		return true
	}
	return false
}

type File struct {
	raw            map[string][]string
	properties     *audiotags.AudioProperties
	propertiesOnce sync.Once
	file           *audiotags.File
	path           string
}

func Read(path string) (*File, error) {
	f, err := audiotags.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	raw := f.ReadTags()
	normalise(raw, alternatives)

	return &File{raw: raw, file: f, path: path}, nil
}

func (f *File) initProperties() {
	f.propertiesOnce.Do(func() {
		f.properties = f.file.ReadAudioProperties()
	})
}

func (f *File) Read(t string) string        { return first(f.raw[t]) }
func (f *File) ReadMulti(t string) []string { return f.raw[t] }
func (f *File) ReadNum(t string) int        { return anyNum(first(f.raw[t])) }

func (f *File) ReadAll(fn func(k string, vs []string) bool) {
	keys := make([]string, 0, len(f.raw))
	for k := range f.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn(k, f.raw[k]) {
			break
		}
	}
}

// MissingRequired lists the required fields the file doesn't carry yet.
func (f *File) MissingRequired() []string {
	var missing []string
	for _, t := range Required {
		if f.Read(t) == "" {
			missing = append(missing, t)
		}
	}
	return missing
}

func (f *File) Write(t string, v ...string) {
	v = deleteZero(v)
	if len(v) == 0 {
		delete(f.raw, t)
		return
	}
	f.raw[t] = v
}
func (f *File) WriteNum(t string, v int) { f.Write(t, intStr(v)) }

func (f *File) Clear(t string) { delete(f.raw, t) }
func (f *File) ClearAll()      { clear(f.raw) }
func (f *File) ClearUnknown() {
	for k := range f.raw {
		if _, ok := knownTags[k]; !ok {
			delete(f.raw, k)
		}
	}
}

func (f *File) Length() time.Duration {
	f.initProperties()
	return time.Duration(f.properties.LengthMs) * time.Millisecond
}
func (f *File) Bitrate() int     { f.initProperties(); return f.properties.Bitrate }
func (f *File) SampleRate() int  { f.initProperties(); return f.properties.Samplerate }
func (f *File) NumChannels() int { f.initProperties(); return f.properties.Channels }

func (f *File) Save() error {
	if !f.file.WriteTags(f.raw) {
		return ErrWrite
	}
	return nil
}

func (f *File) Close() {
	f.file.Close()
}

func (f *File) Path() string {
	return f.path
}

// Update applies fn to the file's tags and saves, skipping the filesystem
// write when nothing changed. Changes are logged at debug level.
func (f *File) Update(fn func(f *File)) error {
	before := maps.Clone(f.raw)
	fn(f)

	// try avoid filesystem writes if we can
	if maps.EqualFunc(before, f.raw, slices.Equal) {
		return nil
	}

	if l := slog.Default(); l.Enabled(context.Background(), slog.LevelDebug) {
		pathBase := filepath.Base(f.path)
		for k := range f.raw {
			if before, after := before[k], f.raw[k]; !slices.Equal(before, after) {
				l.Debug("tag change", "file", pathBase, "key", k, "from", before, "to", after)
			}
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

var numExpr = regexp.MustCompile(`\d+`)

func anyNum(in string) int {
	match := numExpr.FindString(in)
	i, _ := strconv.Atoi(match)
	return i
}

func normalise(raw map[string][]string, alternatives map[string]string) {
	for kbad, kgood := range alternatives {
		if _, ok := raw[kgood]; ok {
			continue
		}
		if v, ok := raw[kbad]; ok {
			raw[kgood] = v
			delete(raw, kbad)
		}
	}
}

func deleteZero[T comparable](elms []T) []T {
	var zero T
	return slices.DeleteFunc(elms, func(t T) bool { return t == zero })
}
