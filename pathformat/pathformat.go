// Package pathformat renders and manipulates destination paths of the form
//
//	<root>/<artist>/<album> (<year>)/<tracknum> <title>.<ext>
package pathformat

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"go.dita.xyz/dita/fileutil"
	"go.dita.xyz/dita/release"
)

var (
	ErrInvalidFormat   = errors.New("invalid format")
	ErrAmbiguousFormat = errors.New("ambiguous format")
	ErrBadData         = errors.New("bad data")
)

type Data struct {
	Release  release.Release
	Track    release.Track
	TrackNum int
	Ext      string
}

type Format struct {
	root string
	tmpl *texttemplate.Template
}

// Parse parses and sanity checks a path format string. The format must be
// absolute, and must produce paths which differ per release and per track.
func (f *Format) Parse(str string) error {
	if strings.TrimSpace(str) == "" || !filepath.IsAbs(str) {
		return fmt.Errorf("%w: format should be an absolute path", ErrInvalidFormat)
	}
	tmpl, err := texttemplate.New("format").Funcs(funcMap).Parse(str)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	next := Format{tmpl: tmpl}

	a, err := next.Execute(testData(1))
	if err != nil {
		return fmt.Errorf("%w: execute with test data: %w", ErrBadData, err)
	}
	b, err := next.Execute(testData(2))
	if err != nil {
		return fmt.Errorf("%w: execute with test data: %w", ErrBadData, err)
	}
	if a == b {
		return fmt.Errorf("%w: results should differ per track", ErrAmbiguousFormat)
	}
	if strings.Contains(a, "//") || strings.HasSuffix(a, "/") {
		return fmt.Errorf("%w: empty path segment", ErrBadData)
	}

	// root is whatever comes before the first template action
	root, _, _ := strings.Cut(str, "{{")
	next.root = filepath.Dir(root)

	*f = next
	return nil
}

func (f *Format) Execute(data Data) (string, error) {
	if f.tmpl == nil {
		return "", fmt.Errorf("not initialised")
	}
	var buff strings.Builder
	if err := f.tmpl.Execute(&buff, data); err != nil {
		return "", err
	}
	return buff.String(), nil
}

func (f *Format) Root() string {
	return f.root
}

var funcMap = texttemplate.FuncMap{
	"join":     func(delim string, items []string) string { return strings.Join(items, delim) },
	"pad0":     func(amount, n int) string { return fmt.Sprintf("%0*d", amount, n) },
	"safepath": fileutil.SafePath,
	"year":     func(date string) string { return release.Year(date) },
}

func testData(n int) Data {
	return Data{
		Release: release.Release{
			Album:  "Album",
			Artist: "Artist",
			Date:   "2018",
		},
		Track: release.Track{
			Number: fmt.Sprintf("%02d", n),
			Title:  fmt.Sprintf("Track %d", n),
			Artist: "Artist",
		},
		TrackNum: n,
		Ext:      ".flac",
	}
}
