// Package discogs is a small client for the Discogs API.
//
// https://www.discogs.com/developers
package discogs

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type Artist struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ANV         string `json:"anv"`
	Join        string `json:"join"`
	Role        string `json:"role"`
	Tracks      string `json:"tracks"`
	ResourceURL string `json:"resource_url"`
}

type Track struct {
	Position     string   `json:"position"`
	Type         string   `json:"type_"`
	Title        string   `json:"title"`
	Duration     string   `json:"duration"`
	Artists      []Artist `json:"artists"`
	ExtraArtists []Artist `json:"extraartists"`
	SubTracks    []Track  `json:"sub_tracks"`
}

type Format struct {
	Name         string   `json:"name"`
	Quantity     string   `json:"qty"`
	Descriptions []string `json:"descriptions"`
}

type Label struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	CatalogueNumber string `json:"catno"`
}

type Image struct {
	Type   string `json:"type"` // "primary" or "secondary"
	URI    string `json:"uri"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Release struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Year         int      `json:"year"`
	Country      string   `json:"country"`
	Notes        string   `json:"notes"`
	Genres       []string `json:"genres"`
	Styles       []string `json:"styles"`
	Artists      []Artist `json:"artists"`
	ArtistsSort  string   `json:"artists_sort"`
	ExtraArtists []Artist `json:"extraartists"`
	Tracklist    []Track  `json:"tracklist"`
	Formats      []Format `json:"formats"`
	Labels       []Label  `json:"labels"`
	Images       []Image  `json:"images"`
	MasterID     int      `json:"master_id"`
	MasterURL    string   `json:"master_url"`
	ResourceURL  string   `json:"resource_url"`
	URI          string   `json:"uri"`
	DateAdded    AnyTime  `json:"date_added"`
	Community    struct {
		Have   int `json:"have"`
		Want   int `json:"want"`
		Rating struct {
			Count   int     `json:"count"`
			Average float64 `json:"average"`
		} `json:"rating"`
	} `json:"community"`
}

type Master struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	MainRelease int    `json:"main_release"`
}

type SearchResult struct {
	ID          int      `json:"id"`
	Type        string   `json:"type"` // "release" or "master"
	Title       string   `json:"title"`
	Year        string   `json:"year"`
	MasterID    int      `json:"master_id"`
	MasterURL   string   `json:"master_url"`
	ResourceURL string   `json:"resource_url"`
	Genre       []string `json:"genre"`
	Format      []string `json:"format"`
}

func (r *Release) PrimaryImageURL() string {
	for _, img := range r.Images {
		if img.Type == "primary" {
			return img.URI
		}
	}
	if len(r.Images) > 0 {
		return r.Images[0].URI
	}
	return ""
}

const (
	apiBase = "https://api.discogs.com"
	webBase = "https://www.discogs.com"
)

var webURLExpr = regexp.MustCompile(`discogs\.com/(?:.*/)?(release|master)/(\d+)`)

// ReleaseIDFromURL extracts the numeric ID from a Discogs web or API URL.
// Web URLs are almost always of the form
// https://www.discogs.com/[type]/[id]-[text].
func ReleaseIDFromURL(rawURL string) (int, bool) {
	rawURL = strings.Trim(rawURL, `'"`) // some programs quote their output
	m := webURLExpr.FindStringSubmatch(rawURL)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return id, true
}

// WebURL converts an API resource URL into the corresponding browsable one,
// eg https://api.discogs.com/releases/123 -> https://www.discogs.com/release/123.
func WebURL(apiURL string) string {
	m := regexp.MustCompile(`/(releases|masters)/(\d+)`).FindStringSubmatch(apiURL)
	if m == nil {
		return apiURL
	}
	return fmt.Sprintf("%s/%s/%s", webBase, strings.TrimSuffix(m[1], "s"), m[2])
}

type StatusError int

func (se StatusError) Error() string {
	return strconv.Itoa(int(se))
}

type AnyTime struct {
	time.Time
}

func (at *AnyTime) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		return nil
	}
	var err error
	at.Time, err = dateparse.ParseAny(str)
	if err != nil {
		return fmt.Errorf("parse any: %w", err)
	}
	return nil
}
