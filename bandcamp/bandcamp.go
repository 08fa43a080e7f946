// Package bandcamp scrapes label release pages, since the RSS feeds were
// discontinued.
package bandcamp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"go.dita.xyz/dita/clientutil"
)

var ErrNoReleaseDate = errors.New("no release date on page")

var (
	selectGridItem = cascadia.MustCompile(`li.music-grid-item`)
	selectAnchor   = cascadia.MustCompile(`a`)
	selectCredits  = cascadia.MustCompile(`div.tralbum-credits`)
)

type Album struct {
	URL      string
	Released time.Time
}

type Client struct {
	// BaseURL overrides the usual https://<label>.bandcamp.com, for tests.
	BaseURL   string
	RateLimit time.Duration

	initOnce   sync.Once
	HTTPClient *http.Client
}

func (c *Client) labelURL(label string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://%s.bandcamp.com", label)
}

func (c *Client) init() {
	c.initOnce.Do(func() {
		c.HTTPClient = clientutil.Wrap(c.HTTPClient, clientutil.Chain(
			clientutil.WithRateLimit(c.RateLimit),
		))
	})
}

func (c *Client) page(ctx context.Context, url string) (*html.Node, error) {
	c.init()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("req page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("req page: status %d", resp.StatusCode)
	}
	node, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return node, nil
}

// LabelAlbums lists albums on the first page of a label's music grid that
// were released within maxAge. The grid is sorted newest first, so the scan
// stops at the first album older than that.
func (c *Client) LabelAlbums(ctx context.Context, label string, maxAge time.Duration) ([]Album, error) {
	node, err := c.page(ctx, c.labelURL(label)+"/music")
	if err != nil {
		return nil, fmt.Errorf("label %s: %w", label, err)
	}

	var albums []Album
	for _, url := range gridAlbumURLs(node, c.labelURL(label)) {
		released, err := c.ReleaseDate(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("album %s: %w", url, err)
		}
		age := time.Since(released)
		if age < 0 || age > maxAge {
			break
		}
		albums = append(albums, Album{URL: url, Released: released})
	}
	return albums, nil
}

// ReleaseDate fetches an album page and parses the release date from its
// credits block.
func (c *Client) ReleaseDate(ctx context.Context, albumURL string) (time.Time, error) {
	node, err := c.page(ctx, albumURL)
	if err != nil {
		return time.Time{}, err
	}
	return parseReleaseDate(node)
}

func gridAlbumURLs(node *html.Node, baseURL string) []string {
	var urls []string
	for _, item := range cascadia.QueryAll(node, selectGridItem) {
		anchor := cascadia.Query(item, selectAnchor)
		if anchor == nil {
			continue
		}
		href := attr(anchor, "href")
		if href == "" {
			continue
		}
		url := href
		if !strings.HasPrefix(href, "https") {
			url = baseURL + href
		}
		if !strings.Contains(url, "/album/") {
			continue
		}
		url, _, _ = strings.Cut(url, "?")
		urls = append(urls, url)
	}
	return urls
}

// credit lines are always of the form "release[ds] July 29, 2022"
func parseReleaseDate(node *html.Node) (time.Time, error) {
	credits := cascadia.Query(node, selectCredits)
	if credits == nil {
		return time.Time{}, ErrNoReleaseDate
	}

	var text strings.Builder
	iterText(credits, func(s string) {
		text.WriteString(s + "\n")
	})
	for _, line := range strings.Split(text.String(), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "release") {
			continue
		}
		_, date, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		t, err := time.Parse("January 2, 2006", strings.TrimSpace(date))
		if err != nil {
			return time.Time{}, fmt.Errorf("parse release date %q: %w", date, err)
		}
		return t, nil
	}
	return time.Time{}, ErrNoReleaseDate
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func iterText(n *html.Node, f func(string)) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		f(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		iterText(c, f)
	}
}
