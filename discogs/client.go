package discogs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.dita.xyz/dita/clientutil"
)

var ErrNoResults = fmt.Errorf("no results")

type Client struct {
	BaseURL   string
	Token     string
	Username  string
	UserAgent string
	RateLimit time.Duration

	initOnce   sync.Once
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: apiBase + "/",
		// https://www.discogs.com/developers#page:home,header:home-rate-limiting
		RateLimit: 1100 * time.Millisecond,
	}
}

func (c *Client) request(ctx context.Context, r *http.Request, dest any) error {
	c.initOnce.Do(func() {
		var auth string
		if c.Token != "" {
			auth = "Discogs token=" + c.Token
		}
		c.HTTPClient = clientutil.Wrap(c.HTTPClient, clientutil.Chain(
			clientutil.WithCache(),
			clientutil.WithUserAgent(c.UserAgent),
			clientutil.WithAuthHeader(auth),
			clientutil.WithRateLimit(c.RateLimit),
			clientutil.WithRetryTooMany(time.Minute, 2),
			clientutil.WithLogging(slog.Default()),
		))
	})

	r = r.WithContext(ctx)
	resp, err := c.HTTPClient.Do(r)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("discogs returned non 2xx: %w", StatusError(resp.StatusCode))
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, urlPath string, query url.Values, dest any) error {
	u, err := url.Parse(joinPath(c.BaseURL, urlPath))
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	return c.request(ctx, req, dest)
}

func (c *Client) send(ctx context.Context, method, urlPath string, body, dest any) error {
	var buff bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buff).Encode(body); err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
	}
	req, _ := http.NewRequestWithContext(ctx, method, joinPath(c.BaseURL, urlPath), &buff)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.request(ctx, req, dest)
}

func (c *Client) GetRelease(ctx context.Context, id int) (*Release, error) {
	var release Release
	if err := c.get(ctx, joinPath("releases", strconv.Itoa(id)), nil, &release); err != nil {
		return nil, fmt.Errorf("request release %d: %w", id, err)
	}
	return &release, nil
}

func (c *Client) GetMaster(ctx context.Context, id int) (*Master, error) {
	var master Master
	if err := c.get(ctx, joinPath("masters", strconv.Itoa(id)), nil, &master); err != nil {
		return nil, fmt.Errorf("request master %d: %w", id, err)
	}
	return &master, nil
}

type SearchQuery struct {
	Artist  string
	Release string
	Year    string
	Label   string
	CatNum  string
}

// SearchRelease finds the best matching release for a query, preferring the
// primary (main) release of a master so that dates and credits are the most
// tractable.
func (c *Client) SearchRelease(ctx context.Context, q SearchQuery) (*Release, error) {
	urlV := url.Values{}
	if q.Artist != "" {
		urlV.Set("artist", q.Artist)
	}
	if q.Release != "" {
		urlV.Set("release_title", q.Release)
	}
	if q.Year != "" {
		urlV.Set("year", q.Year)
	}
	if q.Label != "" {
		urlV.Set("label", q.Label)
	}
	if q.CatNum != "" {
		urlV.Set("catno", q.CatNum)
	}
	if len(urlV) == 0 {
		return nil, ErrNoResults
	}

	var sr struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.get(ctx, "database/search", urlV, &sr); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(sr.Results) == 0 {
		return nil, ErrNoResults
	}

	// prefer a master's main release over whichever pressing matched
	for _, res := range sr.Results {
		if res.Type != "master" {
			continue
		}
		master, err := c.GetMaster(ctx, res.ID)
		if err != nil {
			return nil, fmt.Errorf("get master %d: %w", res.ID, err)
		}
		return c.GetRelease(ctx, master.MainRelease)
	}
	for _, res := range sr.Results {
		if res.MasterID > 0 {
			master, err := c.GetMaster(ctx, res.MasterID)
			if err != nil {
				return nil, fmt.Errorf("get master %d: %w", res.MasterID, err)
			}
			return c.GetRelease(ctx, master.MainRelease)
		}
	}
	return c.GetRelease(ctx, sr.Results[0].ID)
}

// MasterYear resolves the original year of a release via its master, falling
// back to the release's own year. A zero result means Discogs has no date.
func (c *Client) MasterYear(ctx context.Context, release *Release) (int, error) {
	if release.MasterID == 0 {
		return release.Year, nil
	}
	master, err := c.GetMaster(ctx, release.MasterID)
	if err != nil {
		return 0, fmt.Errorf("get master: %w", err)
	}
	if master.Year == 0 {
		return release.Year, nil
	}
	return master.Year, nil
}

func joinPath(base string, p ...string) string {
	r, _ := url.JoinPath(base, p...)
	return r
}
