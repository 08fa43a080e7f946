package discogs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

type CollectionRelease struct {
	ID        int     `json:"id"`
	Rating    int     `json:"rating"`
	DateAdded AnyTime `json:"date_added"`
	BasicInfo struct {
		ID      int      `json:"id"`
		Title   string   `json:"title"`
		Year    int      `json:"year"`
		Artists []Artist `json:"artists"`
		Formats []Format `json:"formats"`
	} `json:"basic_information"`
}

type collectionPage struct {
	Pagination Pagination          `json:"pagination"`
	Releases   []CollectionRelease `json:"releases"`
}

// CollectionReleases walks every page of the user's collection. Sort options
// are the API's, e.g. "added" with order "desc".
func (c *Client) CollectionReleases(ctx context.Context, sort, order string) ([]CollectionRelease, error) {
	if c.Username == "" {
		return nil, fmt.Errorf("username not set")
	}
	urlPath := joinPath("users", c.Username, "collection/folders/0/releases")

	var releases []CollectionRelease
	for page := 1; ; page++ {
		urlV := url.Values{}
		urlV.Set("page", strconv.Itoa(page))
		urlV.Set("per_page", "100")
		if sort != "" {
			urlV.Set("sort", sort)
		}
		if order != "" {
			urlV.Set("sort_order", order)
		}

		var resp collectionPage
		if err := c.get(ctx, urlPath, urlV, &resp); err != nil {
			return nil, fmt.Errorf("request collection page %d: %w", page, err)
		}
		releases = append(releases, resp.Releases...)
		if page >= resp.Pagination.Pages {
			break
		}
	}
	return releases, nil
}

type WantlistItem struct {
	ID        int     `json:"id"`
	DateAdded AnyTime `json:"date_added"`
	BasicInfo struct {
		ID      int      `json:"id"`
		Title   string   `json:"title"`
		Year    int      `json:"year"`
		Artists []Artist `json:"artists"`
	} `json:"basic_information"`
}

type wantlistPage struct {
	Pagination Pagination     `json:"pagination"`
	Wants      []WantlistItem `json:"wants"`
}

func (c *Client) Wantlist(ctx context.Context) ([]WantlistItem, error) {
	if c.Username == "" {
		return nil, fmt.Errorf("username not set")
	}
	urlPath := joinPath("users", c.Username, "wants")

	var wants []WantlistItem
	for page := 1; ; page++ {
		urlV := url.Values{}
		urlV.Set("page", strconv.Itoa(page))
		urlV.Set("per_page", "100")

		var resp wantlistPage
		if err := c.get(ctx, urlPath, urlV, &resp); err != nil {
			return nil, fmt.Errorf("request wantlist page %d: %w", page, err)
		}
		wants = append(wants, resp.Wants...)
		if page >= resp.Pagination.Pages {
			break
		}
	}
	return wants, nil
}
