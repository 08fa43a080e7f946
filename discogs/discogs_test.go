package discogs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseIDFromURL(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		url string
		id  int
		ok  bool
	}{
		{"https://www.discogs.com/release/8910811-Body-Sculptures-A-Body-Turns-To-Eden", 8910811, true},
		{"https://www.discogs.com/master/144325", 144325, true},
		{"https://api.discogs.com/release/1234", 1234, true},
		{`'https://www.discogs.com/release/1234'`, 1234, true},
		{"https://www.discogs.com/sell/list", 0, false},
		{"not a url", 0, false},
	} {
		id, ok := ReleaseIDFromURL(tt.url)
		assert.Equal(t, tt.ok, ok, tt.url)
		assert.Equal(t, tt.id, id, tt.url)
	}
}

func TestWebURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://www.discogs.com/release/8910811", WebURL("https://api.discogs.com/releases/8910811"))
	assert.Equal(t, "https://www.discogs.com/master/144325", WebURL("https://api.discogs.com/masters/144325"))
	assert.Equal(t, "http://example.com", WebURL("http://example.com"))
}

func TestPrimaryImageURL(t *testing.T) {
	t.Parallel()

	release := &Release{Images: []Image{
		{Type: "secondary", URI: "http://example.com/2.jpg"},
		{Type: "primary", URI: "http://example.com/1.jpg"},
	}}
	assert.Equal(t, "http://example.com/1.jpg", release.PrimaryImageURL())

	release = &Release{Images: []Image{{Type: "secondary", URI: "http://example.com/2.jpg"}}}
	assert.Equal(t, "http://example.com/2.jpg", release.PrimaryImageURL())

	assert.Equal(t, "", (&Release{}).PrimaryImageURL())
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := NewClient()
	client.BaseURL = srv.URL + "/"
	client.RateLimit = 0
	client.Username = "someone"
	client.Token = "xyz"
	return client
}

func TestGetRelease(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/releases/123", r.URL.Path)
		require.Equal(t, "Discogs token=xyz", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Release{ID: 123, Title: "Chance Meetings", Year: 2001})
	}))

	release, err := client.GetRelease(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, 123, release.ID)
	assert.Equal(t, "Chance Meetings", release.Title)
	assert.Equal(t, 2001, release.Year)
}

func TestSearchReleasePrefersMaster(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/database/search":
			require.Equal(t, "Mariah", r.URL.Query().Get("artist"))
			require.Equal(t, "Utakata no Hibi", r.URL.Query().Get("release_title"))
			json.NewEncoder(w).Encode(map[string]any{
				"results": []SearchResult{
					{ID: 999, Type: "release", MasterID: 50},
					{ID: 50, Type: "master"},
				},
			})
		case "/masters/50":
			json.NewEncoder(w).Encode(Master{ID: 50, MainRelease: 777})
		case "/releases/777":
			json.NewEncoder(w).Encode(Release{ID: 777, Title: "Utakata no Hibi"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	release, err := client.SearchRelease(context.Background(), SearchQuery{Artist: "Mariah", Release: "Utakata no Hibi"})
	require.NoError(t, err)
	assert.Equal(t, 777, release.ID)
}

func TestSearchReleaseNoResults(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []SearchResult{}})
	}))

	_, err := client.SearchRelease(context.Background(), SearchQuery{Artist: "nobody"})
	require.ErrorIs(t, err, ErrNoResults)

	_, err = client.SearchRelease(context.Background(), SearchQuery{})
	require.ErrorIs(t, err, ErrNoResults)
}

func TestMasterYear(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/masters/50", r.URL.Path)
		json.NewEncoder(w).Encode(Master{ID: 50, Year: 1983})
	}))

	year, err := client.MasterYear(context.Background(), &Release{ID: 777, Year: 2008, MasterID: 50})
	require.NoError(t, err)
	assert.Equal(t, 1983, year)

	year, err = client.MasterYear(context.Background(), &Release{ID: 778, Year: 2008})
	require.NoError(t, err)
	assert.Equal(t, 2008, year)
}

func TestRatingRoundTrip(t *testing.T) {
	t.Parallel()

	var stored Rating
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/releases/123/rating/someone", r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&stored))
		case http.MethodGet:
			json.NewEncoder(w).Encode(stored)
		}
	}))

	require.NoError(t, client.PutRating(context.Background(), 123, 4))

	rating, err := client.GetRating(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, 4, rating)

	require.Error(t, client.PutRating(context.Background(), 123, 6))
	require.Error(t, client.PutRating(context.Background(), 123, 0))
}

func TestCollectionReleasesPaginated(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/someone/collection/folders/0/releases", r.URL.Path)
		page := r.URL.Query().Get("page")
		resp := collectionPage{Pagination: Pagination{Pages: 2}}
		switch page {
		case "1":
			resp.Pagination.Page = 1
			resp.Releases = []CollectionRelease{{ID: 1, Rating: 5}, {ID: 2, Rating: 3}}
		case "2":
			resp.Pagination.Page = 2
			resp.Releases = []CollectionRelease{{ID: 3, Rating: 4}}
		default:
			t.Errorf("unexpected page %q", page)
		}
		json.NewEncoder(w).Encode(resp)
	}))

	releases, err := client.CollectionReleases(context.Background(), "added", "desc")
	require.NoError(t, err)
	require.Len(t, releases, 3)
	assert.Equal(t, 5, releases[0].Rating)
	assert.Equal(t, 4, releases[2].Rating)
}

func TestWantlistPaginated(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/someone/wants", r.URL.Path)
		page := r.URL.Query().Get("page")
		resp := wantlistPage{Pagination: Pagination{Pages: 2}}
		switch page {
		case "1":
			resp.Pagination.Page = 1
			resp.Wants = []WantlistItem{{ID: 1}, {ID: 2}}
		case "2":
			resp.Pagination.Page = 2
			resp.Wants = []WantlistItem{{ID: 3}}
		default:
			t.Errorf("unexpected page %q", page)
		}
		json.NewEncoder(w).Encode(resp)
	}))

	wants, err := client.Wantlist(context.Background())
	require.NoError(t, err)
	require.Len(t, wants, 3)
	assert.Equal(t, 1, wants[0].ID)
	assert.Equal(t, 3, wants[2].ID)

	client.Username = ""
	_, err = client.Wantlist(context.Background())
	require.Error(t, err)
}
