package bandcamp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gridPage = `<!doctype html>
<html><body>
<ol>
<li class="music-grid-item square first-four featured">
  <a href="/album/new-one"><img></a>
</li>
<li class="music-grid-item square">
  <a href="https://other.example.com/merch/shirt"><img></a>
</li>
<li class="music-grid-item square">
  <a href="/track/just-a-track"><img></a>
</li>
<li class="music-grid-item square">
  <a href="/album/old-one?from=grid"><img></a>
</li>
</ol>
</body></html>`

func albumPage(released string) string {
	return fmt.Sprintf(`<!doctype html>
<html><body>
<div class="tralbum-credits">
	released %s

	all rights reserved
</div>
</body></html>`, released)
}

func TestLabelAlbums(t *testing.T) {
	t.Parallel()

	newDate := time.Now().AddDate(0, 0, -2).Format("January 2, 2006")

	mux := http.NewServeMux()
	mux.HandleFunc("/music", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gridPage)
	})
	mux.HandleFunc("/album/new-one", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, albumPage(newDate))
	})
	mux.HandleFunc("/album/old-one", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, albumPage("July 29, 2022"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := &Client{BaseURL: srv.URL}

	// the merch item and the bare track are skipped, and the years-old
	// album ends the scan
	albums, err := client.LabelAlbums(context.Background(), "somelabel", 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, srv.URL+"/album/new-one", albums[0].URL)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -2), albums[0].Released, 24*time.Hour)
}

func TestReleaseDate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, albumPage("July 29, 2022"))
	}))
	t.Cleanup(srv.Close)

	client := &Client{BaseURL: srv.URL}
	released, err := client.ReleaseDate(context.Background(), srv.URL+"/album/x")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, time.July, 29, 0, 0, 0, 0, time.UTC), released)
}

func TestReleaseDateMissing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>nothing here</p></body></html>")
	}))
	t.Cleanup(srv.Close)

	client := &Client{BaseURL: srv.URL}
	_, err := client.ReleaseDate(context.Background(), srv.URL+"/album/x")
	require.ErrorIs(t, err, ErrNoReleaseDate)
}
