package coverparse_test

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.dita.xyz/dita/coverparse"
)

func TestSelection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		covers   []string
		expected string
	}{
		{
			name:     "empty",
			covers:   nil,
			expected: "",
		},
		{
			name:     "no keywords",
			covers:   []string{"Cover1.jpg", "cover2.png"},
			expected: "Cover1.jpg",
		},
		{
			name:     "front beats back",
			covers:   []string{"back.jpg", "front.jpg"},
			expected: "front.jpg",
		},
		{
			name:     "folder beats scan",
			covers:   []string{"scan 1.jpg", "folder.jpg"},
			expected: "folder.jpg",
		},
		{
			name:     "lower scan number wins",
			covers:   []string{"scans/10.jpg", "scans/2.jpg"},
			expected: "scans/2.jpg",
		},
		{
			name:     "png beats jpg when otherwise equal",
			covers:   []string{"cover.jpg", "cover.png"},
			expected: "cover.png",
		},
		{
			name:     "nested cover beats stray image",
			covers:   []string{"artwork/IMG_4501.jpeg", "artwork/cover.jpeg"},
			expected: "artwork/cover.jpeg",
		},
		{
			name:     "back cover beats stray image",
			covers:   []string{"IMG_4501.jpeg", "back.jpeg"},
			expected: "back.jpeg",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// input order shouldn't matter
			covers := slices.Clone(tc.covers)
			rand.Shuffle(len(covers), func(i, j int) {
				covers[i], covers[j] = covers[j], covers[i]
			})

			var best coverparse.Front
			for _, c := range covers {
				best.Compare(c)
			}
			assert.Equal(t, tc.expected, string(best))
		})
	}
}

func TestIsCover(t *testing.T) {
	t.Parallel()

	assert.True(t, coverparse.IsCover("folder.JPG"))
	assert.True(t, coverparse.IsCover("a/b/cover.png"))
	assert.False(t, coverparse.IsCover("01 track.flac"))
	assert.False(t, coverparse.IsCover("rip.log"))
}

func TestBestInDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"back.jpg", "cover.jpg", "01 track.flac"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	assert.Equal(t, filepath.Join(dir, "cover.jpg"), coverparse.BestInDir(dir))
	assert.Equal(t, "", coverparse.BestInDir(t.TempDir()))
}
