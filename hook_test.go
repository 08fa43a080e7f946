package dita_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.dita.xyz/dita"
)

func TestNewHook(t *testing.T) {
	t.Parallel()

	_, err := dita.NewHook("")
	assert.Error(t, err)

	h, err := dita.NewHook(`notify-send "import done" <files>`)
	require.NoError(t, err)
	assert.Equal(t, `hook ("notify-send" "import done" "<files>")`, h.String())
}

func TestHookProcessRelease(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")

	h, err := dita.NewHook("touch <files>")
	require.NoError(t, err)
	require.NoError(t, h.ProcessRelease(context.Background(), []string{a, b}))

	assert.FileExists(t, a)
	assert.FileExists(t, b)

	_, err = os.Stat(filepath.Join(dir, "<files>"))
	assert.Error(t, err)
}
