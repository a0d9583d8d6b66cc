package cmd //nolint:testpackage // exercises unexported helpers and the shared root command

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yml")))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestTextInput(t *testing.T) {
	got, err := textInput([]string{"inline"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	got, err = textInput(nil, "-", strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o600))
	got, err = textInput(nil, path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from file", got)

	_, err = textInput(nil, "", nil)
	require.ErrorIs(t, err, errNoInput)
}

func TestCollectBatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("breaking hoax"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("skip"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))
	writePNG(t, filepath.Join(dir, "a.png"))

	files, err := collectBatch(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, files.textNames)
	require.Len(t, files.images, 1)
	assert.Equal(t, "a.png", files.images[0].Name)
	assert.Empty(t, files.unreadable)

	_, err = collectBatch(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestAnalyzeTextCommand(t *testing.T) {
	out := run(t, "analyze", "text", "SHOCKING hoax: this fake conspiracy is trending!!!", "--output", "json")

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	score, ok := result["score"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, score["is_positive"])
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "story.txt"), []byte("The university published a peer-reviewed study."), 0o600))
	writePNG(t, filepath.Join(dir, "photo.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0o600))
	xlsx := filepath.Join(t.TempDir(), "out.xlsx")

	out := run(t, "batch", dir, "--xlsx", xlsx, "--output", "table")

	assert.Contains(t, out, "story.txt")
	assert.Contains(t, out, "photo.png")
	assert.Contains(t, out, "broken.png")
	assert.Contains(t, out, "Failed: 1")
	assert.FileExists(t, xlsx)
}
