package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage() image.Image {
	page := image.NewRGBA(image.Rect(0, 0, 170, 220))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return page
}

func TestAssemble(t *testing.T) {
	var buf bytes.Buffer
	err := Assemble(&buf, []image.Image{testPage(), testPage()})
	require.NoError(t, err)

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "output starts with a PDF header")
	assert.Contains(t, string(out), "/Count 2", "one document page per layout page")
}

func TestAssembleNoPages(t *testing.T) {
	var buf bytes.Buffer
	err := Assemble(&buf, nil)
	require.Error(t, err)
	assert.Zero(t, buf.Len(), "nothing written on failure")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pdf")
	require.NoError(t, WriteFile(path, []image.Image{testPage()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
