package source

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestFromDirectoryNotFound(t *testing.T) {
	_, err := FromDirectory(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrDirectoryNotFound)
}

func TestFromDirectoryEmpty(t *testing.T) {
	_, err := FromDirectory(t.TempDir())
	assert.ErrorIs(t, err, ErrInsufficientImages)
}

func TestFromDirectorySingleImage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "only.png", pngBytes(t, color.RGBA{A: 255}))

	_, err := FromDirectory(dir)
	assert.ErrorIs(t, err, ErrInsufficientImages)
}

func TestFromDirectorySkipsUndecodable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", pngBytes(t, color.RGBA{A: 255}))
	writeFile(t, dir, "b.png", pngBytes(t, color.RGBA{A: 255}))
	writeFile(t, dir, "broken.jpg", []byte("not an image at all"))

	images, err := FromDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestFromDirectoryTooFewAfterSkips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", pngBytes(t, color.RGBA{A: 255}))
	writeFile(t, dir, "broken.jpg", []byte("garbage"))

	_, err := FromDirectory(dir)
	assert.ErrorIs(t, err, ErrInsufficientImages)
}

func TestFromDirectoryFilenameOrder(t *testing.T) {
	dir := t.TempDir()
	// Write out of order; loading must sort lexicographically.
	writeFile(t, dir, "b.png", pngBytes(t, color.RGBA{R: 255, A: 255}))
	writeFile(t, dir, "a.png", pngBytes(t, color.RGBA{B: 255, A: 255}))

	images, err := FromDirectory(dir)
	require.NoError(t, err)
	require.Len(t, images, 2)

	r, _, b := images[0].At(0, 0)
	assert.Equal(t, byte(0), r)
	assert.Equal(t, byte(255), b)

	r, _, b = images[1].At(0, 0)
	assert.Equal(t, byte(255), r)
	assert.Equal(t, byte(0), b)
}

func TestFromDirectoryIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", []byte("hello"))
	writeFile(t, dir, "photo.gif", pngBytes(t, color.RGBA{A: 255}))
	writeFile(t, dir, "a.PNG", pngBytes(t, color.RGBA{A: 255}))
	writeFile(t, dir, "b.JPEG", pngBytes(t, color.RGBA{A: 255}))

	// The allow-set is case-insensitive; .txt and .gif never count.
	images, err := FromDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestFromUploads(t *testing.T) {
	uploads := []Upload{
		{Name: "one.png", Data: pngBytes(t, color.RGBA{R: 255, A: 255})},
		{Name: "two.png", Data: pngBytes(t, color.RGBA{G: 255, A: 255})},
	}

	images, err := FromUploads(uploads)
	require.NoError(t, err)
	require.Len(t, images, 2)

	// Upload order is preserved.
	r, g, _ := images[0].At(0, 0)
	assert.Equal(t, byte(255), r)
	assert.Equal(t, byte(0), g)
}

func TestFromUploadsInvalidImage(t *testing.T) {
	uploads := []Upload{
		{Name: "ok.png", Data: pngBytes(t, color.RGBA{A: 255})},
		{Name: "bad.png", Data: []byte("corrupted")},
	}

	_, err := FromUploads(uploads)
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "bad.png")
}

func TestFromUploadsTooFew(t *testing.T) {
	uploads := []Upload{
		{Name: "one.png", Data: pngBytes(t, color.RGBA{A: 255})},
	}

	_, err := FromUploads(uploads)
	assert.ErrorIs(t, err, ErrInsufficientImages)
}
