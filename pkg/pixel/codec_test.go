package pixel

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

var jpegMagic = []byte{0xFF, 0xD8}

func pngBytes(t *testing.T, width, height int, c color.RGBA) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewBufferValidation(t *testing.T) {
	_, err := NewBuffer(0, 10)
	assert.Error(t, err)

	_, err = NewBuffer(10, -1)
	assert.Error(t, err)

	b, err := NewBuffer(4, 3)
	require.NoError(t, err)
	assert.Len(t, b.Data, 4*3*Channels)
}

func TestFromBytesSizeMismatch(t *testing.T) {
	_, err := FromBytes(2, 2, make([]byte, 5))
	assert.Error(t, err)

	b, err := FromBytes(2, 2, make([]byte, 2*2*Channels))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Width)
	assert.Equal(t, 2, b.Height)
}

func TestDecodePNG(t *testing.T) {
	data := pngBytes(t, 6, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	b, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, 6, b.Width)
	assert.Equal(t, 4, b.Height)
	assert.Len(t, b.Data, 6*4*Channels)

	r, g, bl := b.At(0, 0)
	assert.Equal(t, byte(10), r)
	assert.Equal(t, byte(20), g)
	assert.Equal(t, byte(30), bl)
}

func TestDecodeJPEGRoundTrip(t *testing.T) {
	src, err := NewBuffer(8, 8)
	require.NoError(t, err)
	for i := range src.Data {
		src.Data[i] = 128
	}

	encoded, err := EncodeJPEG(src, 95)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(encoded, jpegMagic), "expected JPEG magic bytes")

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, src.Width, decoded.Width)
	assert.Equal(t, src.Height, decoded.Height)

	// JPEG is lossy; a uniform mid-grey should survive nearly intact.
	r, g, bl := decoded.At(4, 4)
	for _, v := range []byte{r, g, bl} {
		assert.InDelta(t, 128, int(v), 4)
	}
}

func TestDecodeUnrecognized(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	assert.Error(t, err)

	_, err = Decode(nil)
	assert.Error(t, err)
}

func TestWriteJPEG(t *testing.T) {
	b, err := NewBuffer(4, 4)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.jpg")
	require.NoError(t, WriteJPEG(path, b, 95))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, jpegMagic))
}
