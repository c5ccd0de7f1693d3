package pixel

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
)

// DefaultJPEGQuality matches the quality used for all published output.
const DefaultJPEGQuality = 95

// Decode detects the image format from its magic bytes and decodes it
// into a dense RGB buffer.
func Decode(data []byte) (*Buffer, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}) {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return fromImage(img), nil
	} else if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xD8}) {
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return fromImage(img), nil
	}

	return nil, fmt.Errorf("unrecognized image format")
}

// fromImage flattens a decoded image into an RGB buffer, dropping alpha.
func fromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	buf := make([]byte, width*height*Channels)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := (y*width + x) * Channels
			buf[idx] = byte(r >> 8)
			buf[idx+1] = byte(g >> 8)
			buf[idx+2] = byte(b >> 8)
		}
	}

	return &Buffer{Width: width, Height: height, Data: buf}
}

// EncodeJPEG encodes the buffer as JPEG at the given quality (1-100).
func EncodeJPEG(b *Buffer, quality int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			src := (y*b.Width + x) * Channels
			dst := y*img.Stride + x*4
			img.Pix[dst] = b.Data[src]
			img.Pix[dst+1] = b.Data[src+1]
			img.Pix[dst+2] = b.Data[src+2]
			img.Pix[dst+3] = 255
		}
	}

	var output bytes.Buffer
	if err := jpeg.Encode(&output, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}

	return output.Bytes(), nil
}

// WriteJPEG encodes the buffer and writes it to filename.
func WriteJPEG(filename string, b *Buffer, quality int) error {
	data, err := EncodeJPEG(b, quality)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
