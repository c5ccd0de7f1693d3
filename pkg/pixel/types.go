package pixel

import "fmt"

// Channels is the number of samples per pixel (RGB, 8-bit each).
const Channels = 3

// Buffer holds a dense width*height*3 byte image in row-major RGB order.
type Buffer struct {
	Width  int
	Height int
	Data   []byte
}

// NewBuffer allocates a zeroed buffer with the given dimensions.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer dimensions %dx%d", width, height)
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height*Channels),
	}, nil
}

// FromBytes wraps an existing byte slice, validating the size invariant.
func FromBytes(width, height int, data []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer dimensions %dx%d", width, height)
	}
	if len(data) != width*height*Channels {
		return nil, fmt.Errorf("buffer size mismatch: got %d bytes, want %d", len(data), width*height*Channels)
	}
	return &Buffer{Width: width, Height: height, Data: data}, nil
}

// At returns the RGB samples at (x, y). Coordinates must be in bounds.
func (b *Buffer) At(x, y int) (r, g, bl byte) {
	idx := (y*b.Width + x) * Channels
	return b.Data[idx], b.Data[idx+1], b.Data[idx+2]
}

// Set writes the RGB samples at (x, y). Coordinates must be in bounds.
func (b *Buffer) Set(x, y int, r, g, bl byte) {
	idx := (y*b.Width + x) * Channels
	b.Data[idx] = r
	b.Data[idx+1] = g
	b.Data[idx+2] = bl
}
