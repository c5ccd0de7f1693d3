// Package projector maps a flat stitched panorama onto an equirectangular
// canvas. For every output pixel it computes a source coordinate in the
// panorama's pixel space and resamples with bilinear interpolation.
//
// The mapping is a uniform linear stretch of the planar panorama over the
// full sphere (longitude ±180°, latitude ±90°). It deliberately does not
// correct the flat panorama's perspective distortion; downstream viewers
// rely on this exact mapping, so keep the formula bit-for-bit stable.
package projector

import (
	"math"
	"runtime"
	"sync"

	"github.com/kiesman99/pano360/pkg/pixel"
)

// Config sets the output canvas size. A full 360°×180° map is typically
// twice as wide as it is tall.
type Config struct {
	Width  int
	Height int
}

// DefaultConfig is the canonical 2:1 output size.
func DefaultConfig() Config {
	return Config{Width: 2048, Height: 1024}
}

// coordinateMap holds the per-output-pixel source coordinates, row-major.
type coordinateMap struct {
	xs []float64
	ys []float64
}

// Project resamples pano onto an equirectangular canvas of cfg's size.
// It never fails for valid inputs, never mutates pano, and is fully
// deterministic. Callers must pass positive cfg dimensions.
func Project(pano *pixel.Buffer, cfg Config) *pixel.Buffer {
	m := buildMap(pano.Width, pano.Height, cfg)

	out := &pixel.Buffer{
		Width:  cfg.Width,
		Height: cfg.Height,
		Data:   make([]byte, cfg.Width*cfg.Height*pixel.Channels),
	}

	// Rows are independent, so split them across the available CPUs.
	workers := runtime.GOMAXPROCS(0)
	if workers > cfg.Height {
		workers = cfg.Height
	}
	rowsPer := (cfg.Height + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		y0 := w * rowsPer
		y1 := y0 + rowsPer
		if y1 > cfg.Height {
			y1 = cfg.Height
		}
		if y0 >= y1 {
			break
		}

		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			remapRows(pano, out, m, y0, y1)
		}(y0, y1)
	}
	wg.Wait()

	return out
}

// buildMap computes the inverse coordinate map from output space back
// into the panorama:
//
//	theta = (y/H - 0.5) * pi        latitude in (-pi/2, pi/2)
//	phi   = (x/W - 0.5) * 2pi       longitude in (-pi, pi)
//	xs    = 0.5 * w * (phi/pi + 1)
//	ys    = 0.5 * h * (theta/(pi/2) + 1)
func buildMap(panoW, panoH int, cfg Config) *coordinateMap {
	m := &coordinateMap{
		xs: make([]float64, cfg.Width*cfg.Height),
		ys: make([]float64, cfg.Width*cfg.Height),
	}

	for y := 0; y < cfg.Height; y++ {
		theta := (float64(y)/float64(cfg.Height) - 0.5) * math.Pi
		ys := 0.5 * float64(panoH) * (theta/(math.Pi/2) + 1)

		row := y * cfg.Width
		for x := 0; x < cfg.Width; x++ {
			phi := (float64(x)/float64(cfg.Width) - 0.5) * 2 * math.Pi
			m.xs[row+x] = 0.5 * float64(panoW) * (phi/math.Pi + 1)
			m.ys[row+x] = ys
		}
	}

	return m
}

// remapRows bilinearly samples the source panorama for output rows
// [y0, y1). Longitude is cyclic, so the horizontal axis wraps; latitude
// ends at the poles, so the vertical axis clamps.
func remapRows(pano, out *pixel.Buffer, m *coordinateMap, y0, y1 int) {
	w, h := pano.Width, pano.Height

	for y := y0; y < y1; y++ {
		row := y * out.Width
		for x := 0; x < out.Width; x++ {
			xs := m.xs[row+x]
			ys := m.ys[row+x]

			fx0 := math.Floor(xs)
			fy0 := math.Floor(ys)
			dx := xs - fx0
			dy := ys - fy0

			x0 := wrap(int(fx0), w)
			x1 := wrap(int(fx0)+1, w)
			yc0 := clamp(int(fy0), h)
			yc1 := clamp(int(fy0)+1, h)

			i00 := (yc0*w + x0) * pixel.Channels
			i10 := (yc0*w + x1) * pixel.Channels
			i01 := (yc1*w + x0) * pixel.Channels
			i11 := (yc1*w + x1) * pixel.Channels

			dst := (row + x) * pixel.Channels
			for c := 0; c < pixel.Channels; c++ {
				v := (1-dx)*(1-dy)*float64(pano.Data[i00+c]) +
					dx*(1-dy)*float64(pano.Data[i10+c]) +
					(1-dx)*dy*float64(pano.Data[i01+c]) +
					dx*dy*float64(pano.Data[i11+c])
				out.Data[dst+c] = byte(v + 0.5)
			}
		}
	}
}

// wrap folds an index into [0, n) with cyclic addressing.
func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// clamp limits an index to [0, n-1].
func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
