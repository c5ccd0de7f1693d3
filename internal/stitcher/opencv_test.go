//go:build cgo

package stitcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCVModeMapping(t *testing.T) {
	// cv::Stitcher::Mode numbers PANORAMA 0 and SCANS 1; the shim constants
	// must line up or the engine silently runs the wrong strategy.
	assert.Equal(t, 1, cvMode(ModeScans))
	assert.Equal(t, 0, cvMode(ModePanorama))
}

func TestRGBToBGRSwap(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5, 6}

	swapped := rgbToBGR(in)
	assert.Equal(t, []byte{3, 2, 1, 6, 5, 4}, swapped)

	// The swap is its own inverse, so a round trip restores the input.
	assert.Equal(t, in, rgbToBGR(swapped))
}
