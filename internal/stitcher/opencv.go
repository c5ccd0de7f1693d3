package stitcher

/*
#cgo !windows pkg-config: opencv4
#cgo CXXFLAGS: --std=c++11
#include "stitcher_shim.h"
*/
import "C"

import (
	"context"
	"fmt"
	"unsafe"

	"gocv.io/x/gocv"

	"github.com/kiesman99/pano360/pkg/pixel"
)

// cv::Stitcher::Mode values, as exposed by the shim.
const (
	cvModePanorama = C.PANO_STITCHER_MODE_PANORAMA
	cvModeScans    = C.PANO_STITCHER_MODE_SCANS
)

// OpenCVEngine runs OpenCV's high-level cv::Stitcher through a small
// in-tree shim (stitcher_shim.h/.cpp); gocv has no stitching binding of
// its own, so only Mat handling goes through it. One instance is safe
// for concurrent use: every call creates its own cv::Stitcher.
type OpenCVEngine struct{}

// NewOpenCVEngine returns the production stitching engine.
func NewOpenCVEngine() *OpenCVEngine {
	return &OpenCVEngine{}
}

// Stitch composites the images in the requested mode. A non-OK stitcher
// status is surfaced as an *EngineError carrying the raw status code.
// The call blocks until the engine finishes; a cancelled context is only
// honored before the engine is invoked.
func (e *OpenCVEngine) Stitch(ctx context.Context, mode Mode, images []*pixel.Buffer) (*pixel.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mats := make([]gocv.Mat, 0, len(images))
	defer func() {
		for i := range mats {
			mats[i].Close()
		}
	}()

	for _, img := range images {
		mat, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, rgbToBGR(img.Data))
		if err != nil {
			return nil, fmt.Errorf("converting image for engine: %w", err)
		}
		mats = append(mats, mat)
	}

	sw := C.PanoStitcher_Create(C.int(cvMode(mode)))
	if sw == nil {
		return nil, ErrModeUnavailable
	}
	defer C.PanoStitcher_Close(sw)

	pano := gocv.NewMat()
	defer pano.Close()

	cimgs := make([]C.Mat, len(mats))
	for i := range mats {
		cimgs[i] = C.Mat(unsafe.Pointer(mats[i].Ptr()))
	}

	status := int(C.PanoStitcher_Stitch(sw, (*C.Mat)(unsafe.Pointer(&cimgs[0])), C.int(len(cimgs)),
		C.Mat(unsafe.Pointer(pano.Ptr()))))
	if status != 0 {
		return nil, &EngineError{Mode: mode, Status: status}
	}

	data, err := pano.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("reading engine output: %w", err)
	}

	return pixel.FromBytes(pano.Cols(), pano.Rows(), rgbToBGR(data))
}

// cvMode maps the orchestrator's mode onto cv::Stitcher::Mode.
func cvMode(mode Mode) int {
	if mode == ModeScans {
		return cvModeScans
	}
	return cvModePanorama
}

// rgbToBGR copies the buffer with the first and third channels swapped.
// OpenCV works in BGR order; the swap is its own inverse.
func rgbToBGR(data []byte) []byte {
	out := make([]byte, len(data))
	for i := 0; i+2 < len(data); i += 3 {
		out[i] = data[i+2]
		out[i+1] = data[i+1]
		out[i+2] = data[i]
	}
	return out
}
