package stitcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiesman99/pano360/pkg/pixel"
)

// Mode selects the engine's internal stitching strategy.
type Mode int

const (
	// ModeScans targets near-planar, high-overlap captures such as
	// sequential 360° rig shots.
	ModeScans Mode = iota
	// ModePanorama is the general wide-baseline mode, present in every
	// engine build.
	ModePanorama
)

func (m Mode) String() string {
	switch m {
	case ModeScans:
		return "scans"
	case ModePanorama:
		return "panorama"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Engine status codes as reported by the external stitching engine.
const (
	statusNeedMoreImages    = 1
	statusHomographyFailed  = 2
	statusCameraAdjustError = 3
)

// ErrModeUnavailable reports that the running engine build lacks the
// requested mode.
var ErrModeUnavailable = errors.New("stitch mode unavailable")

// Engine is the external stitching capability. Implementations perform
// feature matching, homography estimation, warping and blending; the
// orchestrator only interprets their outcomes.
type Engine interface {
	Stitch(ctx context.Context, mode Mode, images []*pixel.Buffer) (*pixel.Buffer, error)
}

// EngineError is a raw, unclassified failure status from one engine attempt.
type EngineError struct {
	Mode   Mode
	Status int
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("stitching engine failed in %s mode with status %d", e.Mode, e.Status)
}

// FailureKind classifies an engine failure for callers.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureInsufficientOverlap
	FailureHomographyEstimation
	FailureCameraAdjustment
)

// StitchError is the orchestrator's terminal error after both modes failed.
type StitchError struct {
	Kind   FailureKind
	Status int
}

func (e *StitchError) Error() string {
	switch e.Kind {
	case FailureInsufficientOverlap:
		return "need more images or insufficient overlap"
	case FailureHomographyEstimation:
		return "homography estimation failed - images may not have enough matching features"
	case FailureCameraAdjustment:
		return "camera parameter adjustment failed"
	}
	return fmt.Sprintf("stitching failed with status code: %d", e.Status)
}

// classify maps a terminal engine failure onto the error taxonomy.
func classify(err error) error {
	var engErr *EngineError
	if !errors.As(err, &engErr) {
		return err
	}

	kind := FailureUnknown
	switch engErr.Status {
	case statusNeedMoreImages:
		kind = FailureInsufficientOverlap
	case statusHomographyFailed:
		kind = FailureHomographyEstimation
	case statusCameraAdjustError:
		kind = FailureCameraAdjustment
	}

	return &StitchError{Kind: kind, Status: engErr.Status}
}
