// Package stitcher orchestrates the external stitching engine: it attempts
// the fast SCANS mode first, falls back once to the universal PANORAMA
// mode, and classifies terminal engine failures. The engine itself is an
// opaque capability behind the Engine interface.
package stitcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kiesman99/pano360/pkg/pixel"
)

// Orchestrator drives the external engine with the mode-fallback policy.
type Orchestrator struct {
	engine Engine
	log    *slog.Logger
}

// New creates an orchestrator around the given engine.
func New(engine Engine) *Orchestrator {
	return &Orchestrator{
		engine: engine,
		log:    slog.Default(),
	}
}

// Stitch composites the image set into a single flat panorama. It tries
// SCANS mode, retries once in PANORAMA mode if SCANS is unavailable or
// fails, and returns a classified error if both attempts fail. Stitching
// is all-or-nothing: no partial output is ever returned.
func (o *Orchestrator) Stitch(ctx context.Context, images []*pixel.Buffer) (*pixel.Buffer, error) {
	if len(images) < 2 {
		return nil, fmt.Errorf("need at least 2 images to stitch, got %d", len(images))
	}

	o.log.Info("stitching images", "count", len(images), "mode", ModeScans)
	pano, err := o.engine.Stitch(ctx, ModeScans, images)
	if err == nil {
		o.log.Info("stitching successful", "mode", ModeScans, "width", pano.Width, "height", pano.Height)
		return pano, nil
	}

	if errors.Is(err, ErrModeUnavailable) {
		o.log.Info("scans mode unavailable, using panorama mode")
	} else {
		o.log.Warn("scans mode failed, retrying in panorama mode", "error", err)
	}

	pano, err = o.engine.Stitch(ctx, ModePanorama, images)
	if err != nil {
		return nil, classify(err)
	}

	o.log.Info("stitching successful", "mode", ModePanorama, "width", pano.Width, "height", pano.Height)
	return pano, nil
}
