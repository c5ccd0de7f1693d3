// Package pipeline sequences the four stitching stages: source loading,
// stitching, equirectangular projection and publishing. Any stage error
// short-circuits the rest; this package is also the sole place that
// decides whether an error was the caller's fault.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kiesman99/pano360/internal/metrics"
	"github.com/kiesman99/pano360/internal/projector"
	"github.com/kiesman99/pano360/internal/publish"
	"github.com/kiesman99/pano360/internal/source"
	"github.com/kiesman99/pano360/internal/stitcher"
	"github.com/kiesman99/pano360/pkg/pixel"
)

// Pipeline is one immutable configuration of the stitching flow. A single
// instance may serve concurrent requests; each run keeps its own state.
type Pipeline struct {
	stitcher   *stitcher.Orchestrator
	projection projector.Config
	publisher  *publish.Publisher
	log        *slog.Logger
}

// Result carries the published equirectangular image plus the
// intermediate buffers for callers that persist secondary outputs.
type Result struct {
	RunID    string
	JPEG     []byte
	Panorama *pixel.Buffer
	Equirect *pixel.Buffer
}

// New assembles a pipeline around the given engine.
func New(engine stitcher.Engine, projection projector.Config, publisher *publish.Publisher) *Pipeline {
	return &Pipeline{
		stitcher:   stitcher.New(engine),
		projection: projection,
		publisher:  publisher,
		log:        slog.Default(),
	}
}

// RunUploads executes the pipeline over uploaded byte streams.
func (p *Pipeline) RunUploads(ctx context.Context, uploads []source.Upload) (*Result, error) {
	images, err := source.FromUploads(uploads)
	if err != nil {
		metrics.StageFailures.WithLabelValues("source").Inc()
		metrics.PipelineRuns.WithLabelValues("input_error").Inc()
		return nil, err
	}
	return p.run(ctx, images)
}

// RunDirectory executes the pipeline over a directory of image files.
func (p *Pipeline) RunDirectory(ctx context.Context, dir string) (*Result, error) {
	images, err := source.FromDirectory(dir)
	if err != nil {
		metrics.StageFailures.WithLabelValues("source").Inc()
		metrics.PipelineRuns.WithLabelValues("input_error").Inc()
		return nil, err
	}
	return p.run(ctx, images)
}

func (p *Pipeline) run(ctx context.Context, images []*pixel.Buffer) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()
	log := p.log.With("run_id", runID)

	pano, err := p.stitcher.Stitch(ctx, images)
	if err != nil {
		metrics.StageFailures.WithLabelValues("stitch").Inc()
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	log.Info("projecting to equirectangular",
		"output_width", p.projection.Width, "output_height", p.projection.Height)
	equirect := projector.Project(pano, p.projection)

	jpeg, err := p.publisher.Encode(equirect)
	if err != nil {
		metrics.StageFailures.WithLabelValues("publish").Inc()
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.PipelineRuns.WithLabelValues("ok").Inc()
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	log.Info("pipeline complete", "duration", time.Since(start), "bytes", len(jpeg))

	return &Result{
		RunID:    runID,
		JPEG:     jpeg,
		Panorama: pano,
		Equirect: equirect,
	}, nil
}

// Publisher exposes the configured publisher for secondary outputs.
func (p *Pipeline) Publisher() *publish.Publisher {
	return p.publisher
}

// IsInputError reports whether err was caused by the caller's input
// (undecodable upload, too few images, missing directory) rather than by
// the pipeline itself.
func IsInputError(err error) bool {
	return errors.Is(err, source.ErrInvalidImage) ||
		errors.Is(err, source.ErrInsufficientImages) ||
		errors.Is(err, source.ErrDirectoryNotFound)
}
