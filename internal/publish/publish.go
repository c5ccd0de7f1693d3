// Package publish encodes finished pixel buffers for transport and
// optionally persists them to disk.
package publish

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kiesman99/pano360/pkg/pixel"
)

// PersistError reports a failed write of an already-encoded result.
// Callers decide whether the write was the primary output (fatal) or a
// secondary copy (reported, result still usable).
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Publisher encodes buffers as JPEG at a fixed quality.
type Publisher struct {
	Quality int
	log     *slog.Logger
}

// New returns a publisher; quality <= 0 selects the default (95).
func New(quality int) *Publisher {
	if quality <= 0 {
		quality = pixel.DefaultJPEGQuality
	}
	return &Publisher{Quality: quality, log: slog.Default()}
}

// Encode returns the JPEG bytes for img.
func (p *Publisher) Encode(img *pixel.Buffer) ([]byte, error) {
	data, err := pixel.EncodeJPEG(img, p.Quality)
	if err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}
	return data, nil
}

// Persist writes already-encoded bytes to path.
func (p *Publisher) Persist(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	p.log.Info("saved output", "path", path, "bytes", len(data))
	return nil
}

// PersistImage encodes img and writes it to path. Intended for secondary
// outputs such as the intermediate flat panorama.
func (p *Publisher) PersistImage(path string, img *pixel.Buffer) error {
	data, err := p.Encode(img)
	if err != nil {
		return err
	}
	return p.Persist(path, data)
}
