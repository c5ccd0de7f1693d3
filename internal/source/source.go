// Package source normalizes the two input origins (uploaded byte streams
// and image directories) into an ordered list of decoded pixel buffers.
package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kiesman99/pano360/pkg/pixel"
)

// MinImages is the smallest image set the stitching engine accepts.
const MinImages = 2

var (
	// ErrInvalidImage reports an undecodable uploaded image.
	ErrInvalidImage = errors.New("invalid image file")

	// ErrInsufficientImages reports fewer than MinImages usable inputs.
	ErrInsufficientImages = errors.New("need at least 2 images")

	// ErrDirectoryNotFound reports a missing input directory.
	ErrDirectoryNotFound = errors.New("folder does not exist")
)

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// Upload is a single uploaded image together with its client-side name.
type Upload struct {
	Name string
	Data []byte
}

// FromUploads decodes every uploaded image in upload order. Any decode
// failure fails the whole call.
func FromUploads(uploads []Upload) ([]*pixel.Buffer, error) {
	images := make([]*pixel.Buffer, 0, len(uploads))
	for _, u := range uploads {
		img, err := pixel.Decode(u.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, u.Name, err)
		}
		images = append(images, img)
	}
	if len(images) < MinImages {
		return nil, fmt.Errorf("%w, got %d", ErrInsufficientImages, len(images))
	}
	return images, nil
}

// FromDirectory loads all images with a known extension from dir, sorted
// lexicographically by filename. Files that fail to decode are skipped
// with a warning; the call fails only if fewer than MinImages survive.
func FromDirectory(dir string) ([]*pixel.Buffer, error) {
	log := slog.Default()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if _, ok := imageExts[ext]; ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	images := make([]*pixel.Buffer, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("skipping unreadable image", "path", path, "error", err)
			continue
		}
		img, err := pixel.Decode(data)
		if err != nil {
			log.Warn("skipping undecodable image", "path", path, "error", err)
			continue
		}
		log.Info("loaded image", "path", path, "width", img.Width, "height", img.Height)
		images = append(images, img)
	}

	if len(images) < MinImages {
		return nil, fmt.Errorf("%w, found %d in %s", ErrInsufficientImages, len(images), dir)
	}

	return images, nil
}
