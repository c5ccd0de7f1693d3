// Package server exposes the stitching pipeline over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiesman99/pano360/internal/pipeline"
	"github.com/kiesman99/pano360/internal/source"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing;
// larger uploads spill to temp files.
const maxUploadMemory = 64 << 20

// Server holds the request-independent pipeline configuration.
type Server struct {
	pipeline  *pipeline.Pipeline
	startTime time.Time
	version   string
	log       *slog.Logger
}

// NewServer creates a new server instance around an assembled pipeline.
func NewServer(p *pipeline.Pipeline, version string) *Server {
	return &Server{
		pipeline:  p,
		startTime: time.Now(),
		version:   version,
		log:       slog.Default(),
	}
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Post("/stitch-360", s.handleStitch360)
	r.Post("/stitch-from-folder", s.handleStitchFromFolder)
	r.Get("/stitch-from-folder", s.handleStitchFromFolder)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
}

// handleHealth reports process liveness, uptime and version.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"uptime":  int(time.Since(s.startTime).Seconds()),
		"version": s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.Error("encoding health response", "error", err)
	}
}

// handleStitch360 stitches uploaded images into an equirectangular JPEG.
func (s *Server) handleStitch360(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	if len(files) < source.MinImages {
		s.writeError(w, http.StatusBadRequest, "At least two images required")
		return
	}

	uploads := make([]source.Upload, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("reading upload %s: %v", fh.Filename, err))
			return
		}
		uploads = append(uploads, source.Upload{Name: fh.Filename, Data: data})
	}

	result, err := s.pipeline.RunUploads(r.Context(), uploads)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	s.writeImage(w, result.JPEG, "360.jpg", result.RunID)
}

// handleStitchFromFolder stitches the images found in a server-side
// folder. When save_output is true the result is also written next to
// the folder as stitched_output.jpg.
func (s *Server) handleStitchFromFolder(w http.ResponseWriter, r *http.Request) {
	folder := r.FormValue("folder_path")
	if folder == "" {
		folder = "Images"
	}

	saveOutput := true
	if v := r.FormValue("save_output"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "save_output must be a boolean")
			return
		}
		saveOutput = parsed
	}

	result, err := s.pipeline.RunDirectory(r.Context(), folder)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	if saveOutput {
		path := filepath.Join(filepath.Dir(filepath.Clean(folder)), "stitched_output.jpg")
		if err := s.pipeline.Publisher().Persist(path, result.JPEG); err != nil {
			// The in-memory result is still good; report and carry on.
			s.log.Warn("persisting folder output failed", "error", err)
		}
	}

	s.writeImage(w, result.JPEG, "stitched_360.jpg", result.RunID)
}

// writeImage sends a finished JPEG as a file attachment.
func (s *Server) writeImage(w http.ResponseWriter, data []byte, filename, runID string) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Run-ID", runID)

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Error("writing response", "error", err)
	}
}

// writePipelineError maps a pipeline failure onto the HTTP surface:
// caller input problems become 400, everything else 500.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if pipeline.IsInputError(err) {
		status = http.StatusBadRequest
	}
	s.writeError(w, status, err.Error())
}

// writeError writes the JSON error envelope.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"detail": detail}); err != nil {
		s.log.Error("encoding error response", "error", err)
	}
}
