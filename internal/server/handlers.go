package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/imageio"
	"github.com/Nic0w/zbars/internal/output"
	"github.com/Nic0w/zbars/internal/version"
	"github.com/Nic0w/zbars/zbar"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Zbar:    version.Zbar(),
		Clients: s.hub.Clients(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// requestOptions overlays per-request form values on the server defaults.
func (s *Server) requestOptions(r *http.Request) (barcode.Options, error) {
	opts := s.options
	if v := r.FormValue("formats"); v != "" {
		formats, err := barcode.ParseFormats([]string{v})
		if err != nil {
			return opts, err
		}
		opts.Formats = formats
	}
	for name, dst := range map[string]*bool{"multi": &opts.Multi, "try_harder": &opts.TryHarder} {
		if v := r.FormValue(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New("invalid " + name + " value: " + v)
			}
			*dst = b
		}
	}
	return opts, nil
}

// scanImageHandler decodes the barcodes of an uploaded "image" field.
func (s *Server) scanImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	format := r.FormValue("format")
	if format == "" {
		format = output.FormatJSON
	}
	if !output.IsSupported(format) {
		s.writeErrorResponse(w, "Unsupported output format: "+format, http.StatusBadRequest)
		return
	}

	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}

	report, err := s.scan(r, header.Filename, data, opts)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), statusForError(err))
		return
	}
	s.writeReport(w, format, report)
}

func (s *Server) scan(r *http.Request, name string, data []byte, opts barcode.Options) (output.Report, error) {
	img, meta, err := imageio.Decode(bytes.NewReader(data))
	if err != nil {
		return output.Report{}, err
	}
	start := time.Now()
	results, err := s.backend.Decode(r.Context(), img, opts)
	if err != nil {
		return output.Report{}, err
	}
	slog.Info("scan request", "file", name, "format", meta.Format, "symbols", len(results),
		"duration_ms", time.Since(start).Milliseconds())
	return output.Report{Source: name, Width: meta.Width, Height: meta.Height, Results: results}, nil
}

var contentTypes = map[string]string{
	output.FormatText: "text/plain; charset=utf-8",
	output.FormatYAML: "application/yaml",
	output.FormatCSV:  "text/csv",
	output.FormatXML:  "application/xml",
}

func (s *Server) writeReport(w http.ResponseWriter, format string, report output.Report) {
	if format == output.FormatJSON {
		doc := output.NewDocument(report)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ScanResponse{Success: true, Result: &doc}); err != nil {
			slog.Error("Failed to encode scan response", "error", err)
		}
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	if err := output.Write(w, format, []output.Report{report}); err != nil {
		slog.Error("Failed to write scan response", "format", format, "error", err)
	}
}

// statusForError maps decode failures to HTTP status codes.
func statusForError(err error) int {
	var imgErr *imageio.ImageProcessingError
	if errors.As(err, &imgErr) {
		return http.StatusBadRequest
	}
	var zerr zbar.Error
	if errors.As(err, &zerr) {
		switch zerr.Kind() {
		case zbar.ErrorKindConfiguration, zbar.ErrorKindInvalidBufferSize:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ScanResponse{Success: false, Error: message}); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
