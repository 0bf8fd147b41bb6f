package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/output"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	backend     barcode.Backend
	options     barcode.Options
	corsOrigin  string
	maxUploadMB int64
	hub         *Hub
}

// Config holds server configuration.
type Config struct {
	CORSOrigin  string
	MaxUploadMB int64
	// Backend decodes uploads. Nil selects the zbar backend.
	Backend barcode.Backend
	// Options are the decode defaults; requests may override formats,
	// multi and try_harder.
	Options barcode.Options
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Zbar    string `json:"zbar,omitempty"`
	Clients int    `json:"live_clients"`
	Time    string `json:"time"`
}

type ScanResponse struct {
	Success bool             `json:"success"`
	Result  *output.Document `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// NewServer creates a new scan server instance.
func NewServer(config Config) (*Server, error) {
	backend := config.Backend
	if backend == nil {
		var err error
		if backend, err = barcode.NewBackend(); err != nil {
			return nil, err
		}
	}
	maxUpload := config.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 10
	}
	corsOrigin := config.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Server{
		backend:     backend,
		options:     config.Options,
		corsOrigin:  corsOrigin,
		maxUploadMB: maxUpload,
		hub:         NewHub(),
	}, nil
}

// Hub returns the live broadcast hub. Its Publish method is a capture sink.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close disconnects every live client.
func (s *Server) Close() error {
	s.hub.Close()
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", instrument("/health", s.withCORS(s.healthHandler)))
	mux.HandleFunc("/scan/image", instrument("/scan/image", s.withCORS(s.scanImageHandler)))
	mux.HandleFunc("/ws/live", s.liveHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
