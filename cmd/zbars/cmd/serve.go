package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/capture"
	"github.com/Nic0w/zbars/internal/config"
	"github.com/Nic0w/zbars/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the barcode scanning API",
	Long: `Start an HTTP server that decodes uploaded images.

The server provides the following endpoints:
  POST /scan/image - Decode an uploaded image (multipart field "image")
  GET  /health     - Health check endpoint
  GET  /ws/live    - WebSocket feed of video frames and image requests
  GET  /metrics    - Prometheus metrics

With --live the server also opens the configured video device and pushes
every frame with symbols to the connected WebSocket clients.

Examples:
  zbars serve
  zbars serve --port 8080
  zbars serve --host 0.0.0.0 --live --device /dev/video0`,
	Args:    cobra.NoArgs,
	PreRunE: bindOnRun(serveFlagBindings...),
	RunE:    runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := validatedConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.BarcodeOptions()
	if err != nil {
		return err
	}
	controls, _ := cmd.Flags().GetStringArray("control")
	if err := mergeControls(cfg, controls); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanServer, err := server.NewServer(server.Config{
		CORSOrigin:  cfg.Server.CORSOrigin,
		MaxUploadMB: int64(cfg.Server.MaxUploadMB),
		Backend:     barcode.NewZbarBackend(),
		Options:     opts,
	})
	if err != nil {
		return fmt.Errorf("creating scan server: %w", err)
	}

	mux := http.NewServeMux()
	scanServer.SetupRoutes(mux)
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	liveCtx, stopLive := context.WithCancel(ctx)
	defer stopLive()
	liveDone, closeLive, err := startLive(liveCtx, cfg, scanServer.Hub())
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("scan server listening", "addr", addr, "live", cfg.Server.Live)
		serveErr <- httpServer.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown requested")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("serving %s: %w", addr, err)
		}
	}

	timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err, "timeout", timeout)
	}

	// Capture must stop before the processor is destroyed.
	stopLive()
	<-liveDone
	closeLive()
	if err := scanServer.Close(); err != nil {
		slog.Error("closing scan server", "error", err)
	}
	slog.Info("scan server stopped")
	return runErr
}

// startLive opens the configured processor and streams its frames into hub
// until ctx ends. done closes once the loop has returned. Without --live
// nothing is opened and done is already closed.
func startLive(ctx context.Context, cfg *config.Config, hub *server.Hub) (done <-chan struct{}, closeProc func(), err error) {
	ch := make(chan struct{})
	if !cfg.Server.Live {
		close(ch)
		return ch, func() {}, nil
	}
	proc, err := openProcessor(cfg)
	if err != nil {
		return nil, nil, err
	}
	loop := &capture.Loop{Source: capture.ProcessorSource{Processor: proc}, Interval: cfg.Timeout()}
	go func() {
		defer close(ch)
		if err := loop.Run(ctx, hub.Publish); err != nil {
			slog.Error("live capture stopped", "error", err)
		}
	}()
	return ch, func() { _ = proc.Close() }, nil
}

var serveFlagBindings = slices.Concat([]flagBinding{
	{"server.host", "host"},
	{"server.port", "port"},
	{"server.cors_origin", "cors-origin"},
	{"server.max_upload_mb", "max-upload-size"},
	{"server.shutdown_timeout", "shutdown-timeout"},
	{"server.live", "live"},
}, scannerFlagBindings, processorFlagBindings)

func init() {
	rootCmd.AddCommand(serveCmd)
	defaults := config.DefaultConfig().Server
	serveCmd.Flags().StringP("host", "H", defaults.Host, "server host")
	serveCmd.Flags().IntP("port", "p", defaults.Port, "server port")
	serveCmd.Flags().String("cors-origin", defaults.CORSOrigin, "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", defaults.MaxUploadMB, "maximum upload size in MB")
	serveCmd.Flags().Int("shutdown-timeout", defaults.ShutdownTimeout, "shutdown timeout in seconds")
	serveCmd.Flags().Bool("live", false, "stream video frames to /ws/live clients")
	addScannerFlags(serveCmd)
	addProcessorFlags(serveCmd)
}
