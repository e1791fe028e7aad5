package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-bloodwork/internal/config"
	"github.com/a3tai/mcp-bloodwork/internal/ingest"
	"github.com/a3tai/mcp-bloodwork/internal/mcp"
	"github.com/a3tai/mcp-bloodwork/internal/metrics"
	"github.com/a3tai/mcp-bloodwork/internal/pdf"
)

const metricsShutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over stdio or SSE",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	service := newIngestService(cfg, store)
	server, err := mcp.NewServer(cfg, service, store.adapter, store.backend)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		metricsServer := newMetricsServer(cfg.MetricsAddr, store)
		go func() {
			appLogger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	if err := server.Run(ctx); err != nil {
		appLogger.Error("server stopped with error", "err", err)
		return err
	}
	appLogger.Info("server stopped")
	return nil
}

func newIngestService(cfg *config.Config, store *resultStore) *ingest.Service {
	extractor := pdf.NewExtractor(cfg.MaxFileSize)
	return ingest.NewService(extractor, store.adapter, ingest.NewLimiter(cfg.IngestRate, cfg.IngestBurst))
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Error   string `json:"error,omitempty"`
}

func newMetricsServer(addr string, store *resultStore) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", healthHandler(store))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthHandler(store *resultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Storage: store.backend}
		status := http.StatusOK
		if err := store.adapter.Ping(r.Context()); err != nil {
			resp.Status = "unavailable"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
