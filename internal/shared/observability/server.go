package observability

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var apiSpec []byte

// ResultProvider returns the latest scan result for the /result endpoint, or
// nil when no scan has completed yet.
type ResultProvider func() any

type Server struct {
	addr    string
	results ResultProvider
	server  *http.Server
}

func NewServer(addr string, results ResultProvider) *Server {
	return &Server{
		addr:    addr,
		results: results,
	}
}

// LoadAPISpec parses and validates the embedded API document. Run at startup
// so a malformed document fails fast instead of surfacing as a broken
// endpoint later.
func LoadAPISpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(apiSpec)
	if err != nil {
		return nil, fmt.Errorf("load observability api spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate observability api spec: %w", err)
	}
	return doc, nil
}

func (s *Server) Start(ctx context.Context) error {
	if _, err := LoadAPISpec(); err != nil {
		return err
	}

	mux := http.NewServeMux()

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "up"})
	})

	mux.HandleFunc("/result", func(w http.ResponseWriter, r *http.Request) {
		result := s.results()
		if result == nil {
			http.Error(w, "no scan completed yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	})

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
