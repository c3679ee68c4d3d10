// Package web serves the calculator session over HTTP: JSON endpoints for
// the form, settings and atomic-mass table, and a rendered report page.
package web

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/masscalc/internal/session"
)

// NewServer creates and configures the HTTP server for a session.
func NewServer(sess *session.Session, version, bind string, port int) *http.Server {
	h := &Handlers{
		sess:    sess,
		version: version,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/state", http.StatusFound)
	})
	mux.HandleFunc("GET /state", h.HandleState)
	mux.HandleFunc("PUT /state/formula", h.HandleSetFormula)
	mux.HandleFunc("PUT /state/mass", h.HandleSetMass)
	mux.HandleFunc("PUT /state/materials", h.HandleSetMaterials)
	mux.HandleFunc("POST /state/materials", h.HandleAddMaterial)
	mux.HandleFunc("PATCH /state/materials/{index}", h.HandleUpdateMaterial)
	mux.HandleFunc("DELETE /state/materials/{index}", h.HandleRemoveMaterial)
	mux.HandleFunc("DELETE /state/error", h.HandleClearError)
	mux.HandleFunc("POST /calculate", h.HandleCalculate)
	mux.HandleFunc("GET /report", h.HandleReport)
	mux.HandleFunc("POST /export", h.HandleExport)
	mux.HandleFunc("GET /settings", h.HandleSettingsGet)
	mux.HandleFunc("PATCH /settings", h.HandleSettingsUpdate)
	mux.HandleFunc("GET /elements", h.HandleElementsList)
	mux.HandleFunc("POST /elements/load", h.HandleElementsLoad)
	mux.HandleFunc("PATCH /elements/{symbol}", h.HandleElementsUpdateRow)
	mux.HandleFunc("POST /elements/save", h.HandleElementsSave)
	mux.HandleFunc("POST /elements/restore", h.HandleElementsRestore)

	// Wrap with security headers
	handler := securityHeaders(mux)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and shuts it down gracefully when ctx ends.
func Run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("http server running", zap.String("addr", "http://"+srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
