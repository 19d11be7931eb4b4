// Package server runs the HTTP listeners shared by the site and status-api
// binaries.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/logger"
)

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

// RetryWithBackoff runs operation up to maxRetries times, doubling the
// delay between attempts. It stops early when ctx is done.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// RegisterHealth mounts /health and /ready on mux. /ready runs every check
// and answers 503 when any fails.
func RegisterHealth(mux *http.ServeMux, checks map[string]ReadyCheck) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"failed": failed,
				"time":   time.Now().Format(time.RFC3339),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}

func writeStatus(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// New builds an http.Server for handler using the configured timeouts.
func New(addr string, handler http.Handler, cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       config.GetDuration(cfg.ReadTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
	}
}

// Run serves app until ctx is done, then shuts it down within the
// configured shutdown timeout. When cfg.MetricsAddress is set /metrics is
// served from its own listener, otherwise it is mounted on appMux.
func Run(ctx context.Context, name, addr string, appMux *http.ServeMux, cfg config.ServerConfig, log logger.Logger) error {
	servers := []*http.Server{}

	if cfg.MetricsAddress != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("GET /metrics", promhttp.Handler())
		servers = append(servers, New(cfg.MetricsAddress, metricsMux, cfg))
	} else {
		appMux.Handle("GET /metrics", promhttp.Handler())
	}
	servers = append(servers, New(addr, appMux, cfg))

	eg, egCtx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		eg.Go(func() error {
			log.Info("HTTP server listening", map[string]interface{}{
				"service": name,
				"address": srv.Addr,
			})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s listener on %s: %w", name, srv.Addr, err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		<-egCtx.Done()
		log.Info("Shutting down HTTP servers", map[string]interface{}{"service": name})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.ShutdownTimeout))
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	return eg.Wait()
}

// Serve serves handler on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, cfg config.ServerConfig) error {
	srv := New(ln.Addr().String(), handler, cfg)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.ShutdownTimeout))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
