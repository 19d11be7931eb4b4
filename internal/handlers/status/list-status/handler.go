// Package liststatus serves GET /api/status.
package liststatus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/errors"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/metrics"
	"maglinc-site/internal/handlers/status/store"
)

const HandlerName = "list-status"

type Config struct {
	Enabled      bool          `mapstructure:"enabled"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DefaultLimit int           `mapstructure:"default_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		Timeout:      30 * time.Second,
		DefaultLimit: store.MaxListLimit,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultLimit <= 0 || c.DefaultLimit > store.MaxListLimit {
		return fmt.Errorf("default_limit must be between 1 and %d", store.MaxListLimit)
	}
	return nil
}

type Handler struct {
	config     *Config
	logger     logger.Logger
	repo       store.Repository
	errHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Logger       logger.Logger
	Repository   store.Repository
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := DefaultConfig()
	if opts.CustomConfig != nil {
		handlerConfig = opts.CustomConfig
	} else if opts.AppConfig != nil {
		handlerCfg := config.GetHandlerConfig(opts.AppConfig, HandlerName)
		handlerConfig.Enabled = handlerCfg.Enabled
		if handlerCfg.Timeout > 0 {
			handlerConfig.Timeout = config.GetDuration(handlerCfg.Timeout)
		}
	}

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", HandlerName, err)
	}
	if opts.Repository == nil {
		return nil, fmt.Errorf("%s requires a status repository", HandlerName)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"handler": HandlerName})

	return &Handler{
		config:     handlerConfig,
		logger:     log,
		repo:       opts.Repository,
		errHandler: errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/status", metrics.Instrument("status_list", h))
}

// ServeHTTP lists records newest first. The optional limit query
// parameter is clamped to store.MaxListLimit.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.config.Enabled {
		h.fail(w, r, errors.NewHandlerDisabledError(HandlerName))
		return
	}

	limit := h.config.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.fail(w, r, errors.NewInputParsingFailedError(fmt.Errorf("limit must be a positive integer, got %q", raw)))
			return
		}
		limit = store.NormalizeLimit(n)
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	records, err := h.repo.List(ctx, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(records)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.errHandler.HandleRequestError(w, r, err)
	metrics.StatusRequestsFailed.WithLabelValues(string(stdErr.Code)).Inc()
}
