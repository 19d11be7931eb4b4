package recordstatus

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/errors"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/metrics"
	"maglinc-site/internal/common/observability"
	"maglinc-site/internal/handlers/status/notify"
	"maglinc-site/internal/handlers/status/store"
	"maglinc-site/internal/models"
)

const (
	HandlerName = "record-status"

	maxBodyBytes = 64 << 10
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	service    *Service
	errHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Logger        logger.Logger
	Repository    store.Repository
	Notifier      notify.Notifier
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", HandlerName, err)
	}
	if opts.Repository == nil {
		return nil, fmt.Errorf("%s requires a status repository", HandlerName)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"handler": HandlerName})

	return &Handler{
		config: handlerConfig,
		logger: loggerInstance,
		service: NewService(ServiceDependencies{
			Logger:        loggerInstance,
			Repository:    opts.Repository,
			Notifier:      opts.Notifier,
			Observability: opts.Observability,
		}, handlerConfig),
		errHandler: errors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("POST /api/status", metrics.Instrument("status_create", h))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.config.Enabled {
		h.fail(w, r, errors.NewHandlerDisabledError(HandlerName))
		return
	}

	payload, err := h.parseInput(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	output, err := h.service.Execute(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(output.Record)
}

// parseInput reads the body and checks it against the status schema. Any
// body that is not a valid payload is a 400.
func (h *Handler) parseInput(w http.ResponseWriter, r *http.Request) (*models.StatusPayload, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	res, err := GetInputSchema().ValidateBytes(body)
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	if !res.Valid {
		return nil, errors.NewInputParsingFailedError(fmt.Errorf("schema validation failed: %s", res.Summary()))
	}

	var payload models.StatusPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	return &payload, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.errHandler.HandleRequestError(w, r, err)
	metrics.StatusRequestsFailed.WithLabelValues(string(stdErr.Code)).Inc()
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		handlerCfg := config.GetHandlerConfig(appConfig, HandlerName)
		cfg.Enabled = handlerCfg.Enabled
		if handlerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(handlerCfg.Timeout)
		}
	}

	return cfg
}
