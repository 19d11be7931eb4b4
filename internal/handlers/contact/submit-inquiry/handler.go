package submitinquiry

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/errors"
	"maglinc-site/internal/common/guard"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/metrics"
	"maglinc-site/internal/common/observability"
	"maglinc-site/internal/handlers/contact/page"
)

const (
	HandlerName       = "submit-inquiry"
	SessionCookieName = "maglinc_session"

	maxBodyBytes = 64 << 10
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	service    *Service
	guard      guard.Guard
	renderer   *page.Renderer
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Logger        logger.Logger
	Guard         guard.Guard
	Client        StatusPoster
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", HandlerName, err)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"handler": HandlerName})

	renderer, err := page.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to build contact page renderer: %w", err)
	}

	g := opts.Guard
	if g == nil {
		g = guard.NewLocal(handlerConfig.GuardTTL)
	}

	handler := &Handler{
		config:     handlerConfig,
		logger:     loggerInstance,
		guard:      g,
		renderer:   renderer,
		errHandler: errors.NewErrorHandler(loggerInstance),
		obs:        opts.Observability,
	}

	handler.service = NewService(ServiceDependencies{
		Logger:        loggerInstance,
		Client:        opts.Client,
		Observability: opts.Observability,
	}, handlerConfig)

	return handler, nil
}

// Register mounts the contact routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /{$}", metrics.Instrument("contact_page", http.HandlerFunc(h.HandlePage)))
	mux.Handle("POST /contact", metrics.Instrument("contact_submit", http.HandlerFunc(h.HandleFormPost)))
	mux.Handle("POST /api/inquiries", metrics.Instrument("inquiries_api", http.HandlerFunc(h.HandleAPI)))

	h.logger.Info("Contact routes registered", map[string]interface{}{
		"backendUrl": h.config.BackendURL,
		"timeout":    h.config.Timeout.String(),
		"enabled":    h.config.Enabled,
	})
}

// HandlePage renders the idle form.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	h.sessionID(w, r)
	h.render(w, http.StatusOK, page.View{})
}

// HandleFormPost handles the browser form submission.
func (h *Handler) HandleFormPost(w http.ResponseWriter, r *http.Request) {
	if !h.config.Enabled {
		h.errHandler.HandleRequestError(w, r, errors.NewHandlerDisabledError(HandlerName))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.errHandler.HandleRequestError(w, r, errors.NewInputParsingFailedError(err))
		return
	}

	input := Inquiry{
		Name:       r.PostFormValue("name"),
		Email:      r.PostFormValue("email"),
		Phone:      r.PostFormValue("phone"),
		Practice:   r.PostFormValue("practice"),
		CaseVolume: r.PostFormValue("caseVolume"),
		Message:    r.PostFormValue("message"),
	}

	form := h.newForm(w, r, input)
	result := form.Submit(r.Context())

	view := page.View{Values: fieldValues(form.Fields())}
	if result.Notification != nil {
		view.Notification = &page.Notice{Kind: string(result.Notification.Kind), Text: result.Notification.Text}
	}
	if result.Outcome == OutcomeInFlight {
		view.Submitting = true
	}

	h.render(w, statusFor(result), view)
}

// HandleAPI is the JSON variant of the form post.
func (h *Handler) HandleAPI(w http.ResponseWriter, r *http.Request) {
	if !h.config.Enabled {
		h.errHandler.HandleRequestError(w, r, errors.NewHandlerDisabledError(HandlerName))
		return
	}

	input, err := h.parseInput(w, r)
	if err != nil {
		stdErr := h.errHandler.HandleRequestError(w, r, err)
		metrics.InquirySubmissions.WithLabelValues(string(OutcomeRejected)).Inc()
		h.logger.Debug("Inquiry body rejected", map[string]interface{}{"errorCode": string(stdErr.Code)})
		return
	}

	result := h.newForm(w, r, *input).Submit(r.Context())

	resp := APIResponse{Success: result.Outcome == OutcomeSucceeded}
	if result.Notification != nil {
		resp.Message = result.Notification.Text
	}
	if result.Outcome == OutcomeInFlight {
		resp.Message = "A submission is already in progress."
	}
	if result.Output != nil {
		resp.StatusID = result.Output.StatusID
	}

	writeJSON(w, statusFor(result), resp)
}

func (h *Handler) parseInput(w http.ResponseWriter, r *http.Request) (*Inquiry, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	res, err := GetInputSchema().ValidateBytes(body)
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	if !res.Valid {
		return nil, errors.NewValidationFailedError(res.Summary())
	}

	var input Inquiry
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	return &input, nil
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request, input Inquiry) *Form {
	return NewForm(h.service,
		WithFields(input),
		WithGuard(h.guard, h.sessionID(w, r)),
		WithLogger(h.logger),
		WithObservability(h.obs),
	)
}

// sessionID returns the page-view id from the session cookie, issuing a
// new one when it is missing or malformed.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	return id
}

func (h *Handler) render(w http.ResponseWriter, status int, view page.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.renderer.Render(w, view); err != nil {
		h.logger.Error("Failed to render contact page", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func statusFor(result Result) int {
	switch result.Outcome {
	case OutcomeSucceeded:
		return http.StatusOK
	case OutcomeRejected:
		return http.StatusUnprocessableEntity
	case OutcomeInFlight:
		return http.StatusConflict
	default:
		return errors.HTTPStatus(errors.AsStandardError(result.Err).Code)
	}
}

func fieldValues(in Inquiry) map[string]string {
	return map[string]string{
		"name":       in.Name,
		"email":      in.Email,
		"phone":      in.Phone,
		"practice":   in.Practice,
		"caseVolume": in.CaseVolume,
		"message":    in.Message,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		handlerCfg := config.GetHandlerConfig(appConfig, HandlerName)
		cfg.Enabled = handlerCfg.Enabled

		if appConfig.Backend.URL != "" {
			cfg.BackendURL = appConfig.Backend.URL
		}
		cfg.Timeout = config.GetDuration(appConfig.Backend.Timeout)
		if ttl := guard.TTLFor(cfg.Timeout, config.GetDuration(appConfig.Guard.TTL)); ttl > 0 {
			cfg.GuardTTL = ttl
		}
	}

	return cfg
}
