package submitinquiry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/guard"
	"maglinc-site/internal/common/logger"
)

// statusBackend is a stand-in for the status endpoint.
type statusBackend struct {
	mu       sync.Mutex
	bodies   []string
	status   int
	response string
}

func (b *statusBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ClientName string `json:"client_name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	b.mu.Lock()
	b.bodies = append(b.bodies, payload.ClientName)
	status, response := b.status, b.response
	b.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(response))
}

func (b *statusBackend) received() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

func setupHandler(t *testing.T, backend *statusBackend, g guard.Guard) (*Handler, *http.ServeMux) {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BackendURL = server.URL
	cfg.Timeout = 2 * time.Second

	h, err := NewHandler(HandlerOptions{
		CustomConfig: cfg,
		Logger:       logger.NewTestLogger(t),
		Guard:        g,
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	return h, mux
}

func postForm(mux http.Handler, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func formValues() url.Values {
	return url.Values{
		"name":       {"Dr. John Smith"},
		"email":      {"john@example.com"},
		"phone":      {""},
		"practice":   {"Smith Clinic"},
		"caseVolume": {""},
		"message":    {"Looking for help"},
	}
}

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr bool
	}{
		{
			name: "custom config",
			opts: HandlerOptions{CustomConfig: DefaultConfig(), Logger: logger.NewNoOpLogger()},
		},
		{
			name: "from app config",
			opts: HandlerOptions{
				AppConfig: &config.Config{
					Backend: config.BackendConfig{URL: "https://api.maglinc.com", Timeout: 10000},
					Guard:   config.GuardConfig{Backend: "memory", TTL: 60000},
				},
				Logger: logger.NewNoOpLogger(),
			},
		},
		{
			name:    "invalid backend url",
			opts:    HandlerOptions{CustomConfig: &Config{Enabled: true, BackendURL: "nope", GuardTTL: time.Second}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandler(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, h.IsEnabled())
		})
	}
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	cfg := createConfigFromAppConfig(&config.Config{
		Backend:  config.BackendConfig{URL: "https://api.maglinc.com", Timeout: 10000},
		Guard:    config.GuardConfig{TTL: 60000},
		Handlers: map[string]config.HandlerConfig{HandlerName: {Enabled: false}},
	}, nil)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "https://api.maglinc.com", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 15*time.Second, cfg.GuardTTL)

	unbounded := createConfigFromAppConfig(&config.Config{Guard: config.GuardConfig{TTL: 60000}}, nil)
	assert.Equal(t, time.Duration(0), unbounded.Timeout)
	assert.Equal(t, time.Minute, unbounded.GuardTTL)
}

func TestHandler_PageSetsSessionCookie(t *testing.T) {
	_, mux := setupHandler(t, &statusBackend{}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Schedule Your Free Consultation")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestHandler_FormPostSuccess(t *testing.T) {
	backend := &statusBackend{response: `{"id":"rec-9","client_name":"x","timestamp":"2024-01-01T00:00:00Z"}`}
	_, mux := setupHandler(t, backend, nil)

	rec := postForm(mux, formValues(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "toast-success")
	assert.NotContains(t, body, `value="Dr. John Smith"`, "fields cleared after success")
	assert.Equal(t, []string{
		"Dr. John Smith - john@example.com - N/A - Smith Clinic - N/A - Looking for help",
	}, backend.received())
}

func TestHandler_FormPostFailureRetainsFields(t *testing.T) {
	backend := &statusBackend{status: http.StatusInternalServerError, response: "secret stack trace"}
	_, mux := setupHandler(t, backend, nil)

	rec := postForm(mux, formValues(), nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "toast-error")
	assert.Contains(t, body, `value="Dr. John Smith"`)
	assert.Contains(t, body, ">Looking for help</textarea>")
	assert.NotContains(t, body, "secret stack trace", "no error detail surfaced")
	assert.Len(t, backend.received(), 1)
}

func TestHandler_FormPostRejected(t *testing.T) {
	backend := &statusBackend{}
	_, mux := setupHandler(t, backend, nil)

	values := formValues()
	values.Set("email", "   ")
	rec := postForm(mux, values, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in your name and email address.")
	assert.Contains(t, rec.Body.String(), `value="Smith Clinic"`)
	assert.Empty(t, backend.received())
}

func TestHandler_FormPostInFlight(t *testing.T) {
	g := guard.NewLocal(time.Minute)
	backend := &statusBackend{}
	_, mux := setupHandler(t, backend, g)

	session := "6f1c1f9e-7a51-4f0e-9a43-4c1a2a8e0b11"
	_, ok, err := g.Acquire(context.Background(), session)
	require.NoError(t, err)
	require.True(t, ok)

	rec := postForm(mux, formValues(), &http.Cookie{Name: SessionCookieName, Value: session})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Submitting...")
	assert.Empty(t, backend.received(), "nothing sent while in flight")
	assert.Empty(t, rec.Result().Cookies(), "existing session kept")

	invalid := formValues()
	invalid.Set("email", "")
	rec = postForm(mux, invalid, &http.Cookie{Name: SessionCookieName, Value: session})
	assert.Equal(t, http.StatusConflict, rec.Code, "in-flight check comes before the field gate")
	assert.NotContains(t, rec.Body.String(), ValidationText)
	assert.Empty(t, backend.received())
}

func TestHandler_FormPostTooLong(t *testing.T) {
	backend := &statusBackend{}
	_, mux := setupHandler(t, backend, nil)

	values := formValues()
	values.Set("message", strings.Repeat("x", 4500))
	rec := postForm(mux, values, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Some of your answers are too long.")
	assert.Contains(t, rec.Body.String(), `value="Smith Clinic"`, "fields kept for editing")
	assert.Empty(t, backend.received(), "no network call")
}

func TestHandler_API(t *testing.T) {
	backend := &statusBackend{response: `{"id":"rec-2","client_name":"x","timestamp":"2024-01-01T00:00:00Z"}`}
	_, mux := setupHandler(t, backend, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "success",
			body:       `{"name":"Dr. John Smith","email":"john@example.com"}`,
			wantStatus: http.StatusOK,
			wantBody:   map[string]interface{}{"success": true, "message": SuccessText, "statusId": "rec-2"},
		},
		{
			name:       "missing email",
			body:       `{"name":"Dr. John Smith"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   map[string]interface{}{"success": false, "message": ValidationText},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/inquiries", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}

	assert.Equal(t, []string{"Dr. John Smith - john@example.com - N/A - N/A - N/A - N/A"}, backend.received())
}

func TestHandler_APIBadBodies(t *testing.T) {
	backend := &statusBackend{}
	_, mux := setupHandler(t, backend, nil)

	tests := []struct {
		name     string
		body     string
		status   int
		wantCode string
	}{
		{name: "not json", body: `{"name":`, status: http.StatusBadRequest, wantCode: "INPUT_PARSING_FAILED"},
		{name: "unknown field", body: `{"name":"A","email":"a@b.c","budget":"1"}`, status: http.StatusUnprocessableEntity, wantCode: "VALIDATION_FAILED"},
		{name: "wrong type", body: `{"name":1,"email":"a@b.c"}`, status: http.StatusUnprocessableEntity, wantCode: "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/inquiries", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantCode, got["code"])
		})
	}

	assert.Empty(t, backend.received())
}

func TestHandler_Disabled(t *testing.T) {
	backend := &statusBackend{}
	server := httptest.NewServer(backend)
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Enabled = false
	cfg.BackendURL = server.URL
	h, err := NewHandler(HandlerOptions{CustomConfig: cfg, Logger: logger.NewNoOpLogger()})
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)

	rec := postForm(mux, formValues(), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, backend.received())
}
