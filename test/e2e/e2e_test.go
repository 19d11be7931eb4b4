// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/database"
	"maglinc-site/internal/common/guard"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/server"
	submitinquiry "maglinc-site/internal/handlers/contact/submit-inquiry"
	liststatus "maglinc-site/internal/handlers/status/list-status"
	recordstatus "maglinc-site/internal/handlers/status/record-status"
	"maglinc-site/internal/handlers/status/store"
	"maglinc-site/internal/models"
)

func startStatusAPI(t *testing.T, repo store.Repository) *httptest.Server {
	t.Helper()
	log := logger.NewTestLogger(t)

	record, err := recordstatus.NewHandler(recordstatus.HandlerOptions{Logger: log, Repository: repo})
	require.NoError(t, err)
	list, err := liststatus.NewHandler(liststatus.HandlerOptions{Logger: log, Repository: repo})
	require.NoError(t, err)

	mux := http.NewServeMux()
	record.Register(mux)
	list.Register(mux)
	server.RegisterHealth(mux, map[string]server.ReadyCheck{repo.Name(): repo.Ping})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func startSite(t *testing.T, backendURL string, g guard.Guard) *httptest.Server {
	t.Helper()
	cfg := submitinquiry.DefaultConfig()
	cfg.BackendURL = backendURL
	cfg.Timeout = 5 * time.Second

	h, err := submitinquiry.NewHandler(submitinquiry.HandlerOptions{
		CustomConfig: cfg,
		Logger:       logger.NewTestLogger(t),
		Guard:        g,
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	server.RegisterHealth(mux, nil)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func listRecords(t *testing.T, statusURL string) []models.StatusRecord {
	t.Helper()
	resp, err := http.Get(statusURL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []models.StatusRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	return records
}

func postContact(t *testing.T, siteURL string, values url.Values, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, siteURL+"/contact", strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var b strings.Builder
	_, _ = io.Copy(&b, resp.Body)
	return resp, b.String()
}

func TestRoundTrip_FormPostStoresComposedName(t *testing.T) {
	statusAPI := startStatusAPI(t, store.NewMemory())
	site := startSite(t, statusAPI.URL+"/", nil)

	resp, body := postContact(t, site.URL, url.Values{
		"name":  {"Dr. John Smith"},
		"email": {"john@example.com"},
	}, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "toast-success")

	records := listRecords(t, statusAPI.URL)
	require.Len(t, records, 1)
	assert.Equal(t, "Dr. John Smith - john@example.com - N/A - N/A - N/A - N/A", records[0].ClientName)
	_, err := uuid.Parse(records[0].ID)
	assert.NoError(t, err)
}

func TestRoundTrip_JSONPreservesText(t *testing.T) {
	statusAPI := startStatusAPI(t, store.NewMemory())
	site := startSite(t, statusAPI.URL, nil)

	in := submitinquiry.Inquiry{
		Name:       `Renée O'Brien "RB"`,
		Email:      "rb@smith-and-co.law",
		Phone:      "+1 (555) 010-0199",
		Practice:   "Smith & Co",
		CaseVolume: "20-30 cases/month",
		Message:    "Line one\nLine two - with dash",
	}
	payload, err := json.Marshal(in)
	require.NoError(t, err)

	resp, err := http.Post(site.URL+"/api/inquiries", "application/json", strings.NewReader(string(payload)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var apiResp submitinquiry.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiResp))
	assert.True(t, apiResp.Success)
	assert.Equal(t, submitinquiry.SuccessText, apiResp.Message)

	records := listRecords(t, statusAPI.URL)
	require.Len(t, records, 1)
	assert.Equal(t, apiResp.StatusID, records[0].ID)
	assert.Equal(t, submitinquiry.ComposeClientName(in), records[0].ClientName)
}

func TestRoundTrip_AngleBracketsStoredExactly(t *testing.T) {
	statusAPI := startStatusAPI(t, store.NewMemory())
	site := startSite(t, statusAPI.URL, nil)

	messages := []string{
		"need help with a<b and more text",
		"I use <ehr system> daily",
	}
	for _, msg := range messages {
		resp, body := postContact(t, site.URL, url.Values{
			"name":    {"Jane"},
			"email":   {"j@x.com"},
			"message": {msg},
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "toast-success")
	}

	records := listRecords(t, statusAPI.URL)
	require.Len(t, records, 2)
	assert.ElementsMatch(t, []string{
		"Jane - j@x.com - N/A - N/A - N/A - need help with a<b and more text",
		"Jane - j@x.com - N/A - N/A - N/A - I use <ehr system> daily",
	}, []string{records[0].ClientName, records[1].ClientName})
}

func TestRoundTrip_TooLongMessageNeverSent(t *testing.T) {
	statusAPI := startStatusAPI(t, store.NewMemory())
	site := startSite(t, statusAPI.URL, nil)

	resp, body := postContact(t, site.URL, url.Values{
		"name":    {"Jane"},
		"email":   {"j@x.com"},
		"message": {strings.Repeat("x", 4500)},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, submitinquiry.TooLongText)
	assert.Empty(t, listRecords(t, statusAPI.URL))
}

func TestRoundTrip_ListNewestFirst(t *testing.T) {
	statusAPI := startStatusAPI(t, store.NewMemory())
	site := startSite(t, statusAPI.URL, nil)

	for i := 0; i < 3; i++ {
		resp, _ := postContact(t, site.URL, url.Values{
			"name":  {"Client " + strconv.Itoa(i)},
			"email": {"c@example.com"},
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		time.Sleep(2 * time.Millisecond)
	}

	records := listRecords(t, statusAPI.URL)
	require.Len(t, records, 3)
	assert.True(t, strings.HasPrefix(records[0].ClientName, "Client 2 - "))
	assert.True(t, strings.HasPrefix(records[2].ClientName, "Client 0 - "))
}

func TestRoundTrip_StatusAPIDown(t *testing.T) {
	statusAPI := startStatusAPI(t, store.NewMemory())
	backendURL := statusAPI.URL
	statusAPI.Close()

	site := startSite(t, backendURL, nil)
	values := url.Values{"name": {"Jane"}, "email": {"jane@firm.com"}, "message": {"keep me"}}

	resp, body := postContact(t, site.URL, values, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "toast-error")
	assert.Contains(t, body, "keep me")
}

func TestRoundTrip_SharedRedisGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { rdb.Close() })

	g, err := guard.New(config.GuardConfig{Backend: "redis", TTL: 35000}, rdb)
	require.NoError(t, err)

	statusAPI := startStatusAPI(t, store.NewMemory())
	replicaA := startSite(t, statusAPI.URL, g)
	replicaB := startSite(t, statusAPI.URL, g)

	session := &http.Cookie{Name: submitinquiry.SessionCookieName, Value: uuid.NewString()}
	values := url.Values{"name": {"Jane"}, "email": {"jane@firm.com"}}

	// another replica is mid-request for this session
	require.NoError(t, mr.Set("maglinc:inflight:"+session.Value, "submitting"))

	resp, _ := postContact(t, replicaB.URL, values, session)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Empty(t, listRecords(t, statusAPI.URL))

	mr.Del("maglinc:inflight:" + session.Value)

	resp, _ = postContact(t, replicaA.URL, values, session)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listRecords(t, statusAPI.URL), 1)
	assert.False(t, mr.Exists("maglinc:inflight:"+session.Value))
}

// TestRoundTrip_Postgres needs a reachable database; set DB_HOST (and the
// other DB_* variables) to run it.
func TestRoundTrip_Postgres(t *testing.T) {
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := database.NewPostgres(ctx, cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()

	repo := store.NewPostgres(pg)
	require.NoError(t, repo.EnsureSchema(ctx))

	statusAPI := startStatusAPI(t, repo)
	site := startSite(t, statusAPI.URL, nil)

	name := "E2E " + uuid.NewString()
	resp, _ := postContact(t, site.URL, url.Values{"name": {name}, "email": {"e2e@example.com"}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	records := listRecords(t, statusAPI.URL)
	require.NotEmpty(t, records)
	assert.Equal(t, name+" - e2e@example.com - N/A - N/A - N/A - N/A", records[0].ClientName)

	_, err = pg.Exec(ctx, `DELETE FROM status_checks WHERE id = $1`, records[0].ID)
	assert.NoError(t, err)
}
