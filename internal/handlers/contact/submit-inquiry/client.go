package submitinquiry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"maglinc-site/internal/common/errors"
	commonhttp "maglinc-site/internal/common/http"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/observability"
	"maglinc-site/internal/models"
)

const statusPath = "/api/status"

// StatusPoster delivers a payload to the status endpoint.
type StatusPoster interface {
	PostStatus(ctx context.Context, payload models.StatusPayload) (*models.StatusRecord, error)
}

// StatusClient posts to {baseURL}/api/status.
type StatusClient struct {
	endpoint   string
	httpClient *commonhttp.Client
	logger     logger.Logger
}

func NewStatusClient(baseURL string, timeout time.Duration, log logger.Logger) *StatusClient {
	return NewStatusClientWith(baseURL, commonhttp.NewClient(timeout), log)
}

// NewStatusClientWith uses an existing HTTP client.
func NewStatusClientWith(baseURL string, httpClient *commonhttp.Client, log logger.Logger) *StatusClient {
	return &StatusClient{
		endpoint:   StatusEndpoint(baseURL),
		httpClient: httpClient,
		logger:     log,
	}
}

// StatusEndpoint joins the base URL and the status path, tolerating a
// trailing slash on the base.
func StatusEndpoint(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + statusPath
}

// PostStatus sends one request. Any 2xx counts as delivered; the returned
// record is nil when the body is not a status record.
func (c *StatusClient) PostStatus(ctx context.Context, payload models.StatusPayload) (record *models.StatusRecord, err error) {
	ctx, span := observability.StartSpan(ctx, "status.post", attribute.String("http.url", c.endpoint))
	defer func() { observability.EndSpan(span, err) }()

	resp, err := c.httpClient.PostJSON(ctx, c.endpoint, payload)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.NewBackendTimeoutError(err)
		}
		return nil, errors.NewSubmissionFailedError(err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !resp.OK() {
		return nil, errors.NewBackendRejectedError(resp.StatusCode, truncate(string(resp.Body), 512))
	}

	var rec models.StatusRecord
	if jsonErr := json.Unmarshal(resp.Body, &rec); jsonErr != nil || rec.ID == "" {
		c.logger.Debug("Status response is not a record", map[string]interface{}{
			"statusCode": resp.StatusCode,
		})
		return nil, nil
	}
	return &rec, nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
