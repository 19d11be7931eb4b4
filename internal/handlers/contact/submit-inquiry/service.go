package submitinquiry

import (
	"context"
	"time"

	"maglinc-site/internal/common/errors"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/metrics"
	"maglinc-site/internal/common/observability"
	"maglinc-site/internal/models"
)

type Service struct {
	config *Config
	logger logger.Logger
	client StatusPoster
	obs    *observability.Observability
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	client := deps.Client
	if client == nil {
		client = NewStatusClient(config.BackendURL, config.Timeout, deps.Logger)
	}

	return &Service{
		config: config,
		logger: deps.Logger,
		client: client,
		obs:    deps.Observability,
	}
}

// Execute composes the inquiry and delivers it with exactly one request.
func (s *Service) Execute(ctx context.Context, input *Inquiry) (*Output, error) {
	if err := ValidateInquiry(input); err != nil {
		return nil, err
	}

	clientName := ComposeClientName(*input)

	s.logger.Info("Submitting contact inquiry", map[string]interface{}{
		"email":    input.Email,
		"practice": input.Practice,
		"length":   len(clientName),
	})

	start := time.Now()
	record, err := s.client.PostStatus(ctx, models.StatusPayload{ClientName: clientName})
	elapsed := time.Since(start)

	if err != nil {
		metrics.InquirySubmitDuration.WithLabelValues(string(OutcomeFailed)).Observe(elapsed.Seconds())
		s.obs.RecordSubmissionDuration(ctx, elapsed, string(OutcomeFailed))

		stdErr := errors.AsStandardError(err)
		s.logger.Error("Contact inquiry delivery failed", map[string]interface{}{
			"errorCode":  string(stdErr.Code),
			"details":    stdErr.Details,
			"retryable":  stdErr.Retryable,
			"durationMs": elapsed.Milliseconds(),
		})
		return nil, stdErr
	}

	metrics.InquirySubmitDuration.WithLabelValues(string(OutcomeSucceeded)).Observe(elapsed.Seconds())
	s.obs.RecordSubmissionDuration(ctx, elapsed, string(OutcomeSucceeded))

	output := &Output{
		Success:    true,
		Message:    SuccessText,
		ClientName: clientName,
	}
	if record != nil {
		output.StatusID = record.ID
	}

	s.logger.Info("Contact inquiry delivered", map[string]interface{}{
		"statusId":   output.StatusID,
		"durationMs": elapsed.Milliseconds(),
	})

	return output, nil
}
