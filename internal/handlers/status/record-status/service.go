package recordstatus

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"maglinc-site/internal/common/errors"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/metrics"
	"maglinc-site/internal/common/observability"
	"maglinc-site/internal/handlers/status/notify"
	"maglinc-site/internal/handlers/status/store"
	"maglinc-site/internal/models"
)

type Service struct {
	repo     store.Repository
	notifier notify.Notifier
	logger   logger.Logger
	obs      *observability.Observability
	config   *Config

	nowFn func() time.Time
	idFn  func() string
}

func NewService(deps ServiceDependencies, cfg *Config) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     deps.Repository,
		notifier: notifier,
		logger:   log,
		obs:      deps.Observability,
		config:   cfg,
		nowFn:    time.Now,
		idFn:     uuid.NewString,
	}
}

// Execute stores a record for payload and notifies staff. Notification
// failures are logged by the notifier and do not fail the call.
func (s *Service) Execute(ctx context.Context, payload *models.StatusPayload) (*Output, error) {
	// stored verbatim; readers escape on output
	clientName := payload.ClientName
	if strings.TrimSpace(clientName) == "" {
		return nil, errors.NewValidationFailedError("client_name is blank")
	}

	rec := models.StatusRecord{
		ID:         s.idFn(),
		ClientName: clientName,
		Timestamp:  s.nowFn().UTC(),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if err := s.repo.Create(storeCtx, &rec); err != nil {
		s.logger.Error("Failed to store status record", map[string]interface{}{
			"recordId":  rec.ID,
			"store":     s.repo.Name(),
			"errorCode": errors.CodeOf(err),
			"error":     err,
		})
		if _, ok := err.(*errors.StandardError); ok {
			return nil, err
		}
		return nil, errors.NewStatusStoreFailedError("insert", err)
	}

	metrics.StatusRecordsCreated.Inc()
	s.obs.RecordStatusRecord(ctx, s.repo.Name())

	s.logger.Info("Status record stored", map[string]interface{}{
		"recordId":   rec.ID,
		"store":      s.repo.Name(),
		"nameLength": len(rec.ClientName),
	})

	// staff alerts outlive a cancelled request
	notifyCtx, cancelNotify := context.WithTimeout(context.WithoutCancel(ctx), s.config.NotifyTimeout)
	defer cancelNotify()

	return &Output{
		Record:        rec,
		Notifications: s.notifier.Notify(notifyCtx, rec),
	}, nil
}
