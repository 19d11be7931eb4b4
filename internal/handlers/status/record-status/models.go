package recordstatus

import (
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/observability"
	"maglinc-site/internal/handlers/status/notify"
	"maglinc-site/internal/handlers/status/store"
	"maglinc-site/internal/models"
)

// Output is the stored record plus what the staff notifier did with it.
type Output struct {
	Record        models.StatusRecord
	Notifications []models.StaffNotification
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Repository    store.Repository
	Notifier      notify.Notifier
	Observability *observability.Observability
}
