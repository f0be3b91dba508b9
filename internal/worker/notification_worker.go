package worker

import (
	"github.com/helpr-dev/helpr/internal/service"
)

// StartNotificationWorker registers the change-notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
