package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/services"
)

// NotificationWorker периодически удаляет старые прочитанные уведомления.
type NotificationWorker struct {
	db            *gorm.DB
	notifications services.NotificationService
	retentionDays int
}

func NewNotificationWorker(db *gorm.DB, notifications services.NotificationService, retentionDays int) *NotificationWorker {
	return &NotificationWorker{
		db:            db,
		notifications: notifications,
		retentionDays: retentionDays,
	}
}

// Start запускает фоновые задачи уведомлений
func (w *NotificationWorker) Start(ctx context.Context) {
	go w.cleanOldNotifications(ctx)
}

func (w *NotificationWorker) cleanOldNotifications(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		case <-ticker.C:
			deleted, err := w.notifications.CleanOldNotifications(w.db, w.retentionDays)
			logger.WorkerLog("notification_cleanup", "clean_old_read", err)
			if err == nil && deleted > 0 {
				logger.Info("Old notifications cleaned", "deleted", deleted)
			}
		}
	}
}
