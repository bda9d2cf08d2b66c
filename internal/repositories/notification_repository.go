package repositories

import (
	"errors"
	"time"

	"collabhub_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	FindByID(db *gorm.DB, id string) (*models.Notification, error)
	FindByUserID(db *gorm.DB, userID string, limit, offset int) ([]models.Notification, error)
	CountByUserID(db *gorm.DB, userID string) (int64, error)
	CountUnread(db *gorm.DB, userID string) (int64, error)
	MarkRead(db *gorm.DB, id, userID string) error
	MarkAllRead(db *gorm.DB, userID string) error

	// FindForRequest ищет существующее уведомление запроса по JSON-payload
	// и берёт на него блокировку: диспетчер переписывает его на месте,
	// а не плодит по записи на каждый переход.
	FindForRequest(db *gorm.DB, userID, requestID string) (*models.Notification, error)
	Update(db *gorm.DB, notification *models.Notification) error

	DeleteOldRead(db *gorm.DB, olderThan time.Time) (int64, error)
	SoftDeleteByCollaboration(db *gorm.DB, collaborationID string) error
}

type NotificationRepositoryImpl struct{}

func NewNotificationRepository() NotificationRepository {
	return &NotificationRepositoryImpl{}
}

func (r *NotificationRepositoryImpl) Create(db *gorm.DB, notification *models.Notification) error {
	return db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Notification, error) {
	var notification models.Notification
	err := db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) FindByUserID(db *gorm.DB, userID string, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepositoryImpl) CountByUserID(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) CountUnread(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) MarkRead(db *gorm.DB, id, userID string) error {
	now := time.Now()
	result := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllRead(db *gorm.DB, userID string) error {
	now := time.Now()
	return db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *NotificationRepositoryImpl) FindForRequest(db *gorm.DB, userID, requestID string) (*models.Notification, error) {
	var notification models.Notification
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND data->>'collaboration_request_id' = ?", userID, requestID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) Update(db *gorm.DB, notification *models.Notification) error {
	return db.Save(notification).Error
}

// DeleteOldRead удаляет прочитанные уведомления старше порога.
// Вызывается фоновым воркером.
func (r *NotificationRepositoryImpl) DeleteOldRead(db *gorm.DB, olderThan time.Time) (int64, error) {
	result := db.Unscoped().
		Where("is_read = true AND created_at < ?", olderThan).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) SoftDeleteByCollaboration(db *gorm.DB, collaborationID string) error {
	return db.
		Where("data->>'collaboration_id' = ?", collaborationID).
		Delete(&models.Notification{}).Error
}
