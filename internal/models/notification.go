package models

import (
	"gorm.io/datatypes"
	"time"
)

type Notification struct {
	BaseModelWithDeleted
	UserID  string `gorm:"not null;index"`
	Type    string `gorm:"not null"` // "collaboration_match", "request_status", "collaboration_invite"
	Title   string `gorm:"not null"`
	Message string
	Data    datatypes.JSON `gorm:"type:jsonb"` // {"collaboration_id": ..., "collaboration_request_id": ..., "status": ...}
	IsRead  bool           `gorm:"default:false"`
	ReadAt  *time.Time
}

// Типы уведомлений
const (
	NotificationTypeCollaborationMatch  = "collaboration_match"
	NotificationTypeCollaborationInvite = "collaboration_invite"
	NotificationTypeRequestStatus       = "request_status"
	NotificationTypeNewMessage          = "new_message"
)

// RequestNotificationData - payload уведомления, связанного с запросом.
// Поле Status дублирует статус запроса и переписывается диспетчером
// при каждом переходе.
type RequestNotificationData struct {
	CollaborationID        string `json:"collaboration_id"`
	CollaborationRequestID string `json:"collaboration_request_id"`
	CollaborationName      string `json:"collaboration_name,omitempty"`
	Status                 int    `json:"status"`
}
