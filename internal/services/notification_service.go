package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"collabhub_backend/internal/email"
	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/push"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

// NotificationService - диспетчер побочных эффектов переходов плюс
// операции центра уведомлений.
//
// Запись уведомлений выполняется внутри транзакции перехода (tx),
// поэтому откат перехода откатывает и уведомление. Push и email уходят
// после коммита и на исход транзакции не влияют.
type NotificationService interface {
	// Side effects inside the transition transaction
	RecordMatch(tx *gorm.DB, userID string, collaboration *models.Collaboration, requestID string) error
	RecordInvite(tx *gorm.DB, userID string, collaboration *models.Collaboration, requestID string) error
	RecordTransition(tx *gorm.DB, userID string, collaboration *models.Collaboration, request *models.CollaborationRequest) error

	// Side effects after commit (fire-and-forget)
	PushToUser(db *gorm.DB, userID, title, body string, data map[string]string)
	SendAcceptanceEmail(db *gorm.DB, influencerUserID, brandName, influencerName, collaborationName string)

	// Notification center
	GetUserNotifications(db *gorm.DB, userID string, page, pageSize int) (*dto.NotificationListResponse, error)
	GetUnreadCount(db *gorm.DB, userID string) (int64, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) error

	// Maintenance (вызывается воркером)
	CleanOldNotifications(db *gorm.DB, retentionDays int) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	pushProvider     push.Provider
	emailProvider    email.Provider
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	pushProvider push.Provider,
	emailProvider email.Provider,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pushProvider:     pushProvider,
		emailProvider:    emailProvider,
	}
}

// ---------------- Recording (inside transaction) ----------------

func (s *notificationService) RecordMatch(tx *gorm.DB, userID string, collaboration *models.Collaboration, requestID string) error {
	return s.createRequestNotification(tx, userID,
		models.NotificationTypeCollaborationMatch,
		"Новая коллаборация для вас",
		fmt.Sprintf("Коллаборация «%s» подходит вашему профилю", collaboration.Name),
		collaboration, requestID, int(models.RequestStatusPending),
	)
}

// RecordInvite переписывает match-уведомление пары (если fan-out уже
// создал его) в приглашение или создает новое.
func (s *notificationService) RecordInvite(tx *gorm.DB, userID string, collaboration *models.Collaboration, requestID string) error {
	return s.upsertRequestNotification(tx, userID,
		models.NotificationTypeCollaborationInvite,
		"Приглашение в коллаборацию",
		fmt.Sprintf("Бренд приглашает вас в коллаборацию «%s»", collaboration.Name),
		collaboration, requestID, int(models.RequestStatusInvited),
	)
}

// RecordTransition переписывает существующее уведомление запроса
// (JSON-зеркало статуса) или создает новое, если его еще нет.
func (s *notificationService) RecordTransition(tx *gorm.DB, userID string, collaboration *models.Collaboration, request *models.CollaborationRequest) error {
	return s.upsertRequestNotification(tx, userID,
		models.NotificationTypeRequestStatus,
		"Статус заявки изменился",
		fmt.Sprintf("Заявка по коллаборации «%s»: %s", collaboration.Name, request.Status.String()),
		collaboration, request.ID, int(request.Status),
	)
}

// upsertRequestNotification - JSON-зеркало запроса: на запрос существует
// не больше одного уведомления, очередной переход переписывает его на
// месте. Строка блокируется FOR UPDATE, чтобы конкурирующие переходы не
// потеряли друг друга.
func (s *notificationService) upsertRequestNotification(tx *gorm.DB, userID, notifType, title, message string, collaboration *models.Collaboration, requestID string, status int) error {
	existing, err := s.notificationRepo.FindForRequest(tx, userID, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return s.createRequestNotification(tx, userID,
				notifType, title, message, collaboration, requestID, status,
			)
		}
		return err
	}

	data, err := marshalRequestData(collaboration, requestID, status)
	if err != nil {
		return err
	}

	existing.Type = notifType
	existing.Title = title
	existing.Message = message
	existing.Data = data
	// Переход делает уведомление снова актуальным
	existing.IsRead = false
	existing.ReadAt = nil
	return s.notificationRepo.Update(tx, existing)
}

func (s *notificationService) createRequestNotification(tx *gorm.DB, userID, notifType, title, message string, collaboration *models.Collaboration, requestID string, status int) error {
	data, err := marshalRequestData(collaboration, requestID, status)
	if err != nil {
		return err
	}
	return s.notificationRepo.Create(tx, &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	})
}

func marshalRequestData(collaboration *models.Collaboration, requestID string, status int) (datatypes.JSON, error) {
	payload := models.RequestNotificationData{
		CollaborationID:        collaboration.ID,
		CollaborationRequestID: requestID,
		CollaborationName:      collaboration.Name,
		Status:                 status,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal notification data: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// ---------------- Delivery (after commit) ----------------

// PushToUser отправляет push в отдельной горутине. Ошибки доставки
// только логируются.
func (s *notificationService) PushToUser(db *gorm.DB, userID, title, body string, data map[string]string) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil || user.FCMToken == "" {
		return
	}
	token := user.FCMToken

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := s.pushProvider.Send(ctx, &push.Message{
			Token: token,
			Title: title,
			Body:  body,
			Data:  data,
		})
		logger.DispatchLog("push", userID, err)
	}()
}

// SendAcceptanceEmail отправляет инфлюенсеру письмо о принятии заявки.
func (s *notificationService) SendAcceptanceEmail(db *gorm.DB, influencerUserID, brandName, influencerName, collaborationName string) {
	user, err := s.userRepo.FindByID(db, influencerUserID)
	if err != nil || user.Email == "" {
		return
	}
	to := user.Email

	go func() {
		err := s.emailProvider.SendTemplate(
			[]string{to},
			"Ваша заявка принята",
			email.TemplateCollaborationAccepted,
			email.TemplateData{
				"InfluencerName":    influencerName,
				"BrandName":         brandName,
				"CollaborationName": collaborationName,
			},
		)
		logger.DispatchLog("email", to, err)
	}()
}

// ---------------- Notification center ----------------

func (s *notificationService) GetUserNotifications(db *gorm.DB, userID string, page, pageSize int) (*dto.NotificationListResponse, error) {
	offset := (page - 1) * pageSize
	notifications, err := s.notificationRepo.FindByUserID(db, userID, pageSize, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	total, err := s.notificationRepo.CountByUserID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	unread, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, buildNotificationResponse(&notifications[i]))
	}
	return &dto.NotificationListResponse{
		Notifications: items,
		Total:         int(total),
		UnreadCount:   unread,
	}, nil
}

func (s *notificationService) GetUnreadCount(db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	err := s.notificationRepo.MarkRead(db, notificationID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(db *gorm.DB, userID string) error {
	if err := s.notificationRepo.MarkAllRead(db, userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ---------------- Maintenance ----------------

func (s *notificationService) CleanOldNotifications(db *gorm.DB, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.notificationRepo.DeleteOldRead(db, cutoff)
}

func buildNotificationResponse(n *models.Notification) *dto.NotificationResponse {
	var data map[string]interface{}
	if len(n.Data) > 0 {
		_ = json.Unmarshal(n.Data, &data)
	}
	return &dto.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
