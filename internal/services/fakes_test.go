package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"collabhub_backend/internal/email"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/push"
	"collabhub_backend/internal/repositories"
)

// In-memory реализации репозиториев для юнит-тестов сервисов.
// Аргумент db игнорируется: сервисы тестируются без базы.

func overlap(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// ---------------- users ----------------

type fakeUserRepo struct {
	users map[string]*models.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(db *gorm.DB, user *models.User) error {
	if user.ID == "" {
		r.seq++
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(db *gorm.DB, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(db *gorm.DB, emailAddr string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == emailAddr {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateFCMToken(db *gorm.DB, userID, token string) error {
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.FCMToken = token
	return nil
}

func (r *fakeUserRepo) FCMTokens(db *gorm.DB, userIDs []string) ([]string, error) {
	var tokens []string
	for _, id := range userIDs {
		if user, ok := r.users[id]; ok && user.FCMToken != "" {
			tokens = append(tokens, user.FCMToken)
		}
	}
	return tokens, nil
}

// ---------------- profiles ----------------

type fakeProfileRepo struct {
	brands      map[string]*models.Brand
	influencers map[string]*models.Influencer
	seq         int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		brands:      make(map[string]*models.Brand),
		influencers: make(map[string]*models.Influencer),
	}
}

func (r *fakeProfileRepo) CreateBrand(db *gorm.DB, brand *models.Brand) error {
	if brand.ID == "" {
		r.seq++
		brand.ID = fmt.Sprintf("brand-%d", r.seq)
	}
	r.brands[brand.ID] = brand
	return nil
}

func (r *fakeProfileRepo) FindBrandByID(db *gorm.DB, id string) (*models.Brand, error) {
	brand, ok := r.brands[id]
	if !ok {
		return nil, repositories.ErrBrandNotFound
	}
	return brand, nil
}

func (r *fakeProfileRepo) FindBrandByUserID(db *gorm.DB, userID string) (*models.Brand, error) {
	for _, brand := range r.brands {
		if brand.UserID == userID {
			return brand, nil
		}
	}
	return nil, repositories.ErrBrandNotFound
}

func (r *fakeProfileRepo) CreateInfluencer(db *gorm.DB, influencer *models.Influencer) error {
	if influencer.ID == "" {
		r.seq++
		influencer.ID = fmt.Sprintf("influencer-%d", r.seq)
	}
	r.influencers[influencer.ID] = influencer
	return nil
}

func (r *fakeProfileRepo) FindInfluencerByID(db *gorm.DB, id string) (*models.Influencer, error) {
	influencer, ok := r.influencers[id]
	if !ok {
		return nil, repositories.ErrInfluencerNotFound
	}
	return influencer, nil
}

func (r *fakeProfileRepo) FindInfluencerByUserID(db *gorm.DB, userID string) (*models.Influencer, error) {
	for _, influencer := range r.influencers {
		if influencer.UserID == userID {
			return influencer, nil
		}
	}
	return nil, repositories.ErrInfluencerNotFound
}

func (r *fakeProfileRepo) UpdateInfluencer(db *gorm.DB, influencer *models.Influencer) error {
	r.influencers[influencer.ID] = influencer
	return nil
}

func (r *fakeProfileRepo) FindEligibleInfluencers(db *gorm.DB, categories []string, amount float64) ([]models.Influencer, error) {
	var result []models.Influencer
	for _, influencer := range r.influencers {
		if overlap(categories, influencer.GetCategories()) && influencer.CollabValue <= amount {
			result = append(result, *influencer)
		}
	}
	return result, nil
}

// ---------------- collaborations ----------------

type fakeCollaborationRepo struct {
	collaborations map[string]*models.Collaboration
	seq            int
}

func newFakeCollaborationRepo() *fakeCollaborationRepo {
	return &fakeCollaborationRepo{collaborations: make(map[string]*models.Collaboration)}
}

func (r *fakeCollaborationRepo) Create(db *gorm.DB, collaboration *models.Collaboration) error {
	if collaboration.ID == "" {
		r.seq++
		collaboration.ID = fmt.Sprintf("collab-%d", r.seq)
	}
	if collaboration.Status == "" {
		collaboration.Status = models.CollaborationStatusPending
	}
	r.collaborations[collaboration.ID] = collaboration
	return nil
}

func (r *fakeCollaborationRepo) FindByID(db *gorm.DB, id string) (*models.Collaboration, error) {
	collaboration, ok := r.collaborations[id]
	if !ok {
		return nil, repositories.ErrCollaborationNotFound
	}
	return collaboration, nil
}

func (r *fakeCollaborationRepo) FindByBrandID(db *gorm.DB, brandID string) ([]models.Collaboration, error) {
	var result []models.Collaboration
	for _, collaboration := range r.collaborations {
		if collaboration.BrandID == brandID {
			result = append(result, *collaboration)
		}
	}
	return result, nil
}

func (r *fakeCollaborationRepo) UpdateStatus(db *gorm.DB, id string, status models.CollaborationStatus) error {
	collaboration, ok := r.collaborations[id]
	if !ok {
		return repositories.ErrCollaborationNotFound
	}
	collaboration.Status = status
	return nil
}

func (r *fakeCollaborationRepo) SoftDelete(db *gorm.DB, id string) error {
	delete(r.collaborations, id)
	return nil
}

func (r *fakeCollaborationRepo) FindEligibleForInfluencer(db *gorm.DB, categories []string, collabValue float64, now time.Time) ([]models.Collaboration, error) {
	var result []models.Collaboration
	for _, collaboration := range r.collaborations {
		if collaboration.Status == models.CollaborationStatusCompleted ||
			collaboration.Status == models.CollaborationStatusClosed {
			continue
		}
		if collaboration.HasEnded(now) {
			continue
		}
		if overlap(categories, collaboration.GetCategories()) && collaboration.Amount >= collabValue {
			result = append(result, *collaboration)
		}
	}
	return result, nil
}

// ---------------- requests ----------------

type fakeRequestRepo struct {
	requests []*models.CollaborationRequest
	seq      int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{}
}

func (r *fakeRequestRepo) CreateIfAbsent(db *gorm.DB, request *models.CollaborationRequest) error {
	for _, existing := range r.requests {
		if existing.CollaborationID == request.CollaborationID && existing.InfluencerID == request.InfluencerID {
			return repositories.ErrRequestAlreadyExists
		}
	}
	r.seq++
	request.ID = fmt.Sprintf("request-%d", r.seq)
	r.requests = append(r.requests, request)
	return nil
}

func (r *fakeRequestRepo) FindByID(db *gorm.DB, id string) (*models.CollaborationRequest, error) {
	for _, request := range r.requests {
		if request.ID == id {
			return request, nil
		}
	}
	return nil, repositories.ErrRequestNotFound
}

func (r *fakeRequestRepo) FindByPair(db *gorm.DB, collaborationID, influencerID string) (*models.CollaborationRequest, error) {
	for _, request := range r.requests {
		if request.CollaborationID == collaborationID && request.InfluencerID == influencerID {
			return request, nil
		}
	}
	return nil, repositories.ErrRequestNotFound
}

func (r *fakeRequestRepo) FindByCollaborationID(db *gorm.DB, collaborationID string) ([]models.CollaborationRequest, error) {
	var result []models.CollaborationRequest
	for _, request := range r.requests {
		if request.CollaborationID == collaborationID {
			result = append(result, *request)
		}
	}
	return result, nil
}

func (r *fakeRequestRepo) FindByCollaborationIDAndStatus(db *gorm.DB, collaborationID string, status models.RequestStatus) ([]models.CollaborationRequest, error) {
	var result []models.CollaborationRequest
	for _, request := range r.requests {
		if request.CollaborationID == collaborationID && request.Status == status {
			result = append(result, *request)
		}
	}
	return result, nil
}

func (r *fakeRequestRepo) FindByInfluencerID(db *gorm.DB, influencerID string) ([]models.CollaborationRequest, error) {
	var result []models.CollaborationRequest
	for _, request := range r.requests {
		if request.InfluencerID == influencerID {
			result = append(result, *request)
		}
	}
	return result, nil
}

func (r *fakeRequestRepo) UpdateStatusGuarded(db *gorm.DB, id string, guard []models.RequestStatus, to models.RequestStatus) error {
	for _, request := range r.requests {
		if request.ID == id {
			if !request.Status.InGuard(guard) {
				return repositories.ErrGuardViolated
			}
			request.Status = to
			return nil
		}
	}
	return repositories.ErrGuardViolated
}

func (r *fakeRequestRepo) ExistsWithStatus(db *gorm.DB, collaborationID string, status models.RequestStatus) (bool, error) {
	for _, request := range r.requests {
		if request.CollaborationID == collaborationID && request.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRequestRepo) SoftDeleteByCollaboration(db *gorm.DB, collaborationID string) error {
	kept := r.requests[:0]
	for _, request := range r.requests {
		if request.CollaborationID != collaborationID {
			kept = append(kept, request)
		}
	}
	r.requests = kept
	return nil
}

// ---------------- notifications ----------------

type fakeNotificationRepo struct {
	notifications []*models.Notification
	seq           int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(db *gorm.DB, notification *models.Notification) error {
	r.seq++
	notification.ID = fmt.Sprintf("notification-%d", r.seq)
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) FindByID(db *gorm.DB, id string) (*models.Notification, error) {
	for _, notification := range r.notifications {
		if notification.ID == id {
			return notification, nil
		}
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) FindByUserID(db *gorm.DB, userID string, limit, offset int) ([]models.Notification, error) {
	var all []models.Notification
	for _, notification := range r.notifications {
		if notification.UserID == userID {
			all = append(all, *notification)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeNotificationRepo) CountByUserID(db *gorm.DB, userID string) (int64, error) {
	var count int64
	for _, notification := range r.notifications {
		if notification.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) CountUnread(db *gorm.DB, userID string) (int64, error) {
	var count int64
	for _, notification := range r.notifications {
		if notification.UserID == userID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(db *gorm.DB, id, userID string) error {
	for _, notification := range r.notifications {
		if notification.ID == id && notification.UserID == userID {
			now := time.Now()
			notification.IsRead = true
			notification.ReadAt = &now
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(db *gorm.DB, userID string) error {
	now := time.Now()
	for _, notification := range r.notifications {
		if notification.UserID == userID && !notification.IsRead {
			notification.IsRead = true
			notification.ReadAt = &now
		}
	}
	return nil
}

func (r *fakeNotificationRepo) FindForRequest(db *gorm.DB, userID, requestID string) (*models.Notification, error) {
	for _, notification := range r.notifications {
		if notification.UserID != userID {
			continue
		}
		var data models.RequestNotificationData
		if err := json.Unmarshal(notification.Data, &data); err != nil {
			continue
		}
		if data.CollaborationRequestID == requestID {
			return notification, nil
		}
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) Update(db *gorm.DB, notification *models.Notification) error {
	for i, existing := range r.notifications {
		if existing.ID == notification.ID {
			r.notifications[i] = notification
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) DeleteOldRead(db *gorm.DB, olderThan time.Time) (int64, error) {
	var deleted int64
	kept := r.notifications[:0]
	for _, notification := range r.notifications {
		if notification.IsRead && notification.CreatedAt.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, notification)
	}
	r.notifications = kept
	return deleted, nil
}

func (r *fakeNotificationRepo) SoftDeleteByCollaboration(db *gorm.DB, collaborationID string) error {
	kept := r.notifications[:0]
	for _, notification := range r.notifications {
		var data models.RequestNotificationData
		if err := json.Unmarshal(notification.Data, &data); err == nil && data.CollaborationID == collaborationID {
			continue
		}
		kept = append(kept, notification)
	}
	r.notifications = kept
	return nil
}

// ---------------- chats ----------------

type fakeChatRepo struct {
	chats []*models.Chat
	seq   int

	// Имитация гонки двух принятий: следующий поиск пары промахивается,
	// и конфликт разрешает уникальный ключ пары
	missNextDirectLookup bool
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{}
}

func (r *fakeChatRepo) FindDirectChatBetween(db *gorm.DB, userA, userB string) (*models.Chat, error) {
	if r.missNextDirectLookup {
		r.missNextDirectLookup = false
		return nil, repositories.ErrChatNotFound
	}
	key := models.ChatPairKey(userA, userB)
	for _, chat := range r.chats {
		if chat.PairKey == key {
			return chat, nil
		}
	}
	return nil, repositories.ErrChatNotFound
}

func (r *fakeChatRepo) CreateDirectChat(db *gorm.DB, createdBy, userA, userB string) (*models.Chat, error) {
	key := models.ChatPairKey(userA, userB)
	for _, chat := range r.chats {
		if chat.PairKey == key {
			return nil, repositories.ErrChatAlreadyExists
		}
	}
	r.seq++
	chat := &models.Chat{CreatedBy: createdBy, PairKey: key}
	chat.ID = fmt.Sprintf("chat-%d", r.seq)
	for _, userID := range []string{userA, userB} {
		chat.Participants = append(chat.Participants, models.ChatParticipant{
			ChatID:   chat.ID,
			UserID:   userID,
			JoinedAt: time.Now(),
		})
	}
	r.chats = append(r.chats, chat)
	return chat, nil
}

func (r *fakeChatRepo) FindByID(db *gorm.DB, id string) (*models.Chat, error) {
	for _, chat := range r.chats {
		if chat.ID == id {
			return chat, nil
		}
	}
	return nil, repositories.ErrChatNotFound
}

func (r *fakeChatRepo) FindUserChats(db *gorm.DB, userID string) ([]models.Chat, error) {
	var result []models.Chat
	for _, chat := range r.chats {
		for _, p := range chat.Participants {
			if p.UserID == userID {
				result = append(result, *chat)
				break
			}
		}
	}
	return result, nil
}

func (r *fakeChatRepo) IsParticipant(db *gorm.DB, chatID, userID string) (bool, error) {
	for _, chat := range r.chats {
		if chat.ID != chatID {
			continue
		}
		for _, p := range chat.Participants {
			if p.UserID == userID {
				return true, nil
			}
		}
	}
	return false, nil
}

// ---------------- delivery ----------------

// capturePushProvider отдает отправленные сообщения в канал: доставка
// идет из горутины, тест ждет через канал.
type capturePushProvider struct {
	messages chan *push.Message
}

func newCapturePushProvider() *capturePushProvider {
	return &capturePushProvider{messages: make(chan *push.Message, 8)}
}

func (p *capturePushProvider) Send(ctx context.Context, msg *push.Message) error {
	p.messages <- msg
	return nil
}

type sentTemplate struct {
	To       []string
	Subject  string
	Template string
	Data     email.TemplateData
}

type captureEmailProvider struct {
	templates chan sentTemplate
}

func newCaptureEmailProvider() *captureEmailProvider {
	return &captureEmailProvider{templates: make(chan sentTemplate, 8)}
}

func (p *captureEmailProvider) Send(msg *email.Email) error { return nil }

func (p *captureEmailProvider) SendTemplate(to []string, subject string, templateName string, data email.TemplateData) error {
	p.templates <- sentTemplate{To: to, Subject: subject, Template: templateName, Data: data}
	return nil
}

func (p *captureEmailProvider) Validate() error { return nil }
