package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
)

// MatchResult - созданная fan-out'ом пара. По ней после коммита
// транзакции отправляется push подходящему инфлюенсеру.
type MatchResult struct {
	RequestID         string
	CollaborationID   string
	CollaborationName string
	InfluencerUserID  string
}

// MatchingService - fan-out движок: раскладывает коллаборацию по
// подходящим инфлюенсерам (и наоборот) в виде pending-запросов.
//
// Критерий подбора: пересечение категорий (хотя бы одна общая) и
// бюджет коллаборации не ниже ставки инфлюенсера. Повторный запуск
// идемпотентен: существующие пары не трогаются.
type MatchingService interface {
	// MatchCollaboration раскладывает коллаборацию по инфлюенсерам.
	// Возвращает созданные пары.
	MatchCollaboration(tx *gorm.DB, collaboration *models.Collaboration) ([]MatchResult, error)

	// MatchInfluencer подбирает открытые коллаборации под обновленный
	// профиль инфлюенсера.
	MatchInfluencer(tx *gorm.DB, influencer *models.Influencer) ([]MatchResult, error)

	// NotifyMatches отправляет push по созданным парам. Вызывается
	// после коммита транзакции fan-out'а.
	NotifyMatches(db *gorm.DB, results []MatchResult)

	// EligibleInfluencers - чтение без побочных эффектов.
	EligibleInfluencers(db *gorm.DB, collaboration *models.Collaboration) ([]models.Influencer, error)
}

type matchingService struct {
	profileRepo       repositories.ProfileRepository
	collaborationRepo repositories.CollaborationRepository
	requestRepo       repositories.RequestRepository
	notifications     NotificationService
}

func NewMatchingService(
	profileRepo repositories.ProfileRepository,
	collaborationRepo repositories.CollaborationRepository,
	requestRepo repositories.RequestRepository,
	notifications NotificationService,
) MatchingService {
	return &matchingService{
		profileRepo:       profileRepo,
		collaborationRepo: collaborationRepo,
		requestRepo:       requestRepo,
		notifications:     notifications,
	}
}

func (s *matchingService) MatchCollaboration(tx *gorm.DB, collaboration *models.Collaboration) ([]MatchResult, error) {
	if collaboration.HasEnded(time.Now()) {
		return nil, nil
	}

	influencers, err := s.profileRepo.FindEligibleInfluencers(tx, collaboration.GetCategories(), collaboration.Amount)
	if err != nil {
		return nil, err
	}

	var created []MatchResult
	for i := range influencers {
		result, err := s.createPendingPair(tx, collaboration, &influencers[i])
		if err != nil {
			return created, err
		}
		if result != nil {
			created = append(created, *result)
		}
	}
	return created, nil
}

func (s *matchingService) MatchInfluencer(tx *gorm.DB, influencer *models.Influencer) ([]MatchResult, error) {
	collaborations, err := s.collaborationRepo.FindEligibleForInfluencer(
		tx, influencer.GetCategories(), influencer.CollabValue, time.Now())
	if err != nil {
		return nil, err
	}

	var created []MatchResult
	for i := range collaborations {
		result, err := s.createPendingPair(tx, &collaborations[i], influencer)
		if err != nil {
			return created, err
		}
		if result != nil {
			created = append(created, *result)
		}
	}
	return created, nil
}

func (s *matchingService) NotifyMatches(db *gorm.DB, results []MatchResult) {
	for _, result := range results {
		s.notifications.PushToUser(db, result.InfluencerUserID,
			"Новая коллаборация для вас",
			fmt.Sprintf("Коллаборация «%s» подходит вашему профилю", result.CollaborationName),
			requestPushData(result.CollaborationID, result.RequestID),
		)
	}
}

func (s *matchingService) EligibleInfluencers(db *gorm.DB, collaboration *models.Collaboration) ([]models.Influencer, error) {
	return s.profileRepo.FindEligibleInfluencers(db, collaboration.GetCategories(), collaboration.Amount)
}

// createPendingPair создает pending-запись пары и match-уведомление.
// Существующая пара - не ошибка: гонку разрешает уникальный индекс.
func (s *matchingService) createPendingPair(tx *gorm.DB, collaboration *models.Collaboration, influencer *models.Influencer) (*MatchResult, error) {
	request := &models.CollaborationRequest{
		CollaborationID: collaboration.ID,
		InfluencerID:    influencer.ID,
		Status:          models.RequestStatusPending,
	}
	err := s.requestRepo.CreateIfAbsent(tx, request)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestAlreadyExists) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.notifications.RecordMatch(tx, influencer.UserID, collaboration, request.ID); err != nil {
		return nil, err
	}

	logger.Debug("match created",
		"collaboration_id", collaboration.ID,
		"influencer_id", influencer.ID,
	)
	return &MatchResult{
		RequestID:         request.ID,
		CollaborationID:   collaboration.ID,
		CollaborationName: collaboration.Name,
		InfluencerUserID:  influencer.UserID,
	}, nil
}
