package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

// CollaborationService - жизненный цикл коллаборации: создание с
// синхронным fan-out по инфлюенсерам, карточки, закрытие и удаление.
type CollaborationService interface {
	Create(db *gorm.DB, brandUserID string, req *dto.CreateCollaborationRequest) (*dto.CollaborationResponse, error)
	GetDetails(db *gorm.DB, actorUserID string, actorRole models.UserRole, collaborationID string) (*dto.CollaborationDetailsResponse, error)
	GetBrandCollaborations(db *gorm.DB, brandUserID, influencerID string) (*dto.CollaborationListResponse, error)
	GetSuggestedForInfluencer(db *gorm.DB, influencerUserID string) ([]*dto.SuggestedCollaborationResponse, error)

	// Close переводит коллаборацию в closed. Требуется хотя бы один
	// завершенный запрос.
	Close(db *gorm.DB, brandUserID, collaborationID string) error

	// Delete мягко удаляет коллаборацию вместе с её запросами
	// и уведомлениями.
	Delete(db *gorm.DB, brandUserID, collaborationID string) error
}

type collaborationService struct {
	collaborationRepo repositories.CollaborationRepository
	requestRepo       repositories.RequestRepository
	profileRepo       repositories.ProfileRepository
	notificationRepo  repositories.NotificationRepository
	matching          MatchingService
}

func NewCollaborationService(
	collaborationRepo repositories.CollaborationRepository,
	requestRepo repositories.RequestRepository,
	profileRepo repositories.ProfileRepository,
	notificationRepo repositories.NotificationRepository,
	matching MatchingService,
) CollaborationService {
	return &collaborationService{
		collaborationRepo: collaborationRepo,
		requestRepo:       requestRepo,
		profileRepo:       profileRepo,
		notificationRepo:  notificationRepo,
		matching:          matching,
	}
}

// Create создает коллаборацию и сразу, в той же транзакции, выполняет
// fan-out: pending-запросы и match-уведомления подходящим инфлюенсерам.
// Push по созданным парам уходит после коммита.
func (s *collaborationService) Create(db *gorm.DB, brandUserID string, req *dto.CreateCollaborationRequest) (*dto.CollaborationResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	resp, matched, err := s.createTx(tx, brandUserID, req)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.matching.NotifyMatches(db, matched)
	return resp, nil
}

func (s *collaborationService) createTx(tx *gorm.DB, brandUserID string, req *dto.CreateCollaborationRequest) (*dto.CollaborationResponse, []MatchResult, error) {
	if req.EndDate != nil && !req.EndDate.After(time.Now()) {
		return nil, nil, apperrors.ErrEndDateNotFuture
	}

	brand, err := s.profileRepo.FindBrandByUserID(tx, brandUserID)
	if err != nil {
		return nil, nil, apperrors.ErrBrandNotFound
	}

	collaboration := &models.Collaboration{
		BrandID:     brand.ID,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Amount:      req.Amount,
		EndDate:     req.EndDate,
		Status:      models.CollaborationStatusPending,
	}
	collaboration.SetCategories(req.Categories)

	if err := s.collaborationRepo.Create(tx, collaboration); err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	matched, err := s.matching.MatchCollaboration(tx, collaboration)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	logger.Info("collaboration created",
		"collaboration_id", collaboration.ID,
		"brand_id", brand.ID,
		"matched", len(matched),
	)
	return buildCollaborationResponse(collaboration), matched, nil
}

// GetDetails собирает карточку коллаборации. Для инфлюенсера добавляются
// флаги его участия, для бренда - список завершивших инфлюенсеров.
func (s *collaborationService) GetDetails(db *gorm.DB, actorUserID string, actorRole models.UserRole, collaborationID string) (*dto.CollaborationDetailsResponse, error) {
	collaboration, err := s.collaborationRepo.FindByID(db, collaborationID)
	if err != nil {
		if errors.Is(err, repositories.ErrCollaborationNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	details := &dto.CollaborationDetailsResponse{
		CollaborationResponse: *buildCollaborationResponse(collaboration),
	}

	switch actorRole {
	case models.UserRoleInfluencer:
		influencer, err := s.profileRepo.FindInfluencerByUserID(db, actorUserID)
		if err != nil {
			return nil, apperrors.ErrInfluencerNotFound
		}
		interested := false
		invited := false
		if request, err := s.requestRepo.FindByPair(db, collaborationID, influencer.ID); err == nil {
			interested = request.Status == models.RequestStatusInterested ||
				request.Status == models.RequestStatusAccepted ||
				request.Status == models.RequestStatusCompleted
			invited = request.Status == models.RequestStatusInvited
		}
		details.HasExpressedInterest = &interested
		details.IsInvited = &invited

	case models.UserRoleBrand:
		brand, err := s.profileRepo.FindBrandByUserID(db, actorUserID)
		if err != nil {
			return nil, apperrors.ErrBrandNotFound
		}
		if collaboration.BrandID != brand.ID {
			return nil, apperrors.ErrInsufficientPermissions
		}
		completed, err := s.requestRepo.FindByCollaborationIDAndStatus(db, collaborationID, models.RequestStatusCompleted)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		for i := range completed {
			influencer, err := s.profileRepo.FindInfluencerByID(db, completed[i].InfluencerID)
			if err != nil {
				continue
			}
			details.CompletedInfluencers = append(details.CompletedInfluencers, &dto.InfluencerSummary{
				ID:           influencer.ID,
				Name:         influencer.Name,
				Categories:   influencer.GetCategories(),
				CollabValue:  influencer.CollabValue,
				ProfilePhoto: influencer.ProfilePhoto,
				RequestID:    completed[i].ID,
				Status:       int(completed[i].Status),
			})
		}
	}
	return details, nil
}

// GetBrandCollaborations - список коллабораций бренда. Если передан
// influencerID, каждая помечается флагом "этот инфлюенсер уже приглашён".
func (s *collaborationService) GetBrandCollaborations(db *gorm.DB, brandUserID, influencerID string) (*dto.CollaborationListResponse, error) {
	brand, err := s.profileRepo.FindBrandByUserID(db, brandUserID)
	if err != nil {
		return nil, apperrors.ErrBrandNotFound
	}
	collaborations, err := s.collaborationRepo.FindByBrandID(db, brand.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.BrandCollaborationItem, 0, len(collaborations))
	for i := range collaborations {
		item := &dto.BrandCollaborationItem{
			CollaborationResponse: *buildCollaborationResponse(&collaborations[i]),
		}
		if influencerID != "" {
			invited := false
			if request, err := s.requestRepo.FindByPair(db, collaborations[i].ID, influencerID); err == nil {
				invited = request.Status == models.RequestStatusInvited
			}
			item.Invited = &invited
		}
		items = append(items, item)
	}
	return &dto.CollaborationListResponse{Collaborations: items, Total: len(items)}, nil
}

// GetSuggestedForInfluencer - подборка открытых коллабораций под профиль
// инфлюенсера, с флагом "вас уже пригласили".
func (s *collaborationService) GetSuggestedForInfluencer(db *gorm.DB, influencerUserID string) ([]*dto.SuggestedCollaborationResponse, error) {
	influencer, err := s.profileRepo.FindInfluencerByUserID(db, influencerUserID)
	if err != nil {
		return nil, apperrors.ErrInfluencerNotFound
	}

	collaborations, err := s.collaborationRepo.FindEligibleForInfluencer(
		db, influencer.GetCategories(), influencer.CollabValue, time.Now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.SuggestedCollaborationResponse, 0, len(collaborations))
	for i := range collaborations {
		item := &dto.SuggestedCollaborationResponse{
			CollaborationResponse: *buildCollaborationResponse(&collaborations[i]),
		}
		if brand, err := s.profileRepo.FindBrandByID(db, collaborations[i].BrandID); err == nil {
			item.BrandName = brand.Name
		}
		if request, err := s.requestRepo.FindByPair(db, collaborations[i].ID, influencer.ID); err == nil {
			item.Invited = request.Status == models.RequestStatusInvited
			// Запросы, по которым инфлюенсер уже отреагировал,
			// в подборке не нужны
			if request.Status != models.RequestStatusPending && request.Status != models.RequestStatusInvited {
				continue
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *collaborationService) Close(db *gorm.DB, brandUserID, collaborationID string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.closeTx(tx, brandUserID, collaborationID); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	logger.Info("collaboration closed", "collaboration_id", collaborationID)
	return nil
}

func (s *collaborationService) closeTx(tx *gorm.DB, brandUserID, collaborationID string) error {
	collaboration, err := s.ownedCollaboration(tx, brandUserID, collaborationID)
	if err != nil {
		return err
	}
	if collaboration.Status == models.CollaborationStatusClosed {
		return apperrors.ErrCollaborationClosed
	}

	hasCompleted, err := s.requestRepo.ExistsWithStatus(tx, collaborationID, models.RequestStatusCompleted)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !hasCompleted {
		return apperrors.ErrNoCompletedRequests
	}

	if err := s.collaborationRepo.UpdateStatus(tx, collaborationID, models.CollaborationStatusClosed); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// Delete каскадно и мягко удаляет коллаборацию, её запросы и уведомления.
func (s *collaborationService) Delete(db *gorm.DB, brandUserID, collaborationID string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.deleteTx(tx, brandUserID, collaborationID); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	logger.Info("collaboration deleted", "collaboration_id", collaborationID)
	return nil
}

func (s *collaborationService) deleteTx(tx *gorm.DB, brandUserID, collaborationID string) error {
	if _, err := s.ownedCollaboration(tx, brandUserID, collaborationID); err != nil {
		return err
	}

	if err := s.requestRepo.SoftDeleteByCollaboration(tx, collaborationID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.notificationRepo.SoftDeleteByCollaboration(tx, collaborationID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.collaborationRepo.SoftDelete(tx, collaborationID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *collaborationService) ownedCollaboration(tx *gorm.DB, brandUserID, collaborationID string) (*models.Collaboration, error) {
	brand, err := s.profileRepo.FindBrandByUserID(tx, brandUserID)
	if err != nil {
		return nil, apperrors.ErrBrandNotFound
	}
	collaboration, err := s.collaborationRepo.FindByID(tx, collaborationID)
	if err != nil {
		if errors.Is(err, repositories.ErrCollaborationNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if collaboration.BrandID != brand.ID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return collaboration, nil
}

func buildCollaborationResponse(c *models.Collaboration) *dto.CollaborationResponse {
	return &dto.CollaborationResponse{
		ID:          c.ID,
		BrandID:     c.BrandID,
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		Categories:  c.GetCategories(),
		Amount:      c.Amount,
		EndDate:     c.EndDate,
		Status:      string(c.Status),
		HasEnded:    c.HasEnded(time.Now()),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
