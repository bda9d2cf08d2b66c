package repositories

import (
	"errors"

	"collabhub_backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound      = errors.New("collaboration request not found")
	ErrRequestAlreadyExists = errors.New("collaboration request already exists")
	// ErrGuardViolated — условный UPDATE не затронул ни одной строки:
	// запись либо отсутствует, либо уже не в допустимом статусе.
	ErrGuardViolated = errors.New("request status not in allowed set")
)

type RequestRepository interface {
	// CreateIfAbsent вставляет запись пары, полагаясь на уникальный индекс
	// (collaboration_id, influencer_id) как последнюю линию защиты от гонок.
	CreateIfAbsent(db *gorm.DB, request *models.CollaborationRequest) error

	FindByID(db *gorm.DB, id string) (*models.CollaborationRequest, error)
	FindByPair(db *gorm.DB, collaborationID, influencerID string) (*models.CollaborationRequest, error)
	FindByCollaborationID(db *gorm.DB, collaborationID string) ([]models.CollaborationRequest, error)
	FindByCollaborationIDAndStatus(db *gorm.DB, collaborationID string, status models.RequestStatus) ([]models.CollaborationRequest, error)
	FindByInfluencerID(db *gorm.DB, influencerID string) ([]models.CollaborationRequest, error)

	// UpdateStatusGuarded выполняет переход условным UPDATE по guard-набору.
	UpdateStatusGuarded(db *gorm.DB, id string, guard []models.RequestStatus, to models.RequestStatus) error

	ExistsWithStatus(db *gorm.DB, collaborationID string, status models.RequestStatus) (bool, error)
	SoftDeleteByCollaboration(db *gorm.DB, collaborationID string) error
}

type RequestRepositoryImpl struct{}

func NewRequestRepository() RequestRepository {
	return &RequestRepositoryImpl{}
}

func (r *RequestRepositoryImpl) CreateIfAbsent(db *gorm.DB, request *models.CollaborationRequest) error {
	err := db.Create(request).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrRequestAlreadyExists
		}
		return err
	}
	return nil
}

func (r *RequestRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.CollaborationRequest, error) {
	var request models.CollaborationRequest
	err := db.First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *RequestRepositoryImpl) FindByPair(db *gorm.DB, collaborationID, influencerID string) (*models.CollaborationRequest, error) {
	var request models.CollaborationRequest
	err := db.First(&request, "collaboration_id = ? AND influencer_id = ?", collaborationID, influencerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *RequestRepositoryImpl) FindByCollaborationID(db *gorm.DB, collaborationID string) ([]models.CollaborationRequest, error) {
	var requests []models.CollaborationRequest
	err := db.
		Where("collaboration_id = ?", collaborationID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *RequestRepositoryImpl) FindByCollaborationIDAndStatus(db *gorm.DB, collaborationID string, status models.RequestStatus) ([]models.CollaborationRequest, error) {
	var requests []models.CollaborationRequest
	err := db.
		Where("collaboration_id = ? AND status = ?", collaborationID, status).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *RequestRepositoryImpl) FindByInfluencerID(db *gorm.DB, influencerID string) ([]models.CollaborationRequest, error) {
	var requests []models.CollaborationRequest
	err := db.
		Where("influencer_id = ?", influencerID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *RequestRepositoryImpl) UpdateStatusGuarded(db *gorm.DB, id string, guard []models.RequestStatus, to models.RequestStatus) error {
	result := db.Model(&models.CollaborationRequest{}).
		Where("id = ? AND status IN ?", id, guard).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGuardViolated
	}
	return nil
}

func (r *RequestRepositoryImpl) ExistsWithStatus(db *gorm.DB, collaborationID string, status models.RequestStatus) (bool, error) {
	var count int64
	err := db.Model(&models.CollaborationRequest{}).
		Where("collaboration_id = ? AND status = ?", collaborationID, status).
		Count(&count).Error
	return count > 0, err
}

func (r *RequestRepositoryImpl) SoftDeleteByCollaboration(db *gorm.DB, collaborationID string) error {
	return db.Delete(&models.CollaborationRequest{}, "collaboration_id = ?", collaborationID).Error
}
