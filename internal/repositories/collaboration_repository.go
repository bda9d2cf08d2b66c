package repositories

import (
	"errors"
	"time"

	"collabhub_backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var ErrCollaborationNotFound = errors.New("collaboration not found")

type CollaborationRepository interface {
	Create(db *gorm.DB, collaboration *models.Collaboration) error
	FindByID(db *gorm.DB, id string) (*models.Collaboration, error)
	FindByBrandID(db *gorm.DB, brandID string) ([]models.Collaboration, error)
	UpdateStatus(db *gorm.DB, id string, status models.CollaborationStatus) error
	SoftDelete(db *gorm.DB, id string) error

	// FindEligibleForInfluencer — обратная сторона матчинга: подбор открытых
	// коллабораций под профиль инфлюенсера.
	FindEligibleForInfluencer(db *gorm.DB, categories []string, collabValue float64, now time.Time) ([]models.Collaboration, error)
}

type CollaborationRepositoryImpl struct{}

func NewCollaborationRepository() CollaborationRepository {
	return &CollaborationRepositoryImpl{}
}

func (r *CollaborationRepositoryImpl) Create(db *gorm.DB, collaboration *models.Collaboration) error {
	return db.Create(collaboration).Error
}

func (r *CollaborationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Collaboration, error) {
	var collaboration models.Collaboration
	err := db.First(&collaboration, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollaborationNotFound
		}
		return nil, err
	}
	return &collaboration, nil
}

func (r *CollaborationRepositoryImpl) FindByBrandID(db *gorm.DB, brandID string) ([]models.Collaboration, error) {
	var collaborations []models.Collaboration
	err := db.
		Where("brand_id = ?", brandID).
		Order("created_at DESC").
		Find(&collaborations).Error
	return collaborations, err
}

func (r *CollaborationRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.CollaborationStatus) error {
	result := db.Model(&models.Collaboration{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCollaborationNotFound
	}
	return nil
}

func (r *CollaborationRepositoryImpl) SoftDelete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Collaboration{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCollaborationNotFound
	}
	return nil
}

func (r *CollaborationRepositoryImpl) FindEligibleForInfluencer(db *gorm.DB, categories []string, collabValue float64, now time.Time) ([]models.Collaboration, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	var collaborations []models.Collaboration
	err := db.
		Where("jsonb_exists_any(categories, ?)", pq.Array(categories)).
		Where("amount >= ?", collabValue).
		Where("status NOT IN ?", []models.CollaborationStatus{models.CollaborationStatusCompleted, models.CollaborationStatusClosed}).
		Where("end_date IS NULL OR end_date > ?", now).
		Order("created_at DESC").
		Find(&collaborations).Error
	return collaborations, err
}
