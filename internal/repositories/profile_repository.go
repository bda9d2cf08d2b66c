package repositories

import (
	"errors"

	"collabhub_backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrBrandNotFound      = errors.New("brand profile not found")
	ErrInfluencerNotFound = errors.New("influencer profile not found")
)

type ProfileRepository interface {
	// Brand operations
	CreateBrand(db *gorm.DB, brand *models.Brand) error
	FindBrandByID(db *gorm.DB, id string) (*models.Brand, error)
	FindBrandByUserID(db *gorm.DB, userID string) (*models.Brand, error)

	// Influencer operations
	CreateInfluencer(db *gorm.DB, influencer *models.Influencer) error
	FindInfluencerByID(db *gorm.DB, id string) (*models.Influencer, error)
	FindInfluencerByUserID(db *gorm.DB, userID string) (*models.Influencer, error)
	UpdateInfluencer(db *gorm.DB, influencer *models.Influencer) error

	// Eligibility index: категорийное пересечение считает Postgres
	// (jsonb_exists_any), а не построчный скан в Go.
	FindEligibleInfluencers(db *gorm.DB, categories []string, amount float64) ([]models.Influencer, error)
}

type ProfileRepositoryImpl struct{}

func NewProfileRepository() ProfileRepository {
	return &ProfileRepositoryImpl{}
}

// Brand operations

func (r *ProfileRepositoryImpl) CreateBrand(db *gorm.DB, brand *models.Brand) error {
	return db.Create(brand).Error
}

func (r *ProfileRepositoryImpl) FindBrandByID(db *gorm.DB, id string) (*models.Brand, error) {
	var brand models.Brand
	err := db.First(&brand, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &brand, nil
}

func (r *ProfileRepositoryImpl) FindBrandByUserID(db *gorm.DB, userID string) (*models.Brand, error) {
	var brand models.Brand
	err := db.First(&brand, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &brand, nil
}

// Influencer operations

func (r *ProfileRepositoryImpl) CreateInfluencer(db *gorm.DB, influencer *models.Influencer) error {
	return db.Create(influencer).Error
}

func (r *ProfileRepositoryImpl) FindInfluencerByID(db *gorm.DB, id string) (*models.Influencer, error) {
	var influencer models.Influencer
	err := db.First(&influencer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInfluencerNotFound
		}
		return nil, err
	}
	return &influencer, nil
}

func (r *ProfileRepositoryImpl) FindInfluencerByUserID(db *gorm.DB, userID string) (*models.Influencer, error) {
	var influencer models.Influencer
	err := db.First(&influencer, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInfluencerNotFound
		}
		return nil, err
	}
	return &influencer, nil
}

func (r *ProfileRepositoryImpl) UpdateInfluencer(db *gorm.DB, influencer *models.Influencer) error {
	return db.Save(influencer).Error
}

// FindEligibleInfluencers возвращает инфлюенсеров, у которых хотя бы одна
// категория пересекается с категориями коллаборации (логическое OR)
// и ставка не превышает бюджет.
func (r *ProfileRepositoryImpl) FindEligibleInfluencers(db *gorm.DB, categories []string, amount float64) ([]models.Influencer, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	var influencers []models.Influencer
	err := db.
		Where("jsonb_exists_any(categories, ?)", pq.Array(categories)).
		Where("collab_value <= ?", amount).
		Find(&influencers).Error
	return influencers, err
}
