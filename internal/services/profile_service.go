package services

import (
	"gorm.io/gorm"

	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

// ProfileService - профили брендов и инфлюенсеров. Обновление профиля
// инфлюенсера запускает перематчинг по открытым коллаборациям.
type ProfileService interface {
	CreateBrand(db *gorm.DB, userID string, req *dto.CreateBrandRequest) (*dto.BrandResponse, error)
	CreateInfluencer(db *gorm.DB, userID string, req *dto.CreateInfluencerRequest) (*dto.InfluencerResponse, error)
	GetBrand(db *gorm.DB, userID string) (*dto.BrandResponse, error)
	GetInfluencer(db *gorm.DB, userID string) (*dto.InfluencerResponse, error)
	UpdateInfluencer(db *gorm.DB, userID string, req *dto.UpdateInfluencerRequest) (*dto.InfluencerResponse, error)

	// SetFCMToken регистрирует push-токен устройства пользователя.
	SetFCMToken(db *gorm.DB, userID, token string) error
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
	matching    MatchingService
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	matching MatchingService,
) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		matching:    matching,
	}
}

func (s *profileService) CreateBrand(db *gorm.DB, userID string, req *dto.CreateBrandRequest) (*dto.BrandResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if user.Role != models.UserRoleBrand {
		return nil, apperrors.ErrInvalidUserRole
	}

	brand := &models.Brand{
		UserID:       userID,
		Name:         req.Name,
		About:        req.About,
		ProfilePhoto: req.ProfilePhoto,
	}
	brand.SetCategories(req.Categories)

	if err := s.profileRepo.CreateBrand(db, brand); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildBrandResponse(brand), nil
}

// CreateInfluencer создает профиль и сразу подбирает под него открытые
// коллаборации.
func (s *profileService) CreateInfluencer(db *gorm.DB, userID string, req *dto.CreateInfluencerRequest) (*dto.InfluencerResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if user.Role != models.UserRoleInfluencer {
		return nil, apperrors.ErrInvalidUserRole
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	resp, matched, err := s.createInfluencerTx(tx, userID, req)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.matching.NotifyMatches(db, matched)
	return resp, nil
}

func (s *profileService) createInfluencerTx(tx *gorm.DB, userID string, req *dto.CreateInfluencerRequest) (*dto.InfluencerResponse, []MatchResult, error) {
	influencer := &models.Influencer{
		UserID:       userID,
		Name:         req.Name,
		About:        req.About,
		CollabValue:  req.CollabValue,
		ProfilePhoto: req.ProfilePhoto,
	}
	influencer.SetCategories(req.Categories)

	if err := s.profileRepo.CreateInfluencer(tx, influencer); err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	matched, err := s.matching.MatchInfluencer(tx, influencer)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	logger.Info("influencer profile created",
		"influencer_id", influencer.ID,
		"matched", len(matched),
	)
	return buildInfluencerResponse(influencer), matched, nil
}

func (s *profileService) GetBrand(db *gorm.DB, userID string) (*dto.BrandResponse, error) {
	brand, err := s.profileRepo.FindBrandByUserID(db, userID)
	if err != nil {
		return nil, apperrors.ErrBrandNotFound
	}
	return buildBrandResponse(brand), nil
}

func (s *profileService) GetInfluencer(db *gorm.DB, userID string) (*dto.InfluencerResponse, error) {
	influencer, err := s.profileRepo.FindInfluencerByUserID(db, userID)
	if err != nil {
		return nil, apperrors.ErrInfluencerNotFound
	}
	return buildInfluencerResponse(influencer), nil
}

// UpdateInfluencer применяет частичное обновление. Если изменились
// категории или ставка, в той же транзакции выполняется перематчинг.
func (s *profileService) UpdateInfluencer(db *gorm.DB, userID string, req *dto.UpdateInfluencerRequest) (*dto.InfluencerResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	resp, matched, err := s.updateInfluencerTx(tx, userID, req)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.matching.NotifyMatches(db, matched)
	return resp, nil
}

func (s *profileService) updateInfluencerTx(tx *gorm.DB, userID string, req *dto.UpdateInfluencerRequest) (*dto.InfluencerResponse, []MatchResult, error) {
	influencer, err := s.profileRepo.FindInfluencerByUserID(tx, userID)
	if err != nil {
		return nil, nil, apperrors.ErrInfluencerNotFound
	}

	rematch := false
	if req.Name != nil {
		influencer.Name = *req.Name
	}
	if req.About != nil {
		influencer.About = *req.About
	}
	if req.ProfilePhoto != nil {
		influencer.ProfilePhoto = *req.ProfilePhoto
	}
	if req.Categories != nil {
		influencer.SetCategories(req.Categories)
		rematch = true
	}
	if req.CollabValue != nil {
		influencer.CollabValue = *req.CollabValue
		rematch = true
	}

	if err := s.profileRepo.UpdateInfluencer(tx, influencer); err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	var matched []MatchResult
	if rematch {
		matched, err = s.matching.MatchInfluencer(tx, influencer)
		if err != nil {
			return nil, nil, apperrors.InternalError(err)
		}
		logger.Info("influencer rematched",
			"influencer_id", influencer.ID,
			"matched", len(matched),
		)
	}
	return buildInfluencerResponse(influencer), matched, nil
}

func (s *profileService) SetFCMToken(db *gorm.DB, userID, token string) error {
	if err := s.userRepo.UpdateFCMToken(db, userID, token); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func buildBrandResponse(b *models.Brand) *dto.BrandResponse {
	return &dto.BrandResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		Name:         b.Name,
		About:        b.About,
		Categories:   b.GetCategories(),
		ProfilePhoto: b.ProfilePhoto,
		CreatedAt:    b.CreatedAt,
	}
}

func buildInfluencerResponse(i *models.Influencer) *dto.InfluencerResponse {
	return &dto.InfluencerResponse{
		ID:           i.ID,
		UserID:       i.UserID,
		Name:         i.Name,
		About:        i.About,
		Categories:   i.GetCategories(),
		CollabValue:  i.CollabValue,
		ProfilePhoto: i.ProfilePhoto,
		CreatedAt:    i.CreatedAt,
	}
}
