package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabhub_backend/internal/email"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/push"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

func newProfileService(userRepo *fakeUserRepo, profileRepo *fakeProfileRepo) ProfileService {
	notifications := NewNotificationService(newFakeNotificationRepo(), userRepo, push.NewNoopProvider(), email.NewNoopProvider())
	matching := NewMatchingService(profileRepo, newFakeCollaborationRepo(), newFakeRequestRepo(), notifications)
	return NewProfileService(profileRepo, userRepo, matching)
}

type profileFixture struct {
	userRepo          *fakeUserRepo
	profileRepo       *fakeProfileRepo
	collaborationRepo *fakeCollaborationRepo
	requestRepo       *fakeRequestRepo

	// Конкретный тип: перематчинг тестируется через tx-тела
	impl *profileService
}

func newProfileFixture() *profileFixture {
	f := &profileFixture{
		userRepo:          newFakeUserRepo(),
		profileRepo:       newFakeProfileRepo(),
		collaborationRepo: newFakeCollaborationRepo(),
		requestRepo:       newFakeRequestRepo(),
	}
	notifications := NewNotificationService(newFakeNotificationRepo(), f.userRepo, push.NewNoopProvider(), email.NewNoopProvider())
	matching := NewMatchingService(f.profileRepo, f.collaborationRepo, f.requestRepo, notifications)
	f.impl = NewProfileService(f.profileRepo, f.userRepo, matching).(*profileService)
	return f
}

func TestCreateBrandProfile(t *testing.T) {
	userRepo := newFakeUserRepo()
	profileRepo := newFakeProfileRepo()
	svc := newProfileService(userRepo, profileRepo)

	brandUser := &models.User{Email: "brand@test.com", Role: models.UserRoleBrand}
	require.NoError(t, userRepo.Create(nil, brandUser))
	influencerUser := &models.User{Email: "inf@test.com", Role: models.UserRoleInfluencer}
	require.NoError(t, userRepo.Create(nil, influencerUser))

	t.Run("brand user", func(t *testing.T) {
		resp, err := svc.CreateBrand(nil, brandUser.ID, &dto.CreateBrandRequest{
			Name:       "GlowCo",
			Categories: []string{"beauty"},
		})
		require.NoError(t, err)
		assert.Equal(t, "GlowCo", resp.Name)
		assert.Equal(t, []string{"beauty"}, resp.Categories)
	})

	t.Run("wrong role", func(t *testing.T) {
		_, err := svc.CreateBrand(nil, influencerUser.ID, &dto.CreateBrandRequest{Name: "Nope"})
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.CreateBrand(nil, "missing", &dto.CreateBrandRequest{Name: "Nope"})
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})
}

func TestGetProfiles(t *testing.T) {
	userRepo := newFakeUserRepo()
	profileRepo := newFakeProfileRepo()
	svc := newProfileService(userRepo, profileRepo)

	influencer := &models.Influencer{UserID: "inf-user", Name: "Aliya", CollabValue: 500}
	influencer.SetCategories([]string{"fashion"})
	require.NoError(t, profileRepo.CreateInfluencer(nil, influencer))

	t.Run("existing influencer", func(t *testing.T) {
		resp, err := svc.GetInfluencer(nil, "inf-user")
		require.NoError(t, err)
		assert.Equal(t, "Aliya", resp.Name)
		assert.Equal(t, float64(500), resp.CollabValue)
	})

	t.Run("missing brand", func(t *testing.T) {
		_, err := svc.GetBrand(nil, "inf-user")
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})
}

func TestCreateInfluencerMatchesOpenCollaborations(t *testing.T) {
	f := newProfileFixture()

	collaboration := &models.Collaboration{BrandID: "brand-1", Name: "Summer", Amount: 1000, Status: models.CollaborationStatusPending}
	collaboration.SetCategories([]string{"fashion"})
	require.NoError(t, f.collaborationRepo.Create(nil, collaboration))

	resp, matched, err := f.impl.createInfluencerTx(nil, "inf-user", &dto.CreateInfluencerRequest{
		Name:        "Aliya",
		Categories:  []string{"fashion"},
		CollabValue: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "Aliya", resp.Name)

	// Профиль сразу раскладывается по открытым коллаборациям
	require.Len(t, matched, 1)
	assert.Equal(t, collaboration.ID, matched[0].CollaborationID)
	assert.Equal(t, "inf-user", matched[0].InfluencerUserID)
	require.Len(t, f.requestRepo.requests, 1)
	assert.Equal(t, models.RequestStatusPending, f.requestRepo.requests[0].Status)
}

func TestUpdateInfluencerRematchesOnCategoryChange(t *testing.T) {
	f := newProfileFixture()

	influencer := &models.Influencer{UserID: "inf-user", Name: "Aliya", CollabValue: 500}
	influencer.SetCategories([]string{"tech"})
	require.NoError(t, f.profileRepo.CreateInfluencer(nil, influencer))

	collaboration := &models.Collaboration{BrandID: "brand-1", Name: "Summer", Amount: 1000, Status: models.CollaborationStatusPending}
	collaboration.SetCategories([]string{"fashion"})
	require.NoError(t, f.collaborationRepo.Create(nil, collaboration))

	t.Run("name change does not rematch", func(t *testing.T) {
		name := "Aliya K."
		_, matched, err := f.impl.updateInfluencerTx(nil, "inf-user", &dto.UpdateInfluencerRequest{Name: &name})
		require.NoError(t, err)
		assert.Empty(t, matched)
		assert.Empty(t, f.requestRepo.requests)
	})

	t.Run("category change rematches", func(t *testing.T) {
		_, matched, err := f.impl.updateInfluencerTx(nil, "inf-user", &dto.UpdateInfluencerRequest{Categories: []string{"fashion"}})
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, collaboration.ID, matched[0].CollaborationID)
		require.Len(t, f.requestRepo.requests, 1)
	})
}

func TestSetFCMToken(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newProfileService(userRepo, newFakeProfileRepo())

	user := &models.User{Email: "u@test.com", Role: models.UserRoleInfluencer}
	require.NoError(t, userRepo.Create(nil, user))

	require.NoError(t, svc.SetFCMToken(nil, user.ID, "device-token"))
	assert.Equal(t, "device-token", userRepo.users[user.ID].FCMToken)

	err := svc.SetFCMToken(nil, "missing", "token")
	assert.Error(t, err)
}
