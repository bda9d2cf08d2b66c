package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabhub_backend/internal/config"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

func setupAuthConfig(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test_secret_key_12345"
	cfg.JWT.TTL = 1
	config.AppConfig = cfg
}

func TestRegister(t *testing.T) {
	setupAuthConfig(t)
	svc := NewAuthService(newFakeUserRepo())

	resp, err := svc.Register(nil, &dto.RegisterRequest{
		Email:    "brand@test.com",
		Password: "password123",
		Name:     "GlowCo",
		Role:     "brand",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "brand@test.com", resp.User.Email)
	assert.Equal(t, string(models.UserRoleBrand), resp.User.Role)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(nil, &dto.RegisterRequest{
			Email:    "brand@test.com",
			Password: "password123",
			Name:     "Another",
			Role:     "brand",
		})
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, appErr.HTTPCode)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := svc.Register(nil, &dto.RegisterRequest{
			Email:    "admin@test.com",
			Password: "password123",
			Name:     "Admin",
			Role:     "admin",
		})
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
	})
}

func TestLogin(t *testing.T) {
	setupAuthConfig(t)
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo)

	_, err := svc.Register(nil, &dto.RegisterRequest{
		Email:    "inf@test.com",
		Password: "password123",
		Name:     "Aliya",
		Role:     "influencer",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(nil, &dto.LoginRequest{Email: "inf@test.com", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Aliya", resp.User.Name)
	})

	// Неизвестный email и неверный пароль дают один и тот же ответ
	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(nil, &dto.LoginRequest{Email: "inf@test.com", Password: "wrong"})
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.HTTPCode)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(nil, &dto.LoginRequest{Email: "nobody@test.com", Password: "password123"})
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.HTTPCode)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})
}
