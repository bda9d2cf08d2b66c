package auth

import (
	"errors"

	"collabhub_backend/internal/models"
)

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch models.UserRole(role) {
	case models.UserRoleBrand, models.UserRoleInfluencer:
		return nil
	default:
		return errors.New("invalid role")
	}
}

// IsBrand проверяет, принадлежит ли токен бренду
func IsBrand(claims *Claims) bool {
	return claims.Role == models.UserRoleBrand
}

// IsInfluencer проверяет, принадлежит ли токен инфлюенсеру
func IsInfluencer(claims *Claims) bool {
	return claims.Role == models.UserRoleInfluencer
}
