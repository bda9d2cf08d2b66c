package validator

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"collabhub_backend/internal/models"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Нерабочее правило - ошибка времени запуска
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-user-role': роль пользователя валидна
	mustRegister("is-user-role", validateUserRole)

	// 'requeststatus': числовой статус запроса из известного набора
	mustRegister("requeststatus", validateRequestStatus)

	// 'futuredate': дата строго в будущем
	mustRegister("futuredate", validateFutureDate)
}

// --- Функции валидации ---

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые значения проверяет 'required'
	}
	switch models.UserRole(value) {
	case models.UserRoleBrand, models.UserRoleInfluencer:
		return true
	default:
		return false
	}
}

func validateRequestStatus(fl validator.FieldLevel) bool {
	status := models.RequestStatus(fl.Field().Int())
	switch status {
	case models.RequestStatusPending,
		models.RequestStatusInterested,
		models.RequestStatusInvited,
		models.RequestStatusAccepted,
		models.RequestStatusCompleted,
		models.RequestStatusRejected:
		return true
	default:
		return false
	}
}

func validateFutureDate(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return value.After(time.Now())
}
