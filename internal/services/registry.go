package services

import (
	"collabhub_backend/internal/email"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService          AuthService
	ProfileService       ProfileService
	CollaborationService CollaborationService
	RequestService       RequestService
	MatchingService      MatchingService
	NotificationService  NotificationService
	ChatService          ChatService
	EmailService         email.Provider
}
