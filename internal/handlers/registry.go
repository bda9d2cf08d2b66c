package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler          *AuthHandler
	ProfileHandler       *ProfileHandler
	CollaborationHandler *CollaborationHandler
	RequestHandler       *RequestHandler
	NotificationHandler  *NotificationHandler
	ChatHandler          *ChatHandler
}
