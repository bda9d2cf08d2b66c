package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"collabhub_backend/database"
	"collabhub_backend/internal/config"
	"collabhub_backend/internal/email"
	"collabhub_backend/internal/handlers"
	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/middleware"
	"collabhub_backend/internal/push"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/routes"
	"collabhub_backend/internal/services"
	"collabhub_backend/internal/validator"
	"collabhub_backend/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	ginRouter, serviceContainer := SetupRouter(cfg, gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationWorker := workers.NewNotificationWorker(gormDB, serviceContainer.NotificationService, cfg.Notifications.RetentionDays)
	notificationWorker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *services.ServiceContainer) {
	serviceContainer := initializeServices(cfg)
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)
	return ginRouter, serviceContainer
}

func initializeServices(cfg *config.Config) *services.ServiceContainer {
	// --- Провайдеры доставки ---
	var emailProvider email.Provider
	if cfg.Email.SMTPHost != "" {
		emailProvider = email.NewGomailProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		}, email.NewTemplateManager())
	} else {
		logger.Warn("SMTP is not configured, emails are disabled")
		emailProvider = email.NewNoopProvider()
	}

	var pushProvider push.Provider
	if cfg.Push.Enabled {
		fcm, err := push.NewFCMProvider(&push.FCMConfig{
			ProjectID:   cfg.Push.ProjectID,
			ClientEmail: cfg.Push.ClientEmail,
			PrivateKey:  cfg.Push.PrivateKey,
			TokenURI:    cfg.Push.TokenURI,
			Timeout:     time.Duration(cfg.Push.SendTimeout) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to initialize FCM provider", "error", err)
		}
		pushProvider = fcm
	} else {
		logger.Warn("Push notifications are disabled")
		pushProvider = push.NewNoopProvider()
	}

	// --- Репозитории ---
	userRepo := repositories.NewUserRepository()
	profileRepo := repositories.NewProfileRepository()
	collaborationRepo := repositories.NewCollaborationRepository()
	requestRepo := repositories.NewRequestRepository()
	notificationRepo := repositories.NewNotificationRepository()
	chatRepo := repositories.NewChatRepository()

	// --- Сервисы ---
	authService := services.NewAuthService(userRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, pushProvider, emailProvider)
	matchingService := services.NewMatchingService(profileRepo, collaborationRepo, requestRepo, notificationService)
	chatService := services.NewChatService(chatRepo, userRepo)
	profileService := services.NewProfileService(profileRepo, userRepo, matchingService)
	collaborationService := services.NewCollaborationService(collaborationRepo, requestRepo, profileRepo, notificationRepo, matchingService)
	requestService := services.NewRequestService(
		requestRepo, collaborationRepo, profileRepo, userRepo,
		notificationService, chatService,
		cfg.Policy.SingleAcceptedInfluencer,
	)

	return &services.ServiceContainer{
		AuthService:          authService,
		ProfileService:       profileService,
		CollaborationService: collaborationService,
		RequestService:       requestService,
		MatchingService:      matchingService,
		NotificationService:  notificationService,
		ChatService:          chatService,
		EmailService:         emailProvider,
	}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:          handlers.NewAuthHandler(baseHandler, container.AuthService),
		ProfileHandler:       handlers.NewProfileHandler(baseHandler, container.ProfileService),
		CollaborationHandler: handlers.NewCollaborationHandler(baseHandler, container.CollaborationService, container.RequestService),
		RequestHandler:       handlers.NewRequestHandler(baseHandler, container.RequestService),
		NotificationHandler:  handlers.NewNotificationHandler(baseHandler, container.NotificationService),
		ChatHandler:          handlers.NewChatHandler(baseHandler, container.ChatService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
