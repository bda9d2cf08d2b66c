package repositories

import (
	"errors"
	"time"

	"collabhub_backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrChatNotFound      = errors.New("chat not found")
	ErrChatAlreadyExists = errors.New("chat already exists")
)

type ChatRepository interface {
	// FindDirectChatBetween ищет чат пары по её ключу. Порядок
	// аргументов не важен.
	FindDirectChatBetween(db *gorm.DB, userA, userB string) (*models.Chat, error)

	// CreateDirectChat создает чат пары с двумя участниками.
	// Существующая пара (гонка двух принятий) -> ErrChatAlreadyExists.
	CreateDirectChat(db *gorm.DB, createdBy, userA, userB string) (*models.Chat, error)

	FindByID(db *gorm.DB, id string) (*models.Chat, error)
	FindUserChats(db *gorm.DB, userID string) ([]models.Chat, error)
	IsParticipant(db *gorm.DB, chatID, userID string) (bool, error)
}

type ChatRepositoryImpl struct{}

func NewChatRepository() ChatRepository {
	return &ChatRepositoryImpl{}
}

func (r *ChatRepositoryImpl) FindDirectChatBetween(db *gorm.DB, userA, userB string) (*models.Chat, error) {
	var chat models.Chat
	err := db.
		Preload("Participants").
		Where("pair_key = ?", models.ChatPairKey(userA, userB)).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepositoryImpl) CreateDirectChat(db *gorm.DB, createdBy, userA, userB string) (*models.Chat, error) {
	chat := &models.Chat{
		CreatedBy: createdBy,
		PairKey:   models.ChatPairKey(userA, userB),
	}
	if err := db.Create(chat).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrChatAlreadyExists
		}
		return nil, err
	}
	now := time.Now()
	for _, userID := range []string{userA, userB} {
		participant := &models.ChatParticipant{
			ChatID:   chat.ID,
			UserID:   userID,
			JoinedAt: now,
		}
		if err := db.Create(participant).Error; err != nil {
			return nil, err
		}
		chat.Participants = append(chat.Participants, *participant)
	}
	return chat, nil
}

func (r *ChatRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Chat, error) {
	var chat models.Chat
	err := db.Preload("Participants").First(&chat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepositoryImpl) FindUserChats(db *gorm.DB, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	subquery := db.Model(&models.ChatParticipant{}).
		Select("chat_id").
		Where("user_id = ?", userID)
	err := db.
		Preload("Participants").
		Where("id IN (?)", subquery).
		Order("created_at DESC").
		Find(&chats).Error
	return chats, err
}

func (r *ChatRepositoryImpl) IsParticipant(db *gorm.DB, chatID, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}
