package services

import (
	"errors"

	"gorm.io/gorm"

	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

// ChatService отвечает за создание прямых чатов. Гарантия: на пару
// пользователей существует не больше одного чата, сколько бы
// коллабораций между ними ни было принято.
type ChatService interface {
	// EnsureDirectChat возвращает существующий чат пары или создает новый.
	// Вызывается внутри транзакции принятия заявки.
	EnsureDirectChat(tx *gorm.DB, createdBy, userA, userB string) (*models.Chat, error)

	GetUserChats(db *gorm.DB, userID string) (*dto.ChatListResponse, error)
	GetChat(db *gorm.DB, chatID, userID string) (*dto.ChatResponse, error)
}

type chatService struct {
	chatRepo repositories.ChatRepository
	userRepo repositories.UserRepository
}

func NewChatService(chatRepo repositories.ChatRepository, userRepo repositories.UserRepository) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

func (s *chatService) EnsureDirectChat(tx *gorm.DB, createdBy, userA, userB string) (*models.Chat, error) {
	existing, err := s.chatRepo.FindDirectChatBetween(tx, userA, userB)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrChatNotFound) {
		return nil, err
	}

	chat, err := s.chatRepo.CreateDirectChat(tx, createdBy, userA, userB)
	if err != nil {
		// Уникальный индекс по ключу пары: конкурирующее принятие
		// успело создать чат - переиспользуется его
		if errors.Is(err, repositories.ErrChatAlreadyExists) {
			return s.chatRepo.FindDirectChatBetween(tx, userA, userB)
		}
		return nil, err
	}
	return chat, nil
}

func (s *chatService) GetUserChats(db *gorm.DB, userID string) (*dto.ChatListResponse, error) {
	chats, err := s.chatRepo.FindUserChats(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.ChatResponse, 0, len(chats))
	for i := range chats {
		items = append(items, s.buildChatResponse(db, &chats[i]))
	}
	return &dto.ChatListResponse{Chats: items, Total: len(items)}, nil
}

func (s *chatService) GetChat(db *gorm.DB, chatID, userID string) (*dto.ChatResponse, error) {
	chat, err := s.chatRepo.FindByID(db, chatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			return nil, apperrors.ErrChatNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	isParticipant, err := s.chatRepo.IsParticipant(db, chatID, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !isParticipant {
		return nil, apperrors.ErrChatAccessDenied
	}
	return s.buildChatResponse(db, chat), nil
}

func (s *chatService) buildChatResponse(db *gorm.DB, chat *models.Chat) *dto.ChatResponse {
	participants := make([]*dto.ChatParticipantResponse, 0, len(chat.Participants))
	for _, p := range chat.Participants {
		item := &dto.ChatParticipantResponse{
			UserID:   p.UserID,
			JoinedAt: p.JoinedAt,
		}
		// Имя участника best-effort: его отсутствие не ломает список
		if user, err := s.userRepo.FindByID(db, p.UserID); err == nil {
			item.Name = user.Name
		}
		participants = append(participants, item)
	}
	return &dto.ChatResponse{
		ID:           chat.ID,
		CreatedBy:    chat.CreatedBy,
		Participants: participants,
		CreatedAt:    chat.CreatedAt,
	}
}
