package dto

import "time"

type ChatParticipantResponse struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

type ChatResponse struct {
	ID           string                     `json:"id"`
	CreatedBy    string                     `json:"created_by"`
	Participants []*ChatParticipantResponse `json:"participants"`
	CreatedAt    time.Time                  `json:"created_at"`
}

type ChatListResponse struct {
	Chats []*ChatResponse `json:"chats"`
	Total int             `json:"total"`
}
