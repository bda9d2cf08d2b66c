package dto

import "time"

// --- Collaboration request (pair record) ---

type InviteInfluencerRequest struct {
	InfluencerID string `json:"influencer_id" validate:"required,uuid"`
}

// UpdateRequestStatusRequest - переход статуса со стороны инфлюенсера
// или бренда. Допустимые значения проверяет кастомное правило.
type UpdateRequestStatusRequest struct {
	Status int `json:"status" validate:"required,requeststatus"`
}

type RequestResponse struct {
	ID              string    `json:"id"`
	CollaborationID string    `json:"collaboration_id"`
	InfluencerID    string    `json:"influencer_id"`
	Status          int       `json:"status"`
	StatusLabel     string    `json:"status_label"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type RequestListResponse struct {
	Requests []*RequestResponse `json:"requests"`
	Total    int                `json:"total"`
}

// InfluencerSummary - краткая карточка инфлюенсера в списках
// (заинтересованные, завершившие).
type InfluencerSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Categories   []string `json:"categories"`
	CollabValue  float64  `json:"collab_value"`
	ProfilePhoto string   `json:"profile_photo,omitempty"`
	RequestID    string   `json:"request_id,omitempty"`
	Status       int      `json:"status,omitempty"`
}

type InterestedInfluencersResponse struct {
	Influencers []*InfluencerSummary `json:"influencers"`
	Total       int                  `json:"total"`
}

// CollaborationInterestedGroup - заинтересованные по одной коллаборации
// в сводке по всем коллаборациям бренда.
type CollaborationInterestedGroup struct {
	CollaborationID   string               `json:"collaboration_id"`
	CollaborationName string               `json:"collaboration_name"`
	Influencers       []*InfluencerSummary `json:"influencers"`
}

type AllInterestedResponse struct {
	Collaborations []*CollaborationInterestedGroup `json:"collaborations"`
	Total          int                             `json:"total"`
}

// InfluencerRequestItem - запрос глазами инфлюенсера, с карточкой коллаборации.
type InfluencerRequestItem struct {
	RequestResponse
	Collaboration *CollaborationResponse `json:"collaboration,omitempty"`
}

type InfluencerRequestListResponse struct {
	Requests []*InfluencerRequestItem `json:"requests"`
	Total    int                      `json:"total"`
}
