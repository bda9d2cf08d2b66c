package dto

import "time"

// --- Profile Requests ---

type CreateBrandRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=100"`
	About        string   `json:"about" validate:"omitempty,max=5000"`
	Categories   []string `json:"categories" validate:"omitempty,min=1"`
	ProfilePhoto string   `json:"profile_photo" validate:"omitempty,max=500"`
}

type CreateInfluencerRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=100"`
	About        string   `json:"about" validate:"omitempty,max=5000"`
	Categories   []string `json:"categories" validate:"required,min=1"`
	CollabValue  float64  `json:"collab_value" validate:"min=0"`
	ProfilePhoto string   `json:"profile_photo" validate:"omitempty,max=500"`
}

// UpdateInfluencerRequest - частичное обновление. Изменение категорий
// или ставки запускает перематчинг по открытым коллаборациям.
type UpdateInfluencerRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	About        *string  `json:"about,omitempty" validate:"omitempty,max=5000"`
	Categories   []string `json:"categories,omitempty"`
	CollabValue  *float64 `json:"collab_value,omitempty" validate:"omitempty,min=0"`
	ProfilePhoto *string  `json:"profile_photo,omitempty" validate:"omitempty,max=500"`
}

// --- Profile Responses ---

type BrandResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	About        string    `json:"about,omitempty"`
	Categories   []string  `json:"categories"`
	ProfilePhoto string    `json:"profile_photo,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type InfluencerResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	About        string    `json:"about,omitempty"`
	Categories   []string  `json:"categories"`
	CollabValue  float64   `json:"collab_value"`
	ProfilePhoto string    `json:"profile_photo,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
