package dto

import "time"

// --- Collaboration Requests ---

type CreateCollaborationRequest struct {
	Name        string     `json:"name" validate:"required,min=3,max=100"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	Image       string     `json:"image" validate:"omitempty,max=500"`
	Categories  []string   `json:"categories" validate:"required,min=1"`
	Amount      float64    `json:"amount" validate:"required,min=0"`
	EndDate     *time.Time `json:"end_date" validate:"omitempty,futuredate"` // Кастомное правило
}

// BrandCollaborationsQuery - параметры списка коллабораций бренда.
// InfluencerID включает пометку "этот инфлюенсер уже приглашён".
type BrandCollaborationsQuery struct {
	InfluencerID string `form:"influencer_id" json:"influencer_id" validate:"omitempty,uuid"`
}

// --- Collaboration Responses ---

type CollaborationResponse struct {
	ID          string     `json:"id"`
	BrandID     string     `json:"brand_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Image       string     `json:"image,omitempty"`
	Categories  []string   `json:"categories"`
	Amount      float64    `json:"amount"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      string     `json:"status"`
	HasEnded    bool       `json:"has_ended"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CollaborationDetailsResponse - карточка коллаборации с полями,
// зависящими от роли смотрящего.
type CollaborationDetailsResponse struct {
	CollaborationResponse

	// Для инфлюенсера: выражал ли он интерес / приглашен ли
	HasExpressedInterest *bool `json:"has_expressed_interest,omitempty"`
	IsInvited            *bool `json:"is_invited,omitempty"`

	// Для бренда: инфлюенсеры, завершившие работу
	CompletedInfluencers []*InfluencerSummary `json:"completed_influencers,omitempty"`
}

// BrandCollaborationItem - элемент списка коллабораций бренда. Поле Invited
// заполняется только при запросе с influencer_id.
type BrandCollaborationItem struct {
	CollaborationResponse
	Invited *bool `json:"invited,omitempty"`
}

type CollaborationListResponse struct {
	Collaborations []*BrandCollaborationItem `json:"collaborations"`
	Total          int                       `json:"total"`
}

// SuggestedCollaborationResponse - элемент подборки для инфлюенсера.
type SuggestedCollaborationResponse struct {
	CollaborationResponse
	BrandName string `json:"brand_name,omitempty"`
	Invited   bool   `json:"invited"` // бренд уже пригласил этого инфлюенсера
}
