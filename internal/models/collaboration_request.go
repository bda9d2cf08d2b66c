package models

// CollaborationRequest - join-запись пары (collaboration, influencer).
// Уникальный индекс по паре - защита от дублей при конкурентном матчинге.
type CollaborationRequest struct {
	BaseModelWithDeleted
	CollaborationID string        `gorm:"not null;uniqueIndex:idx_collaboration_influencer"`
	InfluencerID    string        `gorm:"not null;uniqueIndex:idx_collaboration_influencer"`
	Status          RequestStatus `gorm:"not null;default:1"`

	// Relations
	Collaboration *Collaboration `gorm:"foreignKey:CollaborationID"`
	Influencer    *Influencer    `gorm:"foreignKey:InfluencerID"`
}
