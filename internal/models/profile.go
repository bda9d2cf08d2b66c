package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type Brand struct {
	BaseModelWithDeleted
	UserID       string         `gorm:"uniqueIndex;not null"`
	Name         string         `gorm:"not null"`
	About        string
	Categories   datatypes.JSON `gorm:"type:jsonb"` // ["fashion", "beauty"]
	ProfilePhoto string

	// Relations
	Collaborations []Collaboration `gorm:"foreignKey:BrandID"`
}

// GetCategories возвращает категории бренда как slice строк
func (b *Brand) GetCategories() []string {
	var categories []string
	if len(b.Categories) > 0 {
		_ = json.Unmarshal(b.Categories, &categories)
	}
	return categories
}

// SetCategories устанавливает категории бренда
func (b *Brand) SetCategories(categories []string) {
	data, _ := json.Marshal(categories)
	b.Categories = datatypes.JSON(data)
}

type Influencer struct {
	BaseModelWithDeleted
	UserID       string         `gorm:"uniqueIndex;not null"`
	Name         string         `gorm:"not null"`
	About        string
	Categories   datatypes.JSON `gorm:"type:jsonb"`
	CollabValue  float64        `gorm:"default:0"` // минимальная ставка, ниже которой инфлюенсер не работает
	ProfilePhoto string
}

// GetCategories возвращает категории инфлюенсера как slice строк
func (i *Influencer) GetCategories() []string {
	var categories []string
	if len(i.Categories) > 0 {
		_ = json.Unmarshal(i.Categories, &categories)
	}
	return categories
}

// SetCategories устанавливает категории инфлюенсера
func (i *Influencer) SetCategories(categories []string) {
	data, _ := json.Marshal(categories)
	i.Categories = datatypes.JSON(data)
}
