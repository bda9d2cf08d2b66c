package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Collaboration struct {
	BaseModelWithDeleted
	BrandID     string `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string
	Image       string
	Categories  datatypes.JSON `gorm:"type:jsonb"`
	Amount      float64        `gorm:"not null"` // бюджет (потолок ставки инфлюенсера)
	EndDate     *time.Time     // nil = бессрочная
	Status      CollaborationStatus `gorm:"type:varchar(20);default:'pending'"`

	// Relations
	Brand    *Brand                 `gorm:"foreignKey:BrandID"`
	Requests []CollaborationRequest `gorm:"foreignKey:CollaborationID"`
}

// GetCategories возвращает категории коллаборации как slice строк
func (c *Collaboration) GetCategories() []string {
	var categories []string
	if len(c.Categories) > 0 {
		_ = json.Unmarshal(c.Categories, &categories)
	}
	return categories
}

// SetCategories устанавливает категории коллаборации
func (c *Collaboration) SetCategories(categories []string) {
	data, _ := json.Marshal(categories)
	c.Categories = datatypes.JSON(data)
}

// HasEnded - true, если end_date задан и уже в прошлом.
// Все переходы по запросам такой коллаборации запрещены.
func (c *Collaboration) HasEnded(now time.Time) bool {
	return c.EndDate != nil && c.EndDate.Before(now)
}
