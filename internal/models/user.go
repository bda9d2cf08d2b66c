package models

type User struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string
	Role         UserRole `gorm:"type:varchar(20);not null"`
	FCMToken     string   // пустая строка = push не доставляется

	// Relations
	Brand      *Brand      `gorm:"foreignKey:UserID"`
	Influencer *Influencer `gorm:"foreignKey:UserID"`
}
