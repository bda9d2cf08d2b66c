package models

import "time"

// Chat - прямой чат между двумя пользователями. Создается лениво:
// при принятии коллаборации или при первом сообщении между пользователями.
type Chat struct {
	BaseModelWithDeleted
	CreatedBy string `gorm:"not null"`

	// PairKey - детерминированный ключ пары участников. Уникальный
	// индекс не дает двум конкурирующим принятиям создать второй чат
	// той же пары.
	PairKey string `gorm:"not null;uniqueIndex:idx_chat_pair"`

	// Relations
	Participants []ChatParticipant `gorm:"foreignKey:ChatID"`
}

// ChatPairKey строит ключ пары. Порядок аргументов не важен.
func ChatPairKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}


type ChatParticipant struct {
	BaseModelWithDeleted
	ChatID   string    `gorm:"not null;uniqueIndex:idx_chat_user"`
	UserID   string    `gorm:"not null;uniqueIndex:idx_chat_user"`
	JoinedAt time.Time `gorm:"default:now()"`
}
