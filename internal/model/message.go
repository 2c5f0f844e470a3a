package model

import (
	"encoding/json"
	"time"
)

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index:idx_messages_chat_created,priority:1" json:"chat_id"`
	Chat      *Chat     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SenderID  *uint     `json:"sender_id"` // nil у сообщений от AI
	Sender    *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsAI      bool      `gorm:"column:is_ai;not null;default:false" json:"is_ai"`
	CreatedAt time.Time `gorm:"index:idx_messages_chat_created,priority:2" json:"created_at"`

	// Заполняются только при чтении через LEFT JOIN users
	SenderName   *string `gorm:"->;-:migration" json:"sender_name"`
	SenderAvatar *string `gorm:"->;-:migration" json:"sender_avatar"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	return json.Marshal(struct {
		alias
		CreatedAt string `json:"created_at"`
		Time      string `json:"time"`
	}{
		alias:     alias(m),
		CreatedAt: FormatTime(m.CreatedAt),
		Time:      m.CreatedAt.Format(ClockLayout),
	})
}
