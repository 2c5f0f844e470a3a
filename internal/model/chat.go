package model

import (
	"encoding/json"
	"time"
)

type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
	ChatTypeAI      ChatType = "ai"
)

// Отображаемые имя и аватар AI-чата
const (
	AIChatName   = "Chattik AI"
	AIChatAvatar = "🤖"
)

type Chat struct {
	ID      uint     `gorm:"primaryKey" json:"id"`
	Type    ChatType `gorm:"size:16;not null;index" json:"type"`
	GroupID *uint    `gorm:"uniqueIndex" json:"group_id,omitempty"`
	Group   *Group   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name    string   `gorm:"size:255;not null;default:''" json:"name"`
	// DedupeKey делает find-or-create личных и AI-чатов строгим:
	// "private:<min>:<max>" или "ai:<user>", у групп и legacy-чатов NULL.
	DedupeKey *string   `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Chat) IsGroup() bool {
	return c.Type == ChatTypeGroup
}

func (c Chat) MarshalJSON() ([]byte, error) {
	type alias Chat
	return json.Marshal(struct {
		alias
		IsGroup   bool   `json:"is_group"`
		CreatedAt string `json:"created_at"`
	}{
		alias:     alias(c),
		IsGroup:   c.IsGroup(),
		CreatedAt: FormatTime(c.CreatedAt),
	})
}

type ChatParticipant struct {
	ChatID   uint      `gorm:"primaryKey;autoIncrement:false" json:"chat_id"`
	UserID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	Chat     *Chat     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// ChatSummary - строка списка чатов пользователя
type ChatSummary struct {
	ID              uint       `json:"id"`
	Type            ChatType   `json:"type"`
	Name            string     `json:"name"`
	Avatar          string     `json:"avatar"`
	LastMessage     *string    `json:"last_message"`
	LastMessageTime *time.Time `json:"last_message_time"`
	Unread          int        `json:"unread"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (s ChatSummary) MarshalJSON() ([]byte, error) {
	type alias ChatSummary
	out := struct {
		alias
		LastMessageTime *string `json:"last_message_time"`
		Time            string  `json:"time"`
		IsGroup         bool    `json:"is_group"`
		CreatedAt       string  `json:"created_at"`
	}{
		alias:     alias(s),
		IsGroup:   s.Type == ChatTypeGroup,
		CreatedAt: FormatTime(s.CreatedAt),
	}
	if s.LastMessageTime != nil {
		ts := FormatTime(*s.LastMessageTime)
		out.LastMessageTime = &ts
		out.Time = s.LastMessageTime.Format(ClockLayout)
	}
	return json.Marshal(out)
}
