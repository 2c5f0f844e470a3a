package model

import (
	"encoding/json"
	"time"
)

// PresenceWindow - сколько времени после last_seen пользователь считается онлайн
const PresenceWindow = 5 * time.Minute

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Phone     string    `gorm:"size:32;not null;uniqueIndex" json:"phone"` // +79995552233
	Name      string    `gorm:"size:255;not null;default:''" json:"name"`
	Avatar    string    `gorm:"size:255;not null;default:''" json:"avatar"`
	IsOnline  bool      `gorm:"not null;default:false" json:"is_online"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
}

// OnlineAt - онлайн ли пользователь в момент now: флаг выставлен
// или last_seen попадает в PresenceWindow.
func (u *User) OnlineAt(now time.Time) bool {
	return u.IsOnline || u.LastSeen.After(now.Add(-PresenceWindow))
}

// ResolvePresence заменяет сохраненный флаг вычисленным
func (u *User) ResolvePresence(now time.Time) {
	u.IsOnline = u.OnlineAt(now)
}

func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		LastSeen  string `json:"last_seen"`
		CreatedAt string `json:"created_at"`
	}{
		alias:     alias(u),
		LastSeen:  FormatTime(u.LastSeen),
		CreatedAt: FormatTime(u.CreatedAt),
	})
}

// ResolvePresenceAll вызывает ResolvePresence для каждого пользователя
func ResolvePresenceAll(users []User, now time.Time) {
	for i := range users {
		users[i].ResolvePresence(now)
	}
}
