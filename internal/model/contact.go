package model

import "time"

// Contact - направленное ребро "пользователь добавил контакт"
type Contact struct {
	UserID        uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ContactUserID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"contact_user_id"`
	User          *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ContactUser   *User     `gorm:"foreignKey:ContactUserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}
