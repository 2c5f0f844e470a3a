package model

import "time"

type GroupRole string

const (
	GroupRoleAdmin  GroupRole = "admin"
	GroupRoleMember GroupRole = "member"
)

// DefaultGroupAvatar ставится группе, если аватар не передан
const DefaultGroupAvatar = "👥"

type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	Avatar      string    `gorm:"size:255;not null;default:''" json:"avatar"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	Creator     *User     `gorm:"foreignKey:CreatedBy" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type GroupMember struct {
	GroupID uint      `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	UserID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	Group   *Group    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User    *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Role    GroupRole `gorm:"size:16;not null;default:'member'" json:"role"`
}
