package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	FullName     string         `gorm:"type:varchar(255)" json:"full_name"`
	AvatarURL    string         `gorm:"type:varchar(512)" json:"avatar_url"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Teams          []TeamMember   `gorm:"foreignKey:UserID" json:"-"`
	TrackerEntries []TrackerEntry `gorm:"foreignKey:AssignedID" json:"-"`
}
