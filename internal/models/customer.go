package models

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	TeamID    uint64         `gorm:"not null;index" json:"team_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Website   string         `gorm:"type:varchar(512)" json:"website"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Projects []Project `gorm:"foreignKey:CustomerID" json:"projects,omitempty"`
}
