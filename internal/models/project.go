package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	TeamID      uint64         `gorm:"not null;index" json:"team_id"`
	CustomerID  *uint64        `json:"customer_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Rate        float64        `gorm:"not null;default:0" json:"rate"`
	Currency    string         `gorm:"type:varchar(3)" json:"currency"`
	Billable    bool           `gorm:"not null;default:false" json:"billable"`
	Status      ProjectStatus  `gorm:"type:varchar(20);not null;default:'in_progress'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Team     Team      `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}
