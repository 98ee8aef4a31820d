package models

import (
	"time"

	"gorm.io/gorm"
)

// RunningDuration is the sentinel stored in TrackerEntry.Duration while a
// timer is running. Every finished entry carries a non-negative duration.
const RunningDuration int64 = -1

// TimerState is the decoded lifecycle state of a tracker entry.
type TimerState int

const (
	// TimerRunning: stop is NULL and duration holds the sentinel.
	TimerRunning TimerState = iota
	// TimerPaused: stop is set and duration is non-negative. The row can be
	// resumed, which discards the paused duration.
	TimerPaused
	// TimerStopped is representationally identical to TimerPaused; the
	// distinction lives in caller intent, not in the stored row.
	TimerStopped
)

// TrackerEntry is one continuous or completed span of tracked work,
// always owned by a team and keyed to a single calendar date. Timers
// spanning multiple days are stored as one row per date.
type TrackerEntry struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	TeamID      uint64     `gorm:"not null;index" json:"team_id"`
	AssignedID  *uint64    `gorm:"index" json:"assigned_id"`
	ProjectID   uint64     `gorm:"not null;index" json:"project_id"`
	Date        string     `gorm:"type:varchar(10);not null;index" json:"date"`
	Start       time.Time  `gorm:"not null" json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `gorm:"not null;default:0" json:"duration"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	User    *User   `gorm:"foreignKey:AssignedID" json:"user,omitempty"`
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// State decodes the sentinel encoding. Stored rows cannot tell paused from
// stopped apart, so every finished row reports TimerPaused; the paused-entries
// read is the operative distinction.
func (e *TrackerEntry) State() TimerState {
	if e.Duration == RunningDuration {
		return TimerRunning
	}
	return TimerPaused
}

// IsRunning reports whether the entry is an open timer.
func (e *TrackerEntry) IsRunning() bool {
	return e.State() == TimerRunning
}

// ElapsedSeconds returns the whole seconds since start for a running entry,
// or the stored duration for a finished one.
func (e *TrackerEntry) ElapsedSeconds(now time.Time) int64 {
	if e.IsRunning() {
		return int64(now.Sub(e.Start) / time.Second)
	}
	return e.Duration
}

// Amount is the monetary value of the entry at the given hourly rate.
// Running entries are worth nothing until stopped.
func (e *TrackerEntry) Amount(rate float64) float64 {
	if e.Duration <= 0 {
		return 0
	}
	return rate * float64(e.Duration) / 3600
}

// BeforeCreate keeps the sentinel invariant: stop IS NULL ⇔ duration == -1.
func (e *TrackerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.Stop == nil {
		e.Duration = RunningDuration
	}
	return nil
}
