package dto

import (
	"time"

	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/services"
)

// TrackerEntryDTO represents a tracker entry in API responses, enriched with
// the assignee and the project (with its customer) when preloaded.
type TrackerEntryDTO struct {
	ID          uint64      `json:"id"`
	TeamID      uint64      `json:"team_id"`
	AssignedID  *uint64     `json:"assigned_id"`
	ProjectID   uint64      `json:"project_id"`
	Date        string      `json:"date"`
	Start       time.Time   `json:"start"`
	Stop        *time.Time  `json:"stop"`
	Duration    int64       `json:"duration"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	User        *UserDTO    `json:"user,omitempty"`
	Project     *ProjectDTO `json:"project,omitempty"`
}

// DayResponse is the payload for single-date queries.
type DayResponse struct {
	Entries       []TrackerEntryDTO `json:"entries"`
	TotalDuration int64             `json:"total_duration"`
}

// RangeResponse is the payload for range queries: entries grouped per date
// plus totals over the whole range.
type RangeResponse struct {
	Result        map[string][]TrackerEntryDTO `json:"result"`
	TotalDuration int64                        `json:"total_duration"`
	TotalAmount   float64                      `json:"total_amount"`
}

// TimerStatusResponse reports the running state of the queried scope.
type TimerStatusResponse struct {
	IsRunning      bool             `json:"is_running"`
	CurrentEntry   *TrackerEntryDTO `json:"current_entry"`
	ElapsedSeconds int64            `json:"elapsed_seconds"`
}

// ToTrackerEntryDTO converts a TrackerEntry model to TrackerEntryDTO
func ToTrackerEntryDTO(entry models.TrackerEntry) TrackerEntryDTO {
	dto := TrackerEntryDTO{
		ID:          entry.ID,
		TeamID:      entry.TeamID,
		AssignedID:  entry.AssignedID,
		ProjectID:   entry.ProjectID,
		Date:        entry.Date,
		Start:       entry.Start,
		Stop:        entry.Stop,
		Duration:    entry.Duration,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt,
	}

	// Include assignee if preloaded
	if entry.User != nil && entry.User.ID != 0 {
		user := ToUserDTO(*entry.User)
		dto.User = &user
	}

	// Include project if preloaded
	if entry.Project.ID != 0 {
		project := ToProjectDTO(entry.Project)
		dto.Project = &project
	}

	return dto
}

// ToTrackerEntryDTOs converts a slice of entries
func ToTrackerEntryDTOs(entries []models.TrackerEntry) []TrackerEntryDTO {
	dtos := make([]TrackerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ToTrackerEntryDTO(e)
	}
	return dtos
}

// ToDayResponse converts a DayResult
func ToDayResponse(result services.DayResult) DayResponse {
	return DayResponse{
		Entries:       ToTrackerEntryDTOs(result.Entries),
		TotalDuration: result.TotalDuration,
	}
}

// ToRangeResponse converts a RangeResult
func ToRangeResponse(result services.RangeResult) RangeResponse {
	days := make(map[string][]TrackerEntryDTO, len(result.Days))
	for date, entries := range result.Days {
		days[date] = ToTrackerEntryDTOs(entries)
	}
	return RangeResponse{
		Result:        days,
		TotalDuration: result.TotalDuration,
		TotalAmount:   result.TotalAmount,
	}
}

// ToTimerStatusResponse converts a TimerStatus
func ToTimerStatusResponse(status services.TimerStatus) TimerStatusResponse {
	resp := TimerStatusResponse{
		IsRunning:      status.IsRunning,
		ElapsedSeconds: status.ElapsedSeconds,
	}
	if status.CurrentEntry != nil {
		entry := ToTrackerEntryDTO(*status.CurrentEntry)
		resp.CurrentEntry = &entry
	}
	return resp
}
