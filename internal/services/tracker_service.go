package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ymgta/time-tracker-api/internal/constants"
	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound      = errors.New("tracker entry not found")
	ErrNoRunningTimer     = errors.New("no running timer")
	ErrEntryNotResumable  = errors.New("entry is not paused and cannot be resumed")
	ErrNoDates            = errors.New("at least one date is required")
	ErrUpsertDateConflict = errors.New("an explicit id cannot be combined with multiple dates")
	ErrInvalidDate        = errors.New("date must be formatted as YYYY-MM-DD")
	ErrProjectRequired    = errors.New("a project is required to start a timer")
	ErrTooManyEntries     = errors.New("too many entries in one bulk call")
)

// TrackerService handles tracker entry business logic: CRUD, the timer
// lifecycle and the read-side aggregation.
type TrackerService struct {
	entryRepo repository.TrackerEntryRepository
	now       func() time.Time
}

// NewTrackerService creates a new TrackerService
func NewTrackerService(entryRepo repository.TrackerEntryRepository) *TrackerService {
	return &TrackerService{
		entryRepo: entryRepo,
		now:       time.Now,
	}
}

// DayResult is the result of a single-date query.
type DayResult struct {
	Entries       []models.TrackerEntry
	TotalDuration int64
}

// RangeResult groups entries by date, preserving creation order inside each
// bucket, and carries the aggregate totals for the whole range.
type RangeResult struct {
	Days          map[string][]models.TrackerEntry
	TotalDuration int64
	TotalAmount   float64
}

// TimerStatus reports whether a timer is running for the queried scope.
type TimerStatus struct {
	IsRunning      bool
	CurrentEntry   *models.TrackerEntry
	ElapsedSeconds int64
}

// UpsertEntryInput represents input for creating or updating tracker entries.
// All expanded rows share every field except the date.
type UpsertEntryInput struct {
	ID          *uint64
	Dates       []string
	Start       time.Time
	Stop        *time.Time
	Duration    int64
	AssignedID  *uint64
	ProjectID   uint64
	Description string
}

// BulkEntryInput represents one record of a bulk-create call.
type BulkEntryInput struct {
	Start       time.Time
	Stop        *time.Time
	Dates       []string
	AssignedID  *uint64
	ProjectID   uint64
	Description string
	Duration    int64
}

// StartTimerInput represents input for starting or resuming a timer.
type StartTimerInput struct {
	ProjectID           uint64
	AssignedID          *uint64
	Start               *time.Time
	ContinueFromEntryID *uint64
}

// StopTimerInput represents input for stopping or pausing a running timer.
type StopTimerInput struct {
	EntryID    *uint64
	AssignedID *uint64
	At         *time.Time
}

// GetByDate returns all entries for one calendar date plus their total duration.
func (s *TrackerService) GetByDate(teamID uint64, date string, filter repository.EntryFilter) (*DayResult, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListByDate(teamID, date, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	result := &DayResult{Entries: entries}
	for _, e := range entries {
		if e.Duration > 0 {
			result.TotalDuration += e.Duration
		}
	}

	return result, nil
}

// GetByRange returns entries with date in [from, to] grouped per date, plus
// totalDuration and totalAmount over the whole range. Amounts use the hourly
// project rate; entries without a project or rate contribute zero.
func (s *TrackerService) GetByRange(teamID uint64, from, to string, filter repository.EntryFilter) (*RangeResult, error) {
	if err := validateDate(from); err != nil {
		return nil, err
	}
	if err := validateDate(to); err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListByRange(teamID, from, to, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	result := &RangeResult{Days: make(map[string][]models.TrackerEntry)}
	for _, e := range entries {
		result.Days[e.Date] = append(result.Days[e.Date], e)
		if e.Duration > 0 {
			result.TotalDuration += e.Duration
			result.TotalAmount += e.Amount(e.Project.Rate)
		}
	}

	return result, nil
}

// Upsert creates one entry per date, or updates an existing entry when an id
// is supplied. An id combined with multiple dates is rejected at the boundary;
// the update path accepts at most one date.
func (s *TrackerService) Upsert(teamID uint64, input UpsertEntryInput) ([]models.TrackerEntry, error) {
	for _, d := range input.Dates {
		if err := validateDate(d); err != nil {
			return nil, err
		}
	}

	if input.ID != nil {
		return s.updateEntry(teamID, input)
	}

	if len(input.Dates) == 0 {
		return nil, ErrNoDates
	}

	entries := make([]models.TrackerEntry, 0, len(input.Dates))
	for _, d := range input.Dates {
		entries = append(entries, models.TrackerEntry{
			TeamID:      teamID,
			AssignedID:  input.AssignedID,
			ProjectID:   input.ProjectID,
			Date:        d,
			Start:       input.Start,
			Stop:        input.Stop,
			Duration:    normalizeDuration(input.Start, input.Stop, input.Duration),
			Description: input.Description,
		})
	}

	if err := s.entryRepo.CreateBatch(entries); err != nil {
		return nil, fmt.Errorf("failed to create entries: %w", err)
	}

	ids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	return s.entryRepo.ListByIDs(teamID, ids)
}

func (s *TrackerService) updateEntry(teamID uint64, input UpsertEntryInput) ([]models.TrackerEntry, error) {
	if len(input.Dates) > 1 {
		return nil, ErrUpsertDateConflict
	}

	entry, err := s.entryRepo.FindByID(teamID, *input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}

	entry.Start = input.Start
	entry.Stop = input.Stop
	entry.Duration = normalizeDuration(input.Start, input.Stop, input.Duration)
	entry.AssignedID = input.AssignedID
	entry.ProjectID = input.ProjectID
	entry.Description = input.Description
	if len(input.Dates) == 1 {
		entry.Date = input.Dates[0]
	}

	if err := s.entryRepo.Update(entry); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	return s.entryRepo.ListByIDs(teamID, []uint64{entry.ID})
}

// BulkCreate expands every record's dates into flat rows and inserts them in
// one batch. An empty expansion is a no-op and never issues a write.
func (s *TrackerService) BulkCreate(teamID uint64, inputs []BulkEntryInput) ([]models.TrackerEntry, error) {
	entries := []models.TrackerEntry{}
	for _, input := range inputs {
		for _, d := range input.Dates {
			if err := validateDate(d); err != nil {
				return nil, err
			}
			entries = append(entries, models.TrackerEntry{
				TeamID:      teamID,
				AssignedID:  input.AssignedID,
				ProjectID:   input.ProjectID,
				Date:        d,
				Start:       input.Start,
				Stop:        input.Stop,
				Duration:    normalizeDuration(input.Start, input.Stop, input.Duration),
				Description: input.Description,
			})
		}
	}

	if len(entries) == 0 {
		return entries, nil
	}
	if len(entries) > constants.MaxBulkEntries {
		return nil, ErrTooManyEntries
	}

	if err := s.entryRepo.CreateBatch(entries); err != nil {
		return nil, fmt.Errorf("failed to create entries: %w", err)
	}

	ids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	return s.entryRepo.ListByIDs(teamID, ids)
}

// Delete removes an entry and returns the deleted row. A second delete of the
// same id fails with ErrEntryNotFound; the delete is not idempotent.
func (s *TrackerService) Delete(teamID, id uint64) (*models.TrackerEntry, error) {
	entry, err := s.entryRepo.DeleteReturning(teamID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to delete entry: %w", err)
	}
	return entry, nil
}

// StartTimer starts a fresh timer or resumes a paused entry. The fresh path
// first force-stops the assignee's running entry, so at most one timer runs
// per (team, assignee) at any time.
func (s *TrackerService) StartTimer(teamID uint64, input StartTimerInput) (*models.TrackerEntry, error) {
	if input.ContinueFromEntryID != nil {
		return s.resumeTimer(teamID, *input.ContinueFromEntryID, input.AssignedID)
	}

	if input.ProjectID == 0 {
		return nil, ErrProjectRequired
	}

	now := s.now()
	start := now
	if input.Start != nil {
		start = *input.Start
	}

	entry := &models.TrackerEntry{
		TeamID:     teamID,
		AssignedID: input.AssignedID,
		ProjectID:  input.ProjectID,
		Date:       start.Format(constants.DateFormat),
		Start:      start,
		Stop:       nil,
		Duration:   models.RunningDuration,
	}

	if err := s.entryRepo.StartTimer(entry, now); err != nil {
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}

	return s.entryRepo.FindByID(teamID, entry.ID, "User", "Project", "Project.Customer")
}

func (s *TrackerService) resumeTimer(teamID, entryID uint64, assignedID *uint64) (*models.TrackerEntry, error) {
	entry, err := s.entryRepo.Resume(teamID, entryID, assignedID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrEntryNotFound
		case errors.Is(err, repository.ErrEntryNotPaused):
			return nil, ErrEntryNotResumable
		}
		return nil, fmt.Errorf("failed to resume timer: %w", err)
	}

	return s.entryRepo.FindByID(teamID, entry.ID, "User", "Project", "Project.Customer")
}

// StopTimer closes the matching running timer, deriving its duration in whole
// seconds from the stop instant.
func (s *TrackerService) StopTimer(teamID uint64, input StopTimerInput) (*models.TrackerEntry, error) {
	return s.closeTimer(teamID, input)
}

// PauseTimer is mechanically the same write as StopTimer; the paused row stays
// resumable through StartTimer's continue-from path and shows up in
// PausedEntries until resumed.
func (s *TrackerService) PauseTimer(teamID uint64, input StopTimerInput) (*models.TrackerEntry, error) {
	return s.closeTimer(teamID, input)
}

func (s *TrackerService) closeTimer(teamID uint64, input StopTimerInput) (*models.TrackerEntry, error) {
	at := s.now()
	if input.At != nil {
		at = *input.At
	}

	entry, err := s.entryRepo.StopRunning(teamID, input.EntryID, input.AssignedID, at)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoRunningTimer
		}
		return nil, fmt.Errorf("failed to stop timer: %w", err)
	}

	return s.entryRepo.FindByID(teamID, entry.ID, "User", "Project", "Project.Customer")
}

// CurrentTimer returns the most recently created running entry for the scope,
// or nil when nothing is running.
func (s *TrackerService) CurrentTimer(teamID uint64, assignedID *uint64) (*models.TrackerEntry, error) {
	entry, err := s.entryRepo.FindRunning(teamID, assignedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find running timer: %w", err)
	}
	return entry, nil
}

// GetTimerStatus reports the running state plus elapsed whole seconds.
func (s *TrackerService) GetTimerStatus(teamID uint64, assignedID *uint64) (*TimerStatus, error) {
	entry, err := s.CurrentTimer(teamID, assignedID)
	if err != nil {
		return nil, err
	}

	status := &TimerStatus{}
	if entry != nil {
		status.IsRunning = true
		status.CurrentEntry = entry
		status.ElapsedSeconds = entry.ElapsedSeconds(s.now())
	}

	return status, nil
}

// PausedEntries returns finished entries most-recent-first, capped at the
// display window limit.
func (s *TrackerService) PausedEntries(teamID uint64, assignedID *uint64) ([]models.TrackerEntry, error) {
	entries, err := s.entryRepo.ListPaused(teamID, assignedID, constants.PausedEntriesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list paused entries: %w", err)
	}
	return entries, nil
}

// normalizeDuration keeps the sentinel invariant for written rows: open rows
// carry the running sentinel, closed rows a non-negative duration derived
// from start/stop when the caller did not supply one.
func normalizeDuration(start time.Time, stop *time.Time, duration int64) int64 {
	if stop == nil {
		return models.RunningDuration
	}
	if duration >= 0 {
		return duration
	}
	derived := int64(stop.Sub(start) / time.Second)
	if derived < 0 {
		derived = 0
	}
	return derived
}

func validateDate(date string) error {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
