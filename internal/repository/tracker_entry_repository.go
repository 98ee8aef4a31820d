package repository

import (
	"errors"
	"time"

	"github.com/ymgta/time-tracker-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrEntryNotPaused is returned when resuming an entry that is still open.
	ErrEntryNotPaused = errors.New("tracker repository: entry is not paused")
)

// entryPreloads are the relations every enriched read carries.
var entryPreloads = []string{"User", "Project", "Project.Customer"}

// GormTrackerEntryRepository is a GORM implementation of TrackerEntryRepository
type GormTrackerEntryRepository struct {
	db *gorm.DB
}

// NewTrackerEntryRepository creates a new TrackerEntryRepository
func NewTrackerEntryRepository(db *gorm.DB) TrackerEntryRepository {
	return &GormTrackerEntryRepository{db: db}
}

func withPreloads(db *gorm.DB, preload []string) *gorm.DB {
	for _, p := range preload {
		db = db.Preload(p)
	}
	return db
}

// FindByID finds an entry by ID within the team scope
func (r *GormTrackerEntryRepository) FindByID(teamID, id uint64, preload ...string) (*models.TrackerEntry, error) {
	var entry models.TrackerEntry
	query := withPreloads(r.db, preload).Where("team_id = ?", teamID)
	if err := query.Where("id = ?", id).Take(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByIDs returns the enriched entries for the given IDs within the team scope
func (r *GormTrackerEntryRepository) ListByIDs(teamID uint64, ids []uint64) ([]models.TrackerEntry, error) {
	entries := []models.TrackerEntry{}
	if len(ids) == 0 {
		return entries, nil
	}
	err := withPreloads(r.db, entryPreloads).
		Where("team_id = ?", teamID).
		Where("id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByDate returns entries for one calendar date
func (r *GormTrackerEntryRepository) ListByDate(teamID uint64, date string, filter EntryFilter) ([]models.TrackerEntry, error) {
	entries := []models.TrackerEntry{}
	query := withPreloads(r.db, entryPreloads).
		Where("team_id = ?", teamID).
		Where("date = ?", date)
	query = applyEntryFilter(query, filter)
	if err := query.Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByRange returns entries with date in [from, to], in creation order
func (r *GormTrackerEntryRepository) ListByRange(teamID uint64, from, to string, filter EntryFilter) ([]models.TrackerEntry, error) {
	entries := []models.TrackerEntry{}
	query := withPreloads(r.db, entryPreloads).
		Where("team_id = ?", teamID).
		Where("date >= ? AND date <= ?", from, to)
	query = applyEntryFilter(query, filter)
	if err := query.Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateBatch inserts all entries atomically
func (r *GormTrackerEntryRepository) CreateBatch(entries []models.TrackerEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entries).Error
	})
}

// Update persists field changes of an existing entry
func (r *GormTrackerEntryRepository) Update(entry *models.TrackerEntry) error {
	return r.db.Save(entry).Error
}

// DeleteReturning deletes an entry within the team scope and returns the deleted row.
// The read and the delete run in one transaction so the returned row is exactly
// the row removed; a second delete of the same id fails with ErrRecordNotFound.
func (r *GormTrackerEntryRepository) DeleteReturning(teamID, id uint64) (*models.TrackerEntry, error) {
	var entry models.TrackerEntry
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Where("id = ?", id).Take(&entry).Error; err != nil {
			return err
		}
		res := tx.Where("team_id = ?", teamID).Where("id = ?", id).Delete(&models.TrackerEntry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// StartTimer force-stops any running entry for the new entry's assignee and
// inserts the new running entry. Both writes share one transaction so two
// concurrent starts cannot leave two open timers behind.
func (r *GormTrackerEntryRepository) StartTimer(entry *models.TrackerEntry, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := closeOpenEntry(tx, entry.TeamID, nil, entry.AssignedID, now); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(entry).Error
	})
}

// Resume re-opens a paused entry, discarding its paused duration. Any other
// running entry for the same assignee is closed first, keeping the
// at-most-one-running invariant across both start paths.
func (r *GormTrackerEntryRepository) Resume(teamID, entryID uint64, assignedID *uint64) (*models.TrackerEntry, error) {
	var entry models.TrackerEntry
	err := r.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("team_id = ?", teamID)
		if assignedID != nil {
			query = query.Where("assigned_id = ?", *assignedID)
		}
		if err := query.Where("id = ?", entryID).Take(&entry).Error; err != nil {
			return err
		}
		if entry.Stop == nil {
			return ErrEntryNotPaused
		}

		if _, err := closeOpenEntry(tx, teamID, nil, entry.AssignedID, time.Now()); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		res := tx.Model(&models.TrackerEntry{}).
			Where("id = ? AND duration >= 0", entry.ID).
			Updates(map[string]interface{}{"stop": nil, "duration": models.RunningDuration})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEntryNotPaused
		}

		entry.Stop = nil
		entry.Duration = models.RunningDuration
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// StopRunning closes the matching running entry at the given instant
func (r *GormTrackerEntryRepository) StopRunning(teamID uint64, entryID, assignedID *uint64, at time.Time) (*models.TrackerEntry, error) {
	var stopped *models.TrackerEntry
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		stopped, err = closeOpenEntry(tx, teamID, entryID, assignedID, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stopped, nil
}

// closeOpenEntry finds the newest running entry matching the scope and closes
// it with a conditional update guarded by the running sentinel. A concurrent
// writer that already closed the row makes the guard miss, which surfaces as
// ErrRecordNotFound rather than a double write.
func closeOpenEntry(tx *gorm.DB, teamID uint64, entryID, assignedID *uint64, at time.Time) (*models.TrackerEntry, error) {
	var entry models.TrackerEntry
	query := tx.Where("team_id = ?", teamID).Where("duration = ?", models.RunningDuration)
	if entryID != nil {
		query = query.Where("id = ?", *entryID)
	}
	if assignedID != nil {
		query = query.Where("assigned_id = ?", *assignedID)
	}
	if err := query.Order("created_at DESC, id DESC").Take(&entry).Error; err != nil {
		return nil, err
	}

	elapsed := int64(at.Sub(entry.Start) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	res := tx.Model(&models.TrackerEntry{}).
		Where("id = ? AND duration = ?", entry.ID, models.RunningDuration).
		Updates(map[string]interface{}{"stop": at, "duration": elapsed})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	entry.Stop = &at
	entry.Duration = elapsed
	return &entry, nil
}

// FindRunning returns the most recently created running entry, enriched
func (r *GormTrackerEntryRepository) FindRunning(teamID uint64, assignedID *uint64) (*models.TrackerEntry, error) {
	var entry models.TrackerEntry
	query := withPreloads(r.db, entryPreloads).
		Where("team_id = ?", teamID).
		Where("duration = ?", models.RunningDuration)
	if assignedID != nil {
		query = query.Where("assigned_id = ?", *assignedID)
	}
	if err := query.Order("created_at DESC, id DESC").Take(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListPaused returns finished entries most-recent-first, capped at limit
func (r *GormTrackerEntryRepository) ListPaused(teamID uint64, assignedID *uint64, limit int) ([]models.TrackerEntry, error) {
	entries := []models.TrackerEntry{}
	query := withPreloads(r.db, entryPreloads).
		Where("team_id = ?", teamID).
		Where("stop IS NOT NULL AND duration >= 0")
	if assignedID != nil {
		query = query.Where("assigned_id = ?", *assignedID)
	}
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListLongRunning returns running entries started before the cutoff
func (r *GormTrackerEntryRepository) ListLongRunning(olderThan time.Time) ([]models.TrackerEntry, error) {
	entries := []models.TrackerEntry{}
	err := r.db.
		Where("duration = ?", models.RunningDuration).
		Where("start < ?", olderThan).
		Order("team_id ASC, created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func applyEntryFilter(query *gorm.DB, filter EntryFilter) *gorm.DB {
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.AssignedID != nil {
		query = query.Where("assigned_id = ?", *filter.AssignedID)
	}
	return query
}
