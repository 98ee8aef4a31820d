package sweeper

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestSweeper(t *testing.T) *Sweeper {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TrackerEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return New(repository.NewTrackerEntryRepository(db))
}

func TestSweeper_EmptyScheduleDisables(t *testing.T) {
	s := newTestSweeper(t)

	require.NoError(t, s.Start(""))
	s.Stop()
}

func TestSweeper_InvalidSchedule(t *testing.T) {
	s := newTestSweeper(t)

	require.Error(t, s.Start("not a schedule"))
}

func TestSweeper_ValidSchedule(t *testing.T) {
	s := newTestSweeper(t)

	require.NoError(t, s.Start("@daily"))
	s.Stop()
}
