package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TrackerServiceTestSuite exercises the tracker business logic end to end
// over an in-memory database.
type TrackerServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TrackerService

	team    *models.Team
	user    *models.User
	project *models.Project

	now time.Time
}

// SetupTest runs before each test
func (suite *TrackerServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Customer{},
		&models.Project{},
		&models.TrackerEntry{},
	)
	suite.Require().NoError(err)

	suite.service = NewTrackerService(repository.NewTrackerEntryRepository(suite.db))

	// Freeze the clock
	suite.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	suite.service.now = func() time.Time { return suite.now }

	suite.team = &models.Team{Name: "Acme", InviteCode: "ACME-CODE"}
	suite.Require().NoError(suite.db.Create(suite.team).Error)

	suite.user = &models.User{Username: "alice", PasswordHash: "hashedpassword"}
	suite.Require().NoError(suite.db.Create(suite.user).Error)

	suite.project = &models.Project{TeamID: suite.team.ID, Name: "Website", Rate: 50, Currency: "USD", Billable: true}
	suite.Require().NoError(suite.db.Create(suite.project).Error)
}

// TearDownTest runs after each test
func (suite *TrackerServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TrackerServiceTestSuite) upsertInput(dates ...string) UpsertEntryInput {
	stop := suite.now.Add(time.Hour)
	return UpsertEntryInput{
		Dates:       dates,
		Start:       suite.now,
		Stop:        &stop,
		Duration:    -1,
		AssignedID:  &suite.user.ID,
		ProjectID:   suite.project.ID,
		Description: "dev work",
	}
}

func (suite *TrackerServiceTestSuite) TestUpsert_ExpandsOneRowPerDate() {
	entries, err := suite.service.Upsert(suite.team.ID, suite.upsertInput("2026-03-10", "2026-03-11", "2026-03-12"))
	suite.Require().NoError(err)

	suite.Require().Len(entries, 3)
	dates := []string{}
	for _, e := range entries {
		dates = append(dates, e.Date)
		assert.Equal(suite.T(), int64(3600), e.Duration)
		assert.Equal(suite.T(), "dev work", e.Description)
		assert.Equal(suite.T(), suite.project.ID, e.ProjectID)
		suite.Require().NotNil(e.User)
		assert.Equal(suite.T(), suite.user.Username, e.User.Username)
	}
	assert.ElementsMatch(suite.T(), []string{"2026-03-10", "2026-03-11", "2026-03-12"}, dates)
}

func (suite *TrackerServiceTestSuite) TestUpsert_IDWithMultipleDatesRejected() {
	created, err := suite.service.Upsert(suite.team.ID, suite.upsertInput("2026-03-10"))
	suite.Require().NoError(err)

	input := suite.upsertInput("2026-03-10", "2026-03-11")
	input.ID = &created[0].ID

	_, err = suite.service.Upsert(suite.team.ID, input)
	assert.ErrorIs(suite.T(), err, ErrUpsertDateConflict)
}

func (suite *TrackerServiceTestSuite) TestUpsert_NoDatesRejected() {
	_, err := suite.service.Upsert(suite.team.ID, suite.upsertInput())
	assert.ErrorIs(suite.T(), err, ErrNoDates)
}

func (suite *TrackerServiceTestSuite) TestUpsert_InvalidDateRejected() {
	_, err := suite.service.Upsert(suite.team.ID, suite.upsertInput("10-03-2026"))
	assert.ErrorIs(suite.T(), err, ErrInvalidDate)
}

func (suite *TrackerServiceTestSuite) TestUpsert_UpdatesExistingEntry() {
	created, err := suite.service.Upsert(suite.team.ID, suite.upsertInput("2026-03-10"))
	suite.Require().NoError(err)

	input := suite.upsertInput("2026-03-11")
	input.ID = &created[0].ID
	input.Description = "code review"
	input.Duration = 1200

	updated, err := suite.service.Upsert(suite.team.ID, input)
	suite.Require().NoError(err)

	suite.Require().Len(updated, 1)
	assert.Equal(suite.T(), created[0].ID, updated[0].ID)
	assert.Equal(suite.T(), "2026-03-11", updated[0].Date)
	assert.Equal(suite.T(), "code review", updated[0].Description)
	assert.Equal(suite.T(), int64(1200), updated[0].Duration)
}

func (suite *TrackerServiceTestSuite) TestUpsert_UnknownIDFails() {
	input := suite.upsertInput("2026-03-10")
	missing := uint64(9999)
	input.ID = &missing

	_, err := suite.service.Upsert(suite.team.ID, input)
	assert.ErrorIs(suite.T(), err, ErrEntryNotFound)
}

func (suite *TrackerServiceTestSuite) TestBulkCreate_EmptyExpansionIsNoOp() {
	entries, err := suite.service.BulkCreate(suite.team.ID, []BulkEntryInput{
		{Start: suite.now, ProjectID: suite.project.ID, Dates: nil},
	})
	suite.Require().NoError(err)
	assert.Empty(suite.T(), entries)

	var count int64
	suite.db.Model(&models.TrackerEntry{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TrackerServiceTestSuite) TestBulkCreate_ExpandsAcrossRecords() {
	stop := suite.now.Add(30 * time.Minute)
	entries, err := suite.service.BulkCreate(suite.team.ID, []BulkEntryInput{
		{Start: suite.now, Stop: &stop, Dates: []string{"2026-03-10", "2026-03-11"}, ProjectID: suite.project.ID, Duration: -1},
		{Start: suite.now, Stop: &stop, Dates: []string{"2026-03-12"}, ProjectID: suite.project.ID, Duration: 900},
	})
	suite.Require().NoError(err)

	suite.Require().Len(entries, 3)
	assert.Equal(suite.T(), int64(1800), entries[0].Duration)
	assert.Equal(suite.T(), int64(900), entries[2].Duration)
}

func (suite *TrackerServiceTestSuite) TestBulkCreate_RejectsOversizedBatch() {
	dates := make([]string, 0, 501)
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 501; i++ {
		dates = append(dates, day.AddDate(0, 0, i).Format("2006-01-02"))
	}

	stop := suite.now.Add(time.Hour)
	_, err := suite.service.BulkCreate(suite.team.ID, []BulkEntryInput{
		{Start: suite.now, Stop: &stop, Dates: dates, ProjectID: suite.project.ID, Duration: -1},
	})
	assert.ErrorIs(suite.T(), err, ErrTooManyEntries)

	var count int64
	suite.db.Model(&models.TrackerEntry{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TrackerServiceTestSuite) TestGetByDate_SumsFinishedDurations() {
	_, err := suite.service.Upsert(suite.team.ID, suite.upsertInput("2026-03-10"))
	suite.Require().NoError(err)

	// A running timer on the same date contributes nothing to the total
	_, err = suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ProjectID:  suite.project.ID,
		AssignedID: &suite.user.ID,
	})
	suite.Require().NoError(err)

	result, err := suite.service.GetByDate(suite.team.ID, "2026-03-10", repository.EntryFilter{})
	suite.Require().NoError(err)

	assert.Len(suite.T(), result.Entries, 2)
	assert.Equal(suite.T(), int64(3600), result.TotalDuration)
}

func (suite *TrackerServiceTestSuite) TestGetByRange_GroupsAndTotals() {
	_, err := suite.service.Upsert(suite.team.ID, suite.upsertInput("2026-03-10", "2026-03-11"))
	suite.Require().NoError(err)

	result, err := suite.service.GetByRange(suite.team.ID, "2026-03-01", "2026-03-31", repository.EntryFilter{})
	suite.Require().NoError(err)

	suite.Require().Len(result.Days, 2)
	assert.Len(suite.T(), result.Days["2026-03-10"], 1)
	assert.Len(suite.T(), result.Days["2026-03-11"], 1)
	assert.Equal(suite.T(), int64(7200), result.TotalDuration)
	// Two hours at 50/h
	assert.InDelta(suite.T(), 100.0, result.TotalAmount, 1e-9)
}

func (suite *TrackerServiceTestSuite) TestGetByRange_InvalidBoundRejected() {
	_, err := suite.service.GetByRange(suite.team.ID, "2026-03-01", "not-a-date", repository.EntryFilter{})
	assert.ErrorIs(suite.T(), err, ErrInvalidDate)
}

func (suite *TrackerServiceTestSuite) TestStartTimer_RequiresProject() {
	_, err := suite.service.StartTimer(suite.team.ID, StartTimerInput{AssignedID: &suite.user.ID})
	assert.ErrorIs(suite.T(), err, ErrProjectRequired)
}

func (suite *TrackerServiceTestSuite) TestStartStopTimer_Flow() {
	entry, err := suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ProjectID:  suite.project.ID,
		AssignedID: &suite.user.ID,
	})
	suite.Require().NoError(err)

	assert.True(suite.T(), entry.IsRunning())
	assert.Equal(suite.T(), "2026-03-10", entry.Date)

	suite.now = suite.now.Add(45 * time.Minute)

	stopped, err := suite.service.StopTimer(suite.team.ID, StopTimerInput{AssignedID: &suite.user.ID})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), entry.ID, stopped.ID)
	assert.Equal(suite.T(), int64(2700), stopped.Duration)
	suite.Require().NotNil(stopped.Stop)
}

func (suite *TrackerServiceTestSuite) TestStopTimer_NoRunningTimer() {
	_, err := suite.service.StopTimer(suite.team.ID, StopTimerInput{AssignedID: &suite.user.ID})
	assert.ErrorIs(suite.T(), err, ErrNoRunningTimer)
}

func (suite *TrackerServiceTestSuite) TestPauseThenResume_DiscardsPausedDuration() {
	started, err := suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ProjectID:  suite.project.ID,
		AssignedID: &suite.user.ID,
	})
	suite.Require().NoError(err)

	suite.now = suite.now.Add(10 * time.Minute)

	paused, err := suite.service.PauseTimer(suite.team.ID, StopTimerInput{AssignedID: &suite.user.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(600), paused.Duration)

	resumed, err := suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ContinueFromEntryID: &started.ID,
		AssignedID:          &suite.user.ID,
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), started.ID, resumed.ID)
	assert.True(suite.T(), resumed.IsRunning())
	assert.Nil(suite.T(), resumed.Stop)
}

func (suite *TrackerServiceTestSuite) TestResume_RunningEntryNotResumable() {
	started, err := suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ProjectID:  suite.project.ID,
		AssignedID: &suite.user.ID,
	})
	suite.Require().NoError(err)

	_, err = suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ContinueFromEntryID: &started.ID,
		AssignedID:          &suite.user.ID,
	})
	assert.ErrorIs(suite.T(), err, ErrEntryNotResumable)
}

func (suite *TrackerServiceTestSuite) TestSecondStart_ForceStopsFirst() {
	first, err := suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ProjectID:  suite.project.ID,
		AssignedID: &suite.user.ID,
	})
	suite.Require().NoError(err)

	suite.now = suite.now.Add(time.Minute)

	second, err := suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ProjectID:  suite.project.ID,
		AssignedID: &suite.user.ID,
	})
	suite.Require().NoError(err)

	var reloaded models.TrackerEntry
	suite.Require().NoError(suite.db.Take(&reloaded, first.ID).Error)
	assert.False(suite.T(), reloaded.IsRunning())
	assert.Equal(suite.T(), int64(60), reloaded.Duration)

	current, err := suite.service.CurrentTimer(suite.team.ID, &suite.user.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(current)
	assert.Equal(suite.T(), second.ID, current.ID)
}

func (suite *TrackerServiceTestSuite) TestCurrentTimer_NilWhenIdle() {
	current, err := suite.service.CurrentTimer(suite.team.ID, &suite.user.ID)
	suite.Require().NoError(err)
	assert.Nil(suite.T(), current)
}

func (suite *TrackerServiceTestSuite) TestTimerStatus_ReportsElapsedSeconds() {
	_, err := suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ProjectID:  suite.project.ID,
		AssignedID: &suite.user.ID,
	})
	suite.Require().NoError(err)

	suite.now = suite.now.Add(90 * time.Second)

	status, err := suite.service.GetTimerStatus(suite.team.ID, &suite.user.ID)
	suite.Require().NoError(err)

	assert.True(suite.T(), status.IsRunning)
	suite.Require().NotNil(status.CurrentEntry)
	assert.Equal(suite.T(), int64(90), status.ElapsedSeconds)
}

func (suite *TrackerServiceTestSuite) TestTimerStatus_IdleScope() {
	status, err := suite.service.GetTimerStatus(suite.team.ID, &suite.user.ID)
	suite.Require().NoError(err)

	assert.False(suite.T(), status.IsRunning)
	assert.Nil(suite.T(), status.CurrentEntry)
	assert.Equal(suite.T(), int64(0), status.ElapsedSeconds)
}

func (suite *TrackerServiceTestSuite) TestDelete_SecondDeleteFails() {
	created, err := suite.service.Upsert(suite.team.ID, suite.upsertInput("2026-03-10"))
	suite.Require().NoError(err)

	deleted, err := suite.service.Delete(suite.team.ID, created[0].ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), created[0].ID, deleted.ID)

	_, err = suite.service.Delete(suite.team.ID, created[0].ID)
	assert.ErrorIs(suite.T(), err, ErrEntryNotFound)
}

func (suite *TrackerServiceTestSuite) TestPausedEntries_ExcludesRunning() {
	_, err := suite.service.Upsert(suite.team.ID, suite.upsertInput("2026-03-10"))
	suite.Require().NoError(err)

	_, err = suite.service.StartTimer(suite.team.ID, StartTimerInput{
		ProjectID:  suite.project.ID,
		AssignedID: &suite.user.ID,
	})
	suite.Require().NoError(err)

	entries, err := suite.service.PausedEntries(suite.team.ID, &suite.user.ID)
	suite.Require().NoError(err)

	suite.Require().Len(entries, 1)
	assert.False(suite.T(), entries[0].IsRunning())
}

func TestTrackerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TrackerServiceTestSuite))
}
