package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/ymgta/time-tracker-api/internal/database"
	"github.com/ymgta/time-tracker-api/internal/dto"
	apierrors "github.com/ymgta/time-tracker-api/internal/errors"
	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/repository"
	"github.com/ymgta/time-tracker-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TrackerHandlerTestSuite defines the test suite for TrackerHandler
type TrackerHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TrackerHandler

	team    *models.Team
	user    *models.User
	project *models.Project
}

// SetupTest runs before each test
func (suite *TrackerHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Customer{},
		&models.Project{},
		&models.TrackerEntry{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	entryRepo := repository.NewTrackerEntryRepository(suite.db)
	suite.handler = NewTrackerHandler(services.NewTrackerService(entryRepo))

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	suite.team = &models.Team{Name: "Acme", InviteCode: "ACME-CODE"}
	suite.Require().NoError(suite.db.Create(suite.team).Error)

	suite.user = &models.User{Username: "alice", PasswordHash: "hashedpassword"}
	suite.Require().NoError(suite.db.Create(suite.user).Error)

	suite.project = &models.Project{TeamID: suite.team.ID, Name: "Website", Rate: 50, Currency: "USD", Billable: true}
	suite.Require().NoError(suite.db.Create(suite.project).Error)
}

// TearDownTest runs after each test
func (suite *TrackerHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create an authenticated, team-scoped context
// (simulates RequireAuth + RequireTeamAccess middleware)
func (suite *TrackerHandlerTestSuite) createTeamContext(method, url string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", suite.user.ID)
	c.Set("team", *suite.team)

	return c, w
}

func (suite *TrackerHandlerTestSuite) createPausedEntry(date string, duration int64) *models.TrackerEntry {
	start, err := time.Parse("2006-01-02", date)
	suite.Require().NoError(err)
	start = start.Add(9 * time.Hour)
	stop := start.Add(time.Duration(duration) * time.Second)

	entry := &models.TrackerEntry{
		TeamID:     suite.team.ID,
		AssignedID: &suite.user.ID,
		ProjectID:  suite.project.ID,
		Date:       date,
		Start:      start,
		Stop:       &stop,
		Duration:   duration,
	}
	suite.Require().NoError(suite.db.Create(entry).Error)
	return entry
}

func (suite *TrackerHandlerTestSuite) createRunningEntry(start time.Time) *models.TrackerEntry {
	entry := &models.TrackerEntry{
		TeamID:     suite.team.ID,
		AssignedID: &suite.user.ID,
		ProjectID:  suite.project.ID,
		Date:       start.Format("2006-01-02"),
		Start:      start,
	}
	suite.Require().NoError(suite.db.Create(entry).Error)
	return entry
}

func (suite *TrackerHandlerTestSuite) TestListEntries_ByDate() {
	suite.createPausedEntry("2026-03-10", 3600)
	suite.createPausedEntry("2026-03-10", 1800)
	suite.createPausedEntry("2026-03-11", 900)

	c, w := suite.createTeamContext("GET", "/api/teams/1/tracker-entries?date=2026-03-10", nil)

	suite.handler.ListEntries(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.DayResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(suite.T(), response.Entries, 2)
	assert.Equal(suite.T(), int64(5400), response.TotalDuration)
}

func (suite *TrackerHandlerTestSuite) TestListEntries_RangeTotals() {
	suite.createPausedEntry("2026-03-10", 3600)
	suite.createPausedEntry("2026-03-11", 3600)

	c, w := suite.createTeamContext("GET", "/api/teams/1/tracker-entries?from=2026-03-01&to=2026-03-31", nil)

	suite.handler.ListEntries(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.RangeResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(suite.T(), response.Result, 2)
	assert.Equal(suite.T(), int64(7200), response.TotalDuration)
	assert.InDelta(suite.T(), 100.0, response.TotalAmount, 1e-9)
}

func (suite *TrackerHandlerTestSuite) TestListEntries_MissingParams() {
	c, w := suite.createTeamContext("GET", "/api/teams/1/tracker-entries", nil)

	suite.handler.ListEntries(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TrackerHandlerTestSuite) TestUpsertEntries_CreatesOnePerDate() {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	stop := start.Add(time.Hour)

	c, w := suite.createTeamContext("POST", "/api/teams/1/tracker-entries", gin.H{
		"dates":       []string{"2026-03-10", "2026-03-11"},
		"start":       start,
		"stop":        stop,
		"project_id":  suite.project.ID,
		"assigned_id": suite.user.ID,
		"description": "dev work",
	})

	suite.handler.UpsertEntries(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Entries []dto.TrackerEntryDTO `json:"entries"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Entries, 2)
	for _, e := range response.Entries {
		assert.Equal(suite.T(), int64(3600), e.Duration)
		suite.Require().NotNil(e.Project)
		assert.Equal(suite.T(), suite.project.Name, e.Project.Name)
	}
}

func (suite *TrackerHandlerTestSuite) TestUpsertEntries_IDWithMultipleDates() {
	entry := suite.createPausedEntry("2026-03-10", 3600)

	c, w := suite.createTeamContext("POST", "/api/teams/1/tracker-entries", gin.H{
		"id":         entry.ID,
		"dates":      []string{"2026-03-10", "2026-03-11"},
		"start":      entry.Start,
		"project_id": suite.project.ID,
	})

	suite.handler.UpsertEntries(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TrackerHandlerTestSuite) TestBulkCreateEntries_Atomic() {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	stop := start.Add(30 * time.Minute)

	c, w := suite.createTeamContext("POST", "/api/teams/1/tracker-entries/bulk", gin.H{
		"entries": []gin.H{
			{"start": start, "stop": stop, "dates": []string{"2026-03-10", "2026-03-11"}, "project_id": suite.project.ID},
			{"start": start, "stop": stop, "dates": []string{"2026-03-12"}, "project_id": suite.project.ID},
		},
	})

	suite.handler.BulkCreateEntries(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var count int64
	suite.db.Model(&models.TrackerEntry{}).Count(&count)
	assert.Equal(suite.T(), int64(3), count)
}

func (suite *TrackerHandlerTestSuite) TestDeleteEntry_SecondDeleteIs404() {
	entry := suite.createPausedEntry("2026-03-10", 3600)
	url := fmt.Sprintf("/api/teams/1/tracker-entries/%d", entry.ID)

	c, w := suite.createTeamContext("DELETE", url, nil)
	c.Params = gin.Params{{Key: "entry_id", Value: fmt.Sprint(entry.ID)}}
	suite.handler.DeleteEntry(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Entry dto.TrackerEntryDTO `json:"entry"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), entry.ID, response.Entry.ID)

	c, w = suite.createTeamContext("DELETE", url, nil)
	c.Params = gin.Params{{Key: "entry_id", Value: fmt.Sprint(entry.ID)}}
	suite.handler.DeleteEntry(c)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TrackerHandlerTestSuite) TestStartTimer_ForceStopsPrevious() {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	previous := suite.createRunningEntry(start)

	c, w := suite.createTeamContext("POST", "/api/teams/1/timer/start", gin.H{
		"project_id": suite.project.ID,
		"start":      start.Add(time.Minute),
	})

	suite.handler.StartTimer(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response struct {
		Entry dto.TrackerEntryDTO `json:"entry"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), int64(-1), response.Entry.Duration)
	suite.Require().NotNil(response.Entry.AssignedID)
	assert.Equal(suite.T(), suite.user.ID, *response.Entry.AssignedID)

	var reloaded models.TrackerEntry
	suite.Require().NoError(suite.db.Take(&reloaded, previous.ID).Error)
	assert.False(suite.T(), reloaded.IsRunning())
}

func (suite *TrackerHandlerTestSuite) TestStartTimer_WithoutProject() {
	c, w := suite.createTeamContext("POST", "/api/teams/1/timer/start", gin.H{})

	suite.handler.StartTimer(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TrackerHandlerTestSuite) TestStartTimer_ResumesPausedEntry() {
	paused := suite.createPausedEntry("2026-03-10", 600)

	c, w := suite.createTeamContext("POST", "/api/teams/1/timer/start", gin.H{
		"continue_from_entry_id": paused.ID,
	})

	suite.handler.StartTimer(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response struct {
		Entry dto.TrackerEntryDTO `json:"entry"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), paused.ID, response.Entry.ID)
	assert.Equal(suite.T(), int64(-1), response.Entry.Duration)
	assert.Nil(suite.T(), response.Entry.Stop)
}

func (suite *TrackerHandlerTestSuite) TestStartTimer_ResumeRunningEntryConflicts() {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	running := suite.createRunningEntry(start)

	c, w := suite.createTeamContext("POST", "/api/teams/1/timer/start", gin.H{
		"continue_from_entry_id": running.ID,
	})

	suite.handler.StartTimer(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *TrackerHandlerTestSuite) TestStopTimer_EmptyBody() {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	suite.createRunningEntry(start)

	c, w := suite.createTeamContext("POST", "/api/teams/1/timer/stop", nil)

	suite.handler.StopTimer(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Entry dto.TrackerEntryDTO `json:"entry"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().NotNil(response.Entry.Stop)
	assert.GreaterOrEqual(suite.T(), response.Entry.Duration, int64(0))
}

func (suite *TrackerHandlerTestSuite) TestStopTimer_ExplicitInstant() {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	suite.createRunningEntry(start)

	c, w := suite.createTeamContext("POST", "/api/teams/1/timer/stop", gin.H{
		"at": start.Add(3661 * time.Second),
	})

	suite.handler.StopTimer(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Entry dto.TrackerEntryDTO `json:"entry"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), int64(3661), response.Entry.Duration)
}

func (suite *TrackerHandlerTestSuite) TestStopTimer_NoRunningTimer() {
	c, w := suite.createTeamContext("POST", "/api/teams/1/timer/stop", nil)

	suite.handler.StopTimer(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	var apiErr apierrors.APIError
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(suite.T(), apierrors.ErrCodeNoRunningTimer, apiErr.Code)
}

func (suite *TrackerHandlerTestSuite) TestCurrentTimer_NullWhenIdle() {
	c, w := suite.createTeamContext("GET", "/api/teams/1/timer/current", nil)

	suite.handler.CurrentTimer(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Nil(suite.T(), response["entry"])
}

func (suite *TrackerHandlerTestSuite) TestTimerStatus_Running() {
	suite.createRunningEntry(time.Now().Add(-90 * time.Second))

	c, w := suite.createTeamContext("GET", "/api/teams/1/timer/status", nil)

	suite.handler.TimerStatus(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TimerStatusResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(suite.T(), response.IsRunning)
	suite.Require().NotNil(response.CurrentEntry)
	assert.GreaterOrEqual(suite.T(), response.ElapsedSeconds, int64(90))
}

func (suite *TrackerHandlerTestSuite) TestPausedEntries_NewestFirst() {
	suite.createPausedEntry("2026-03-10", 600)
	newest := suite.createPausedEntry("2026-03-11", 900)

	c, w := suite.createTeamContext("GET", "/api/teams/1/tracker-entries/paused", nil)

	suite.handler.PausedEntries(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Entries []dto.TrackerEntryDTO `json:"entries"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Entries, 2)
	assert.Equal(suite.T(), newest.ID, response.Entries[0].ID)
}

func TestTrackerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TrackerHandlerTestSuite))
}
