package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/ymgta/time-tracker-api/internal/database"
	"github.com/ymgta/time-tracker-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTeamAuthTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func teamAuthRouter(userID uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
	})
	r.GET("/api/teams/:id", RequireTeamAccess(), func(c *gin.Context) {
		team, ok := GetTeam(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": team.Name})
	})
	return r
}

func TestRequireTeamAccess_Member(t *testing.T) {
	db := setupTeamAuthTest(t)

	user := &models.User{Username: "alice", PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(user).Error)
	team := &models.Team{Name: "Acme", InviteCode: "ACME-CODE"}
	require.NoError(t, db.Create(team).Error)
	require.NoError(t, db.Create(&models.TeamMember{
		TeamID:   team.ID,
		UserID:   user.ID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}).Error)

	r := teamAuthRouter(user.ID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/teams/%d", team.ID), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

// Non-members get the same 404 as a missing team so membership probing
// cannot reveal that a team exists.
func TestRequireTeamAccess_NonMemberGets404(t *testing.T) {
	db := setupTeamAuthTest(t)

	user := &models.User{Username: "alice", PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(user).Error)
	team := &models.Team{Name: "Acme", InviteCode: "ACME-CODE"}
	require.NoError(t, db.Create(team).Error)

	r := teamAuthRouter(user.ID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/teams/%d", team.ID), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequireTeamAccess_UnknownTeam(t *testing.T) {
	db := setupTeamAuthTest(t)

	user := &models.User{Username: "alice", PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(user).Error)

	r := teamAuthRouter(user.ID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/teams/999", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequireTeamAccess_InvalidID(t *testing.T) {
	db := setupTeamAuthTest(t)

	user := &models.User{Username: "alice", PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(user).Error)

	r := teamAuthRouter(user.ID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/teams/not-a-number", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
