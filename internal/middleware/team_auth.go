package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ymgta/time-tracker-api/internal/database"
	"github.com/ymgta/time-tracker-api/internal/models"
)

// RequireTeamAccess checks if the user is a member of the team
func RequireTeamAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get team ID from URL parameter
		teamIDStr := c.Param("id")
		teamID, err := strconv.ParseUint(teamIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid team ID",
			})
			c.Abort()
			return
		}

		// Get current user ID
		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		// Check if team exists
		var team models.Team
		if err := database.GetDB().First(&team, teamID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Team not found",
			})
			c.Abort()
			return
		}

		// Check if user is a member
		var member models.TeamMember
		err = database.GetDB().Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking team existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Team not found",
			})
			c.Abort()
			return
		}

		// Store team and membership in context
		c.Set("team", team)
		c.Set("team_member", member)
		c.Next()
	}
}

// RequireTeamOwner checks if the user is an owner of the team
func RequireTeamOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get team member from context (set by RequireTeamAccess)
		memberInterface, exists := c.Get("team_member")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Team access required",
			})
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.TeamMember)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Invalid team member data",
			})
			c.Abort()
			return
		}

		// Check if user is owner
		if member.Role != models.RoleOwner {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only team owners can perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetTeam retrieves the team resolved by RequireTeamAccess
func GetTeam(c *gin.Context) (models.Team, bool) {
	teamInterface, exists := c.Get("team")
	if !exists {
		return models.Team{}, false
	}
	team, ok := teamInterface.(models.Team)
	return team, ok
}
