package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ymgta/time-tracker-api/internal/dto"
	apierrors "github.com/ymgta/time-tracker-api/internal/errors"
	"github.com/ymgta/time-tracker-api/internal/middleware"
	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/services"
)

// TeamHandler coordinates team-related HTTP handlers.
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeam creates a new team owned by the caller
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTeamRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(services.CreateTeamInput{
		Name:    req.Name,
		OwnerID: userID,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team, true))
}

// ListTeams returns all teams the user is a member of
func (h *TeamHandler) ListTeams(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	memberships, err := h.teamService.ListTeamsForUser(userID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	teams := make([]dto.TeamWithRoleDTO, len(memberships))
	for i, m := range memberships {
		teams[i] = dto.ToTeamWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"teams": teams,
	})
}

// GetTeam returns team details with members
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	memberInterface, _ := c.Get("team_member")
	member, _ := memberInterface.(models.TeamMember)

	_, members, err := h.teamService.GetTeamWithMembers(team.ID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	memberDTOs := make([]dto.TeamMemberDTO, len(members))
	for i, m := range members {
		memberDTOs[i] = dto.ToTeamMemberDTO(m)
	}

	detail := dto.TeamDetailDTO{
		TeamDTO:  dto.ToTeamDTO(team, member.Role == models.RoleOwner),
		Members:  memberDTOs,
		YourRole: member.Role,
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateTeam updates the team name
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	type UpdateTeamRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.teamService.UpdateTeamName(team.ID, req.Name)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*updated, true))
}

// DeleteTeam deletes a team with all of its data
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	if err := h.teamService.DeleteTeam(team.ID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team deleted successfully",
	})
}

// JoinTeam allows a user to join via invite code
func (h *TeamHandler) JoinTeam(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.JoinTeamByInvite(userID, req.InviteCode)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team, false))
}

// RegenerateInviteCode creates a new invite code for the team
func (h *TeamHandler) RegenerateInviteCode(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	updated, err := h.teamService.RegenerateInviteCode(team.ID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*updated, true))
}

// RemoveMember removes a member from the team
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.teamService.RemoveMember(team.ID, userID, targetID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, "Team not found")
	case errors.Is(err, services.ErrInvalidTeamName):
		apierrors.BadRequest(c, "Team name cannot be empty")
	case errors.Is(err, services.ErrInvalidInviteCode):
		apierrors.NotFound(c, "Invalid invite code")
	case errors.Is(err, services.ErrAlreadyTeamMember):
		apierrors.Conflict(c, "Already a member of this team")
	case errors.Is(err, services.ErrCannotRemoveYourself):
		apierrors.BadRequest(c, "Cannot remove yourself from the team")
	case errors.Is(err, services.ErrTeamMemberNotFound):
		apierrors.NotFound(c, "Team member not found")
	default:
		apierrors.InternalError(c, "")
	}
}
