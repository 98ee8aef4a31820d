package dto

import (
	"time"

	"github.com/ymgta/time-tracker-api/internal/models"
)

// TeamWithRoleDTO represents a team with the user's role
type TeamWithRoleDTO struct {
	TeamDTO
	Role models.TeamRole `json:"role"`
}

// TeamMemberDTO represents a member in a team
type TeamMemberDTO struct {
	User     UserDTO         `json:"user"`
	Role     models.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
}

// TeamDetailDTO represents detailed team information
type TeamDetailDTO struct {
	TeamDTO
	Members  []TeamMemberDTO `json:"members"`
	YourRole models.TeamRole `json:"your_role"`
}

// ToTeamWithRoleDTO converts a team member to DTO with role
func ToTeamWithRoleDTO(member models.TeamMember) TeamWithRoleDTO {
	return TeamWithRoleDTO{
		TeamDTO: ToTeamDTO(member.Team, member.Role == models.RoleOwner),
		Role:    member.Role,
	}
}

// ToTeamMemberDTO converts a team member to DTO
func ToTeamMemberDTO(member models.TeamMember) TeamMemberDTO {
	return TeamMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}
