package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/repository"
	"github.com/ymgta/time-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound               = errors.New("team not found")
	ErrInvalidTeamName            = errors.New("team name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyTeamMember          = errors.New("user is already a member of this team")
	ErrCannotRemoveYourself       = errors.New("cannot remove yourself from the team")
	ErrTeamMemberNotFound         = errors.New("team member not found")
	ErrNotTeamMember              = errors.New("user is not a member of the team")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teamRepo repository.TeamRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name    string
	OwnerID uint64
}

// CreateTeam creates a new team and assigns the owner.
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidTeamName
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	team := &models.Team{
		Name:       input.Name,
		InviteCode: inviteCode,
	}

	if err := s.teamRepo.Create(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	member := &models.TeamMember{
		TeamID:   team.ID,
		UserID:   input.OwnerID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.teamRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add owner to team: %w", err)
	}

	return team, nil
}

// ListTeamsForUser returns teams the user belongs to.
func (s *TeamService) ListTeamsForUser(userID uint64) ([]models.TeamMember, error) {
	memberships, err := s.teamRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return memberships, nil
}

// GetTeamWithMembers returns a team and all of its members.
func (s *TeamService) GetTeamWithMembers(teamID uint64) (*models.Team, []models.TeamMember, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("failed to find team: %w", err)
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return team, members, nil
}

// UpdateTeamName updates a team's name.
func (s *TeamService) UpdateTeamName(teamID uint64, name string) (*models.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidTeamName
	}

	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	team.Name = name
	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return team, nil
}

// DeleteTeam removes a team together with its projects, customers and entries.
func (s *TeamService) DeleteTeam(teamID uint64) error {
	if _, err := s.teamRepo.FindByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to find team: %w", err)
	}

	if err := s.teamRepo.Delete(teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	return nil
}

// JoinTeamByInvite adds a user to a team via invite code.
func (s *TeamService) JoinTeamByInvite(userID uint64, inviteCode string) (*models.Team, error) {
	team, err := s.teamRepo.FindByInviteCode(inviteCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find team by invite code: %w", err)
	}

	if _, err := s.teamRepo.FindMember(team.ID, userID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.TeamMember{
		TeamID:   team.ID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: time.Now(),
	}

	if err := s.teamRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member to team: %w", err)
	}

	return team, nil
}

// RegenerateInviteCode generates a new invite code for the team.
func (s *TeamService) RegenerateInviteCode(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	team.InviteCode = code
	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	return team, nil
}

// RemoveMember removes a member from the team.
func (s *TeamService) RemoveMember(teamID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	if _, err := s.teamRepo.FindMember(teamID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to find team member: %w", err)
	}

	if err := s.teamRepo.RemoveMember(teamID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// EnsureMember verifies that a user belongs to a team.
func (s *TeamService) EnsureMember(teamID, userID uint64) error {
	if _, err := s.teamRepo.FindMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTeamMember
		}
		return fmt.Errorf("failed to verify team membership: %w", err)
	}
	return nil
}
