package repository

import (
	"time"

	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/utils"
)

// EntryFilter holds the optional predicates for tracker entry listings.
// Team scope is never optional and is a separate argument on every method.
type EntryFilter struct {
	ProjectID  *uint64
	AssignedID *uint64
}

// TrackerEntryRepository defines the interface for tracker entry data access,
// including the timer lifecycle transitions. All methods scope by team first.
type TrackerEntryRepository interface {
	// FindByID finds an entry by ID within the team scope
	FindByID(teamID, id uint64, preload ...string) (*models.TrackerEntry, error)

	// ListByIDs returns the enriched entries for the given IDs within the team scope
	ListByIDs(teamID uint64, ids []uint64) ([]models.TrackerEntry, error)

	// ListByDate returns entries for one calendar date
	ListByDate(teamID uint64, date string, filter EntryFilter) ([]models.TrackerEntry, error)

	// ListByRange returns entries with date in [from, to], in creation order
	ListByRange(teamID uint64, from, to string, filter EntryFilter) ([]models.TrackerEntry, error)

	// CreateBatch inserts all entries atomically; never called with zero rows
	CreateBatch(entries []models.TrackerEntry) error

	// Update persists field changes of an existing entry
	Update(entry *models.TrackerEntry) error

	// DeleteReturning deletes an entry within the team scope and returns the
	// deleted row; gorm.ErrRecordNotFound if no row matched
	DeleteReturning(teamID, id uint64) (*models.TrackerEntry, error)

	// StartTimer force-stops any running entry for the new entry's assignee and
	// inserts the new running entry, all in one transaction
	StartTimer(entry *models.TrackerEntry, now time.Time) error

	// Resume re-opens a paused entry: stop back to NULL, duration back to the
	// running sentinel. Fails with ErrEntryNotPaused when the row is open.
	Resume(teamID, entryID uint64, assignedID *uint64) (*models.TrackerEntry, error)

	// StopRunning closes the matching running entry at the given instant and
	// returns it; gorm.ErrRecordNotFound when no running entry matches
	StopRunning(teamID uint64, entryID, assignedID *uint64, at time.Time) (*models.TrackerEntry, error)

	// FindRunning returns the most recently created running entry, enriched
	FindRunning(teamID uint64, assignedID *uint64) (*models.TrackerEntry, error)

	// ListPaused returns finished entries most-recent-first, capped at limit
	ListPaused(teamID uint64, assignedID *uint64, limit int) ([]models.TrackerEntry, error)

	// ListLongRunning returns running entries started before the cutoff,
	// across all teams. Internal ops read used by the stale-timer sweep.
	ListLongRunning(olderThan time.Time) ([]models.TrackerEntry, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID within the team scope
	FindByID(teamID, id uint64, preload ...string) (*models.Project, error)

	// ListByTeam lists the team's projects, paginated, plus the total count
	ListByTeam(teamID uint64, params utils.PaginationParams) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete soft deletes a project within the team scope
	Delete(teamID, id uint64) error
}

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	// Create creates a new customer
	Create(customer *models.Customer) error

	// FindByID finds a customer by ID within the team scope
	FindByID(teamID, id uint64) (*models.Customer, error)

	// ListByTeam lists the team's customers, paginated, plus the total count
	ListByTeam(teamID uint64, params utils.PaginationParams) ([]models.Customer, int64, error)

	// Update updates a customer
	Update(customer *models.Customer) error

	// Delete soft deletes a customer within the team scope
	Delete(teamID, id uint64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a new team
	Create(team *models.Team) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// FindByInviteCode finds a team by invite code
	FindByInviteCode(code string) (*models.Team, error)

	// Update updates a team
	Update(team *models.Team) error

	// Delete deletes a team and all related data
	Delete(id uint64) error

	// AddMember adds a member to a team
	AddMember(member *models.TeamMember) error

	// RemoveMember removes a member from a team
	RemoveMember(teamID, userID uint64) error

	// FindMember finds a specific team member
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// ListMembersByUserID lists all teams a user is a member of
	ListMembersByUserID(userID uint64) ([]models.TeamMember, error)

	// ListMembers lists all members of a team
	ListMembers(teamID uint64) ([]models.TeamMember, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithPersonalTeam creates a user, their personal team, and the
	// corresponding membership within a single transaction.
	CreateWithPersonalTeam(user *models.User, team *models.Team, member *models.TeamMember) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
