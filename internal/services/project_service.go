package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/repository"
	"github.com/ymgta/time-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidProjectName = errors.New("project name cannot be empty")
	ErrNegativeRate       = errors.New("project rate cannot be negative")
	ErrCustomerNotFound   = errors.New("customer not found")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo  repository.ProjectRepository
	customerRepo repository.CustomerRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, customerRepo repository.CustomerRepository) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		customerRepo: customerRepo,
	}
}

// ProjectInput represents parameters to create or update a project.
type ProjectInput struct {
	Name        string
	Description string
	Rate        float64
	Currency    string
	Billable    bool
	CustomerID  *uint64
}

// CreateProject creates a new project within the team.
func (s *ProjectService) CreateProject(teamID uint64, input ProjectInput) (*models.Project, error) {
	if err := s.validate(teamID, input); err != nil {
		return nil, err
	}

	project := &models.Project{
		TeamID:      teamID,
		CustomerID:  input.CustomerID,
		Name:        input.Name,
		Description: input.Description,
		Rate:        input.Rate,
		Currency:    input.Currency,
		Billable:    input.Billable,
		Status:      models.ProjectStatusInProgress,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(teamID, project.ID, "Customer")
}

// GetProject returns one project with its customer.
func (s *ProjectService) GetProject(teamID, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(teamID, id, "Customer")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects returns a page of the team's projects plus the total count.
func (s *ProjectService) ListProjects(teamID uint64, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.ListByTeam(teamID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// UpdateProject updates a project's fields.
func (s *ProjectService) UpdateProject(teamID, id uint64, input ProjectInput) (*models.Project, error) {
	if err := s.validate(teamID, input); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindByID(teamID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	project.Name = input.Name
	project.Description = input.Description
	project.Rate = input.Rate
	project.Currency = input.Currency
	project.Billable = input.Billable
	project.CustomerID = input.CustomerID

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.FindByID(teamID, project.ID, "Customer")
}

// CompleteProject marks a project as completed.
func (s *ProjectService) CompleteProject(teamID, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(teamID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	project.Status = models.ProjectStatusCompleted
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project within the team scope.
func (s *ProjectService) DeleteProject(teamID, id uint64) error {
	if err := s.projectRepo.Delete(teamID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) validate(teamID uint64, input ProjectInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrInvalidProjectName
	}
	if input.Rate < 0 {
		return ErrNegativeRate
	}
	if input.CustomerID != nil {
		if _, err := s.customerRepo.FindByID(teamID, *input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to verify customer: %w", err)
		}
	}
	return nil
}
