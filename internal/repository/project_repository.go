package repository

import (
	"github.com/ymgta/time-tracker-api/internal/database"
	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID within the team scope
func (r *GormProjectRepository) FindByID(teamID, id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := withPreloads(r.db, preload).Where("team_id = ?", teamID)
	if err := query.Where("id = ?", id).Take(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByTeam lists the team's projects, paginated, plus the total count
func (r *GormProjectRepository) ListByTeam(teamID uint64, params utils.PaginationParams) ([]models.Project, int64, error) {
	query := r.db.Model(&models.Project{}).Where("team_id = ?", teamID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	projects := []models.Project{}
	err := query.Preload("Customer").
		Order("created_at ASC").
		Scopes(database.Paginate(params)).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete soft deletes a project within the team scope
func (r *GormProjectRepository) Delete(teamID, id uint64) error {
	res := r.db.Where("team_id = ?", teamID).Where("id = ?", id).Delete(&models.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
