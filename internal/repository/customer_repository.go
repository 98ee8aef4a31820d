package repository

import (
	"github.com/ymgta/time-tracker-api/internal/database"
	"github.com/ymgta/time-tracker-api/internal/models"
	"github.com/ymgta/time-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// GormCustomerRepository is a GORM implementation of CustomerRepository
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create creates a new customer
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// FindByID finds a customer by ID within the team scope
func (r *GormCustomerRepository) FindByID(teamID, id uint64) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Where("team_id = ?", teamID).Where("id = ?", id).Take(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListByTeam lists the team's customers, paginated, plus the total count
func (r *GormCustomerRepository) ListByTeam(teamID uint64, params utils.PaginationParams) ([]models.Customer, int64, error) {
	query := r.db.Model(&models.Customer{}).Where("team_id = ?", teamID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	customers := []models.Customer{}
	err := query.Order("name ASC").
		Scopes(database.Paginate(params)).
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Update updates a customer
func (r *GormCustomerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

// Delete soft deletes a customer within the team scope
func (r *GormCustomerRepository) Delete(teamID, id uint64) error {
	res := r.db.Where("team_id = ?", teamID).Where("id = ?", id).Delete(&models.Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
