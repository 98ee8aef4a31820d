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
	ErrInvalidCustomerName = errors.New("customer name cannot be empty")
)

// CustomerService provides business logic for customer operations.
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
	}
}

// CustomerInput represents parameters to create or update a customer.
type CustomerInput struct {
	Name    string
	Website string
}

// CreateCustomer creates a new customer within the team.
func (s *CustomerService) CreateCustomer(teamID uint64, input CustomerInput) (*models.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidCustomerName
	}

	customer := &models.Customer{
		TeamID:  teamID,
		Name:    input.Name,
		Website: input.Website,
	}

	if err := s.customerRepo.Create(customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

// GetCustomer returns one customer within the team scope.
func (s *CustomerService) GetCustomer(teamID, id uint64) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByID(teamID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return customer, nil
}

// ListCustomers returns a page of the team's customers plus the total count.
func (s *CustomerService) ListCustomers(teamID uint64, params utils.PaginationParams) ([]models.Customer, int64, error) {
	customers, total, err := s.customerRepo.ListByTeam(teamID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

// UpdateCustomer updates a customer's fields.
func (s *CustomerService) UpdateCustomer(teamID, id uint64, input CustomerInput) (*models.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidCustomerName
	}

	customer, err := s.customerRepo.FindByID(teamID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	customer.Name = input.Name
	customer.Website = input.Website

	if err := s.customerRepo.Update(customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return customer, nil
}

// DeleteCustomer removes a customer within the team scope.
func (s *CustomerService) DeleteCustomer(teamID, id uint64) error {
	if err := s.customerRepo.Delete(teamID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
