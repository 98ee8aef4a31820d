package dto

import (
	"github.com/ymgta/time-tracker-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code,omitempty"`
}

// CustomerDTO represents a customer in API responses
type CustomerDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
}

// ProjectDTO represents a project with its optional customer
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Rate        float64              `json:"rate"`
	Currency    string               `json:"currency,omitempty"`
	Billable    bool                 `json:"billable"`
	Status      models.ProjectStatus `json:"status"`
	Customer    *CustomerDTO         `json:"customer,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	}
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team, includeInviteCode bool) TeamDTO {
	dto := TeamDTO{
		ID:   team.ID,
		Name: team.Name,
	}
	if includeInviteCode {
		dto.InviteCode = team.InviteCode
	}
	return dto
}

// ToCustomerDTO converts a Customer model to CustomerDTO
func ToCustomerDTO(customer models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:      customer.ID,
		Name:    customer.Name,
		Website: customer.Website,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Rate:        project.Rate,
		Currency:    project.Currency,
		Billable:    project.Billable,
		Status:      project.Status,
	}

	// Include customer if preloaded
	if project.Customer != nil && project.Customer.ID != 0 {
		customer := ToCustomerDTO(*project.Customer)
		dto.Customer = &customer
	}

	return dto
}
