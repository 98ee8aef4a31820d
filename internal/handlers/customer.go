package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ymgta/time-tracker-api/internal/dto"
	apierrors "github.com/ymgta/time-tracker-api/internal/errors"
	"github.com/ymgta/time-tracker-api/internal/middleware"
	"github.com/ymgta/time-tracker-api/internal/services"
	"github.com/ymgta/time-tracker-api/internal/utils"
)

// CustomerHandler coordinates customer-related HTTP handlers.
type CustomerHandler struct {
	customerService *services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// CustomerRequest is the payload for creating and updating customers.
type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Website string `json:"website"`
}

// ListCustomers returns all customers of the team
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	params := utils.GetPaginationParams(c)
	customers, total, err := h.customerService.ListCustomers(team.ID, params)
	if err != nil {
		respondCustomerError(c, err)
		return
	}

	dtos := make([]dto.CustomerDTO, len(customers))
	for i, cu := range customers {
		dtos[i] = dto.ToCustomerDTO(cu)
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateCustomer creates a new customer
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.CreateCustomer(team.ID, services.CustomerInput{
		Name:    req.Name,
		Website: req.Website,
	})
	if err != nil {
		respondCustomerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCustomerDTO(*customer))
}

// GetCustomer returns one customer
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	customerID, err := strconv.ParseUint(c.Param("customer_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid customer ID")
		return
	}

	customer, err := h.customerService.GetCustomer(team.ID, customerID)
	if err != nil {
		respondCustomerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerDTO(*customer))
}

// UpdateCustomer updates a customer
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	customerID, err := strconv.ParseUint(c.Param("customer_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid customer ID")
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.UpdateCustomer(team.ID, customerID, services.CustomerInput{
		Name:    req.Name,
		Website: req.Website,
	})
	if err != nil {
		respondCustomerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerDTO(*customer))
}

// DeleteCustomer removes a customer
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	customerID, err := strconv.ParseUint(c.Param("customer_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid customer ID")
		return
	}

	if err := h.customerService.DeleteCustomer(team.ID, customerID); err != nil {
		respondCustomerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer deleted successfully",
	})
}

func respondCustomerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCustomerNotFound):
		apierrors.NotFound(c, "Customer not found")
	case errors.Is(err, services.ErrInvalidCustomerName):
		apierrors.BadRequest(c, "Customer name cannot be empty")
	default:
		apierrors.InternalError(c, "")
	}
}
