package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/sirupsen/logrus"
)

// ContactRequest represents the request body for creating or updating a
// customer or supplier
type ContactRequest struct {
	Name     string  `json:"name" binding:"required,notblank"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	Pincode  string  `json:"pincode"`
	Status   string  `json:"status" binding:"omitempty,oneof=active inactive"`
	Category string  `json:"category"`
}

func (r ContactRequest) input() services.ContactInput {
	return services.ContactInput{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		State:      r.State,
		PostalCode: r.Pincode,
		Status:     r.Status,
		Category:   r.Category,
	}
}

func contactFilter(c *gin.Context) services.ContactFilter {
	return services.ContactFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 20),
	}
}

// ContactController serves the /customers and /suppliers routes
type ContactController struct {
	contacts *services.ContactService
	logger   logrus.FieldLogger
}

// NewContactController creates a new ContactController
func NewContactController(contacts *services.ContactService, logger logrus.FieldLogger) *ContactController {
	return &ContactController{contacts: contacts, logger: logger}
}

// ListCustomers handles GET /api/v1/customers
func (ctl *ContactController) ListCustomers(c *gin.Context) {
	customers, pagination, err := ctl.contacts.ListCustomers(c.Request.Context(), contactFilter(c))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondList(c, customers, pagination)
}

// GetCustomer handles GET /api/v1/customers/:id
func (ctl *ContactController) GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	customer, err := ctl.contacts.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, customer)
}

// CreateCustomer handles POST /api/v1/customers
func (ctl *ContactController) CreateCustomer(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	customer, err := ctl.contacts.CreateCustomer(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func (ctl *ContactController) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	customer, err := ctl.contacts.UpdateCustomer(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/v1/customers/:id by deactivating the customer
func (ctl *ContactController) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctl.contacts.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondMessage(c, "Customer deactivated successfully", gin.H{"id": id})
}

// CustomerStats handles GET /api/v1/customers/stats/summary
func (ctl *ContactController) CustomerStats(c *gin.Context) {
	stats, err := ctl.contacts.CustomerStats(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// ListSuppliers handles GET /api/v1/suppliers
func (ctl *ContactController) ListSuppliers(c *gin.Context) {
	suppliers, pagination, err := ctl.contacts.ListSuppliers(c.Request.Context(), contactFilter(c))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondList(c, suppliers, pagination)
}

// GetSupplier handles GET /api/v1/suppliers/:id
func (ctl *ContactController) GetSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	supplier, err := ctl.contacts.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, supplier)
}

// CreateSupplier handles POST /api/v1/suppliers
func (ctl *ContactController) CreateSupplier(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	supplier, err := ctl.contacts.CreateSupplier(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, supplier)
}

// UpdateSupplier handles PUT /api/v1/suppliers/:id
func (ctl *ContactController) UpdateSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	supplier, err := ctl.contacts.UpdateSupplier(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, supplier)
}

// DeleteSupplier handles DELETE /api/v1/suppliers/:id by deactivating the supplier
func (ctl *ContactController) DeleteSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctl.contacts.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondMessage(c, "Supplier deactivated successfully", gin.H{"id": id})
}

// SupplierCategories handles GET /api/v1/suppliers/categories/list
func (ctl *ContactController) SupplierCategories(c *gin.Context) {
	categories, err := ctl.contacts.SupplierCategories(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, categories)
}

// SupplierStats handles GET /api/v1/suppliers/stats/summary
func (ctl *ContactController) SupplierStats(c *gin.Context) {
	stats, err := ctl.contacts.SupplierStats(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
