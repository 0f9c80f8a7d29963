package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ledgerline/invoicing/internal/entity"
)

type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
	Notes   string `json:"notes"`
}

type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	GSTIN     string    `json:"gstin,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Customers lists all customers, newest first
// @Summary List customers
// @Tags customers
// @Produce json
// @Success 200 {array} CustomerResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers [get]
// @Security BearerAuth
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customers, err := h.s.Customers(ctx)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "Failed to fetch customers")
		return
	}

	SendJSON(ctx, w, http.StatusOK, customersToAPI(customers))
}

// CreateCustomer stores a new customer
// @Summary Create customer
// @Tags customers
// @Accept json
// @Produce json
// @Param CustomerRequest body CustomerRequest true "Customer creation request"
// @Success 201 {object} CustomerResponse
// @Failure 400 {object} ErrorResponse "Name is required"
// @Failure 500 {object} ErrorResponse
// @Router /customers [post]
// @Security BearerAuth
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CustomerRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid JSON")
		return
	}

	c, err := h.s.CreateCustomer(ctx, customerFromAPI(req))
	if err != nil {
		h.sendCustomerErr(ctx, w, err, "Failed to create customer")
		return
	}

	SendJSON(ctx, w, http.StatusCreated, customerToAPI(c))
}

// Customer returns one customer by id
// @Summary Get customer
// @Tags customers
// @Produce json
// @Param id path int true "Customer id"
// @Success 200 {object} CustomerResponse
// @Failure 400 {object} ErrorResponse "Invalid id"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers/{id} [get]
// @Security BearerAuth
func (h *Handler) Customer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid id")
		return
	}

	c, err := h.s.Customer(ctx, id)
	if err != nil {
		h.sendCustomerErr(ctx, w, err, "Failed to fetch customer")
		return
	}

	SendJSON(ctx, w, http.StatusOK, customerToAPI(c))
}

// UpdateCustomer replaces a customer row
// @Summary Update customer
// @Tags customers
// @Accept json
// @Produce json
// @Param id path int true "Customer id"
// @Param CustomerRequest body CustomerRequest true "Customer update request"
// @Success 200 {object} CustomerResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers/{id} [put]
// @Security BearerAuth
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid id")
		return
	}

	var req CustomerRequest

	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid JSON")
		return
	}

	c := customerFromAPI(req)
	c.ID = id

	c, err = h.s.UpdateCustomer(ctx, c)
	if err != nil {
		h.sendCustomerErr(ctx, w, err, "Failed to update customer")
		return
	}

	SendJSON(ctx, w, http.StatusOK, customerToAPI(c))
}

// DeleteCustomer removes a customer by id
// @Summary Delete customer
// @Tags customers
// @Param id path int true "Customer id"
// @Success 204 "Deleted"
// @Failure 500 {object} ErrorResponse
// @Router /customers/{id} [delete]
// @Security BearerAuth
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid id")
		return
	}

	err = h.s.DeleteCustomer(ctx, id)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "Failed to delete customer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchCustomers does a case-insensitive substring search over name, email and phone
// @Summary Search customers
// @Tags customers
// @Produce json
// @Param term query string true "Search term"
// @Success 200 {array} CustomerResponse
// @Failure 400 {object} ErrorResponse "Missing term"
// @Failure 500 {object} ErrorResponse
// @Router /customers/search [get]
// @Security BearerAuth
func (h *Handler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	term := r.URL.Query().Get("term")
	if term == "" {
		SendJSONErr(ctx, w, http.StatusBadRequest, nil, "Search term is required")
		return
	}

	customers, err := h.s.SearchCustomers(ctx, term)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "Failed to search customers")
		return
	}

	SendJSON(ctx, w, http.StatusOK, customersToAPI(customers))
}

func (h *Handler) sendCustomerErr(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	var vErr *entity.ValidationError

	switch {
	case errors.Is(err, entity.ErrNotFound):
		SendJSONErr(ctx, w, http.StatusNotFound, err, "Customer not found")
	case errors.As(err, &vErr):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, vErr.Error())
	case errors.Is(err, entity.ErrInvalidArgument):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid payload")
	default:
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, fallback)
	}
}

func customerFromAPI(req CustomerRequest) entity.Customer {
	return entity.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		GSTIN:   req.GSTIN,
		Notes:   req.Notes,
	}
}

func customerToAPI(c entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		GSTIN:     c.GSTIN,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func customersToAPI(customers []entity.Customer) []CustomerResponse {
	res := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		res = append(res, customerToAPI(c))
	}

	return res
}
