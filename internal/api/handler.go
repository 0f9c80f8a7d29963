package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/invoicing/internal/entity"
)

// @title Invoicing API
// @version 1.0
// @description Small business invoicing: customers, invoices and revenue reports
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

//go:generate go run go.uber.org/mock/mockgen@latest -source=handler.go -destination=../mocks/service.go -package=mocks

type Service interface {
	CreateInvoice(ctx context.Context, p entity.InvoicePayload) (entity.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, p entity.InvoicePayload) error
	DeleteInvoice(ctx context.Context, id int64) error
	Invoice(ctx context.Context, id int64) (entity.Invoice, error)
	Invoices(ctx context.Context) ([]entity.Invoice, error)
	RevenueReport(ctx context.Context, group entity.RevenueGroup) (entity.RevenueReport, error)
	CreateCustomer(ctx context.Context, c entity.Customer) (entity.Customer, error)
	UpdateCustomer(ctx context.Context, c entity.Customer) (entity.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	Customer(ctx context.Context, id int64) (entity.Customer, error)
	Customers(ctx context.Context) ([]entity.Customer, error)
	SearchCustomers(ctx context.Context, term string) ([]entity.Customer, error)
}

type Handler struct {
	s Service
}

func NewHandler(s Service) *Handler {
	return &Handler{
		s: s,
	}
}

type InvoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type InvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number"`
	Customer      string               `json:"customer"`
	IssueDate     string               `json:"issue_date"`
	DueDate       string               `json:"due_date"`
	Notes         string               `json:"notes"`
	Status        string               `json:"status"`
	Items         []InvoiceItemRequest `json:"items"`
	Subtotal      *decimal.Decimal     `json:"subtotal"`
	Tax           *decimal.Decimal     `json:"tax"`
	Amount        *decimal.Decimal     `json:"amount"`
}

type InvoiceItemResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
}

type InvoiceResponse struct {
	ID            int64                 `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	Customer      string                `json:"customer"`
	IssueDate     string                `json:"issue_date"`
	DueDate       string                `json:"due_date"`
	Notes         string                `json:"notes,omitempty"`
	Subtotal      string                `json:"subtotal"`
	Tax           string                `json:"tax"`
	Amount        string                `json:"amount"`
	Status        string                `json:"status"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CreateInvoice persists a new invoice with its line items
// @Summary Create invoice
// @Description Validates the payload, recomputes totals from the line items and stores everything atomically
// @Tags invoices
// @Accept json
// @Produce json
// @Param InvoiceRequest body InvoiceRequest true "Invoice creation request"
// @Success 201 {object} InvoiceResponse
// @Failure 400 {object} ErrorResponse "Validation failure"
// @Failure 409 {object} ErrorResponse "Duplicate invoice number"
// @Failure 500 {object} ErrorResponse "Store failure"
// @Router /invoices [post]
// @Security BearerAuth
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req InvoiceRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid JSON")
		return
	}

	inv, err := h.s.CreateInvoice(ctx, invoicePayload(req))
	if err != nil {
		h.sendInvoiceErr(ctx, w, err, "Failed to create invoice")
		return
	}

	SendJSON(ctx, w, http.StatusCreated, invoiceToAPI(inv, true))
}

// UpdateInvoice replaces an invoice and its whole line item set
// @Summary Update invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice id"
// @Param InvoiceRequest body InvoiceRequest true "Full invoice with items"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices/{id} [put]
// @Security BearerAuth
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid id")
		return
	}

	var req InvoiceRequest

	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid JSON")
		return
	}

	err = h.s.UpdateInvoice(ctx, id, invoicePayload(req))
	if err != nil {
		h.sendInvoiceErr(ctx, w, err, "Failed to update invoice")
		return
	}

	SendJSON(ctx, w, http.StatusOK, MessageResponse{Message: "Invoice updated successfully"})
}

// DeleteInvoice removes an invoice and its line items
// @Summary Delete invoice
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice id"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices/{id} [delete]
// @Security BearerAuth
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid id")
		return
	}

	err = h.s.DeleteInvoice(ctx, id)
	if err != nil {
		h.sendInvoiceErr(ctx, w, err, "Failed to delete invoice")
		return
	}

	SendJSON(ctx, w, http.StatusOK, MessageResponse{Message: "Invoice deleted successfully"})
}

// Invoice returns one invoice with its ordered line items
// @Summary Get invoice
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice id"
// @Success 200 {object} InvoiceResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices/{id} [get]
// @Security BearerAuth
func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid id")
		return
	}

	inv, err := h.s.Invoice(ctx, id)
	if err != nil {
		h.sendInvoiceErr(ctx, w, err, "Failed to fetch invoice")
		return
	}

	SendJSON(ctx, w, http.StatusOK, invoiceToAPI(inv, true))
}

// Invoices lists all invoice headers, newest first
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Success 200 {array} InvoiceResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices [get]
// @Security BearerAuth
func (h *Handler) Invoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invoices, err := h.s.Invoices(ctx)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "Failed to fetch invoices")
		return
	}

	res := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		res = append(res, invoiceToAPI(inv, false))
	}

	SendJSON(ctx, w, http.StatusOK, res)
}

type RevenueRowResponse struct {
	Period  string `json:"period"`
	Revenue string `json:"revenue"`
}

type RevenueReportResponse struct {
	GroupedBy   string               `json:"grouped_by"`
	Rows        []RevenueRowResponse `json:"rows"`
	Outstanding string               `json:"outstanding"`
}

// RevenueReport aggregates paid revenue grouped by month or customer
// @Summary Revenue report
// @Tags reports
// @Produce json
// @Param by query string false "Grouping: month or customer (default month)"
// @Success 200 {object} RevenueReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/revenue [get]
// @Security BearerAuth
func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	group := entity.RevenueGroup(r.URL.Query().Get("by"))
	if group == "" {
		group = entity.RevenueByMonth
	}

	report, err := h.s.RevenueReport(ctx, group)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidArgument) {
			SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid grouping, expected month or customer")
			return
		}

		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "Failed to build revenue report")

		return
	}

	rows := make([]RevenueRowResponse, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, RevenueRowResponse{
			Period:  row.Period,
			Revenue: row.Revenue.StringFixed(2),
		})
	}

	SendJSON(ctx, w, http.StatusOK, RevenueReportResponse{
		GroupedBy:   report.GroupedBy.String(),
		Rows:        rows,
		Outstanding: report.Outstanding.StringFixed(2),
	})
}

// HealthHandler returns service health status.
// @Summary Health check
// @Tags health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := w.Write([]byte("OK\n"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "Service is not healthy")
		return
	}
}

// sendInvoiceErr maps the entity error taxonomy onto HTTP statuses: not
// found -> 404, duplicate number -> 409, constraint and validation failures
// -> 400, everything else -> 500.
func (h *Handler) sendInvoiceErr(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	var vErr *entity.ValidationError

	switch {
	case errors.Is(err, entity.ErrNotFound):
		SendJSONErr(ctx, w, http.StatusNotFound, err, "Invoice not found")
	case errors.Is(err, entity.ErrDuplicateInvoiceNumber):
		SendJSONErr(ctx, w, http.StatusConflict, err, "Invoice number already exists")
	case errors.Is(err, entity.ErrMissingField):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Missing required field")
	case errors.Is(err, entity.ErrInvalidType):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid data type")
	case errors.As(err, &vErr):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, vErr.Error())
	case errors.Is(err, entity.ErrInvalidArgument):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "Invalid payload")
	default:
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, fallback)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func invoicePayload(req InvoiceRequest) entity.InvoicePayload {
	items := make([]entity.InvoiceItemPayload, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, entity.InvoiceItemPayload{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
		})
	}

	return entity.InvoicePayload{
		InvoiceNumber: req.InvoiceNumber,
		Customer:      req.Customer,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		Status:        entity.InvoiceStatus(req.Status),
		Items:         items,
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		Amount:        req.Amount,
	}
}

func invoiceToAPI(inv entity.Invoice, withItems bool) InvoiceResponse {
	res := InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Customer:      inv.Customer,
		IssueDate:     inv.IssueDate.Format(entity.DateLayout),
		DueDate:       inv.DueDate.Format(entity.DateLayout),
		Notes:         inv.Notes,
		Subtotal:      inv.Subtotal.StringFixed(2),
		Tax:           inv.Tax.StringFixed(2),
		Amount:        inv.Amount.StringFixed(2),
		Status:        inv.Status.String(),
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}

	if !withItems {
		return res
	}

	res.Items = make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		res.Items = append(res.Items, InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			UnitPrice:   it.UnitPrice.StringFixed(2),
			TaxRate:     it.TaxRate.String(),
		})
	}

	return res
}
