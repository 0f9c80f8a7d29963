package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ledgerline/invoicing/internal/api"
	"github.com/ledgerline/invoicing/internal/entity"
	"github.com/ledgerline/invoicing/internal/mocks"
)

type clientAPI struct {
	srv         *httptest.Server
	serviceMock *mocks.MockService
	authMock    *mocks.MockAuthService
}

func NewClientAPI(t *testing.T) *clientAPI {
	t.Helper()

	ctrl := gomock.NewController(t)
	serviceMock := mocks.NewMockService(ctrl)
	authMock := mocks.NewMockAuthService(ctrl)

	router := api.NewRouter(api.NewHandler(serviceMock), api.NewMiddleware(authMock))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	user := entity.User{
		ID:    uuid.Must(uuid.NewV4()),
		Email: "user@example.com",
	}

	authMock.EXPECT().User(gomock.Any(), "dev").Return(user, nil).AnyTimes()

	return &clientAPI{
		srv:         srv,
		serviceMock: serviceMock,
		authMock:    authMock,
	}
}

func (c *clientAPI) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer dev")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, raw
}

func TestHandler_CreateInvoice(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	inv := entity.Invoice{
		ID:            1,
		InvoiceNumber: "INV-001",
		Customer:      "Acme Ltd",
		IssueDate:     time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Subtotal:      decimal.NewFromInt(1000),
		Tax:           decimal.NewFromInt(100),
		Amount:        decimal.NewFromInt(1100),
		Status:        entity.InvoiceStatusDraft,
		Items: []entity.InvoiceItem{
			{
				ID:          1,
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(100),
				TaxRate:     decimal.NewFromInt(10),
			},
		},
	}

	c.serviceMock.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(inv, nil)

	resp, raw := c.do(t, http.MethodPost, "/api/invoices", api.InvoiceRequest{
		InvoiceNumber: "INV-001",
		Customer:      "Acme Ltd",
		IssueDate:     "2026-01-10",
		DueDate:       "2026-02-10",
		Items: []api.InvoiceItemRequest{
			{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(100),
				TaxRate:     decimal.NewFromInt(10),
			},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got api.InvoiceResponse
	require.NoError(t, json.Unmarshal(raw, &got))

	require.EqualValues(t, 1, got.ID)
	require.Equal(t, "INV-001", got.InvoiceNumber)
	require.Equal(t, "2026-01-10", got.IssueDate)
	require.Equal(t, "2026-02-10", got.DueDate)
	require.Equal(t, "1100.00", got.Amount)
	require.Equal(t, "Draft", got.Status)
	require.Len(t, got.Items, 1)
}

func TestHandler_CreateInvoice_Duplicate(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.serviceMock.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).
		Return(entity.Invoice{}, entity.ErrDuplicateInvoiceNumber)

	resp, _ := c.do(t, http.MethodPost, "/api/invoices", api.InvoiceRequest{InvoiceNumber: "INV-001"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandler_CreateInvoice_Validation(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.serviceMock.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).
		Return(entity.Invoice{}, &entity.ValidationError{Field: "customer", Message: "customer is required"})

	resp, raw := c.do(t, http.MethodPost, "/api/invoices", api.InvoiceRequest{InvoiceNumber: "INV-001"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got api.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	require.NotEmpty(t, got.Message)
}

func TestHandler_Invoice_NotFound(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.serviceMock.EXPECT().Invoice(gomock.Any(), int64(99)).
		Return(entity.Invoice{}, entity.ErrNotFound)

	resp, _ := c.do(t, http.MethodGet, "/api/invoices/99", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Invoice_BadID(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	resp, _ := c.do(t, http.MethodGet, "/api/invoices/abc", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_UpdateInvoice(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.serviceMock.EXPECT().UpdateInvoice(gomock.Any(), int64(5), gomock.Any()).Return(nil)

	resp, raw := c.do(t, http.MethodPut, "/api/invoices/5", api.InvoiceRequest{InvoiceNumber: "INV-005"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.MessageResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "Invoice updated successfully", got.Message)
}

func TestHandler_DeleteInvoice_NotFound(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.serviceMock.EXPECT().DeleteInvoice(gomock.Any(), int64(5)).Return(entity.ErrNotFound)

	resp, _ := c.do(t, http.MethodDelete, "/api/invoices/5", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_RevenueReport(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	report := entity.RevenueReport{
		GroupedBy: entity.RevenueByMonth,
		Rows: []entity.RevenueRow{
			{Period: "2026-01", Revenue: decimal.NewFromInt(1100)},
		},
		Outstanding: decimal.NewFromInt(250),
	}

	c.serviceMock.EXPECT().RevenueReport(gomock.Any(), entity.RevenueByMonth).Return(report, nil)

	resp, raw := c.do(t, http.MethodGet, "/api/reports/revenue", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.RevenueReportResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "month", got.GroupedBy)
	require.Equal(t, "250.00", got.Outstanding)
	require.Len(t, got.Rows, 1)
	require.Equal(t, "1100.00", got.Rows[0].Revenue)
}

func TestHandler_RevenueReport_ByCustomer(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.serviceMock.EXPECT().RevenueReport(gomock.Any(), entity.RevenueByCustomer).
		Return(entity.RevenueReport{GroupedBy: entity.RevenueByCustomer}, nil)

	resp, _ := c.do(t, http.MethodGet, "/api/reports/revenue?by=customer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_CreateCustomer(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	customer := entity.Customer{ID: 1, Name: "Acme Ltd", Email: "billing@acme.test"}

	c.serviceMock.EXPECT().CreateCustomer(gomock.Any(), gomock.Any()).Return(customer, nil)

	resp, raw := c.do(t, http.MethodPost, "/api/customers", api.CustomerRequest{
		Name:  "Acme Ltd",
		Email: "billing@acme.test",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got api.CustomerResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	require.EqualValues(t, 1, got.ID)
	require.Equal(t, "Acme Ltd", got.Name)
}

func TestHandler_Customer_NotFound(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.serviceMock.EXPECT().Customer(gomock.Any(), int64(99)).
		Return(entity.Customer{}, entity.ErrNotFound)

	resp, _ := c.do(t, http.MethodGet, "/api/customers/99", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_DeleteCustomer(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.serviceMock.EXPECT().DeleteCustomer(gomock.Any(), int64(3)).Return(nil)

	resp, _ := c.do(t, http.MethodDelete, "/api/customers/3", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHandler_SearchCustomers(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.serviceMock.EXPECT().SearchCustomers(gomock.Any(), "acme").
		Return([]entity.Customer{{ID: 1, Name: "Acme Ltd"}}, nil)

	resp, raw := c.do(t, http.MethodGet, "/api/customers/search?term=acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []api.CustomerResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 1)
}

func TestHandler_SearchCustomers_MissingTerm(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	resp, _ := c.do(t, http.MethodGet, "/api/customers/search", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Unauthenticated(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	c.authMock.EXPECT().User(gomock.Any(), "bad").
		Return(entity.User{}, entity.ErrUnauthenticated)

	req, err := http.NewRequest(http.MethodGet, c.srv.URL+"/api/invoices", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer bad")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_MissingToken(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	resp, err := http.Get(c.srv.URL + "/api/invoices")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()

	c := NewClientAPI(t)

	resp, err := http.Get(c.srv.URL + "/api/health")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
