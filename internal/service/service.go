package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/invoicing/internal/entity"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=service.go -destination=../mocks/repository.go -package=mocks

type Repository interface {
	CreateInvoice(ctx context.Context, inv entity.Invoice) (entity.Invoice, error)
	UpdateInvoice(ctx context.Context, inv entity.Invoice) error
	DeleteInvoice(ctx context.Context, id int64) error
	Invoice(ctx context.Context, id int64) (entity.Invoice, error)
	Invoices(ctx context.Context) ([]entity.Invoice, error)
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)
	PaidRevenue(ctx context.Context, group entity.RevenueGroup) ([]entity.RevenueRow, error)
	Outstanding(ctx context.Context) (decimal.Decimal, error)
	CreateCustomer(ctx context.Context, c entity.Customer) (entity.Customer, error)
	UpdateCustomer(ctx context.Context, c entity.Customer) (entity.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	Customer(ctx context.Context, id int64) (entity.Customer, error)
	Customers(ctx context.Context) ([]entity.Customer, error)
	SearchCustomers(ctx context.Context, term string) ([]entity.Customer, error)
}

type Producer interface {
	InvoiceCreated(ctx context.Context, inv entity.Invoice)
	InvoiceUpdated(ctx context.Context, inv entity.Invoice)
	InvoiceDeleted(ctx context.Context, id int64)
}

type Service struct {
	repo     Repository
	producer Producer
}

func New(repo Repository, producer Producer) *Service {
	return &Service{
		repo:     repo,
		producer: producer,
	}
}

// totalsTolerance is how far a client-submitted total may drift from the
// server-side recomputation before the payload is rejected. Recomputed values
// are authoritative and are what gets persisted.
var totalsTolerance = decimal.New(1, -2)

func (s *Service) CreateInvoice(ctx context.Context, p entity.InvoicePayload) (entity.Invoice, error) {
	inv, err := s.buildInvoice(p)
	if err != nil {
		return entity.Invoice{}, err
	}

	inv, err = s.repo.CreateInvoice(ctx, inv)
	if err != nil {
		return entity.Invoice{}, fmt.Errorf("create invoice %q: %w", p.InvoiceNumber, err)
	}

	s.producer.InvoiceCreated(ctx, inv)

	slog.InfoContext(ctx, "invoice created",
		"invoice_number", inv.InvoiceNumber, "customer", inv.Customer, "amount", inv.Amount.StringFixed(2))

	return inv, nil
}

func (s *Service) UpdateInvoice(ctx context.Context, id int64, p entity.InvoicePayload) error {
	inv, err := s.buildInvoice(p)
	if err != nil {
		return err
	}

	inv.ID = id

	err = s.repo.UpdateInvoice(ctx, inv)
	if err != nil {
		return fmt.Errorf("update invoice %d: %w", id, err)
	}

	s.producer.InvoiceUpdated(ctx, inv)

	return nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	err := s.repo.DeleteInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("delete invoice %d: %w", id, err)
	}

	s.producer.InvoiceDeleted(ctx, id)

	return nil
}

func (s *Service) Invoice(ctx context.Context, id int64) (entity.Invoice, error) {
	return s.repo.Invoice(ctx, id)
}

func (s *Service) Invoices(ctx context.Context) ([]entity.Invoice, error) {
	return s.repo.Invoices(ctx)
}

// buildInvoice validates the payload and derives the persisted invoice from
// it. Totals are always recomputed from the items; submitted totals are only
// cross-checked. Monetary values are rounded to 2 decimal places here, at the
// persistence boundary.
func (s *Service) buildInvoice(p entity.InvoicePayload) (entity.Invoice, error) {
	err := ValidateInvoicePayload(p)
	if err != nil {
		return entity.Invoice{}, err
	}

	issueDate, _ := time.Parse(entity.DateLayout, p.IssueDate)
	dueDate, _ := time.Parse(entity.DateLayout, p.DueDate)

	items := make([]entity.InvoiceItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, entity.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
		})
	}

	subtotal, tax, total := entity.Totals(items)

	err = checkSubmittedTotal("subtotal", p.Subtotal, subtotal)
	if err != nil {
		return entity.Invoice{}, err
	}

	err = checkSubmittedTotal("tax", p.Tax, tax)
	if err != nil {
		return entity.Invoice{}, err
	}

	err = checkSubmittedTotal("amount", p.Amount, total)
	if err != nil {
		return entity.Invoice{}, err
	}

	status := p.Status
	if status == "" {
		status = entity.InvoiceStatusDraft
	}

	return entity.Invoice{
		InvoiceNumber: p.InvoiceNumber,
		Customer:      p.Customer,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Notes:         p.Notes,
		Subtotal:      subtotal.Round(2),
		Tax:           tax.Round(2),
		Amount:        total.Round(2),
		Status:        status,
		Items:         items,
	}, nil
}

func checkSubmittedTotal(field string, submitted *decimal.Decimal, computed decimal.Decimal) error {
	if submitted == nil {
		return nil
	}

	if submitted.Sub(computed).Abs().GreaterThan(totalsTolerance) {
		return &entity.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("submitted %s %s does not match computed %s", field, submitted.StringFixed(2), computed.StringFixed(2)),
		}
	}

	return nil
}

// MarkOverdueInvoices is run periodically. It moves Sent invoices whose due
// date has passed to Overdue.
func (s *Service) MarkOverdueInvoices(ctx context.Context) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	n, err := s.repo.MarkOverdue(ctx, today)
	if err != nil {
		return fmt.Errorf("mark overdue invoices: %w", err)
	}

	if n > 0 {
		slog.InfoContext(ctx, "invoices marked overdue", "count", n)
	}

	return nil
}

func (s *Service) RevenueReport(ctx context.Context, group entity.RevenueGroup) (entity.RevenueReport, error) {
	err := group.Validate()
	if err != nil {
		return entity.RevenueReport{}, err
	}

	rows, err := s.repo.PaidRevenue(ctx, group)
	if err != nil {
		return entity.RevenueReport{}, fmt.Errorf("paid revenue by %s: %w", group, err)
	}

	outstanding, err := s.repo.Outstanding(ctx)
	if err != nil {
		return entity.RevenueReport{}, fmt.Errorf("outstanding total: %w", err)
	}

	return entity.RevenueReport{
		GroupedBy:   group,
		Rows:        rows,
		Outstanding: outstanding,
	}, nil
}

func (s *Service) CreateCustomer(ctx context.Context, c entity.Customer) (entity.Customer, error) {
	err := validateCustomer(c)
	if err != nil {
		return entity.Customer{}, err
	}

	c, err = s.repo.CreateCustomer(ctx, c)
	if err != nil {
		return entity.Customer{}, fmt.Errorf("create customer %q: %w", c.Name, err)
	}

	return c, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, c entity.Customer) (entity.Customer, error) {
	err := validateCustomer(c)
	if err != nil {
		return entity.Customer{}, err
	}

	c, err = s.repo.UpdateCustomer(ctx, c)
	if err != nil {
		return entity.Customer{}, fmt.Errorf("update customer %d: %w", c.ID, err)
	}

	return c, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) Customer(ctx context.Context, id int64) (entity.Customer, error) {
	return s.repo.Customer(ctx, id)
}

func (s *Service) Customers(ctx context.Context) ([]entity.Customer, error) {
	return s.repo.Customers(ctx)
}

func (s *Service) SearchCustomers(ctx context.Context, term string) ([]entity.Customer, error) {
	return s.repo.SearchCustomers(ctx, term)
}
