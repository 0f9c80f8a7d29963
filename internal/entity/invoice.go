package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for issue and due dates. Invoices carry
// calendar dates only, no time of day.
const DateLayout = "2006-01-02"

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "Draft"
	InvoiceStatusSent    InvoiceStatus = "Sent"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusOverdue InvoiceStatus = "Overdue"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return nil
	default:
		return fmt.Errorf("%w: unknown invoice status %s", ErrInvalidArgument, s)
	}
}

type Invoice struct {
	ID            int64
	InvoiceNumber string
	Customer      string
	IssueDate     time.Time
	DueDate       time.Time
	Notes         string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Amount        decimal.Decimal
	Status        InvoiceStatus
	Items         []InvoiceItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type InvoiceItem struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // percent, [0, 100]
}

// Net returns quantity * unitPrice without tax, unrounded.
func (it InvoiceItem) Net() decimal.Decimal {
	return it.Quantity.Mul(it.UnitPrice)
}

// TaxAmount returns the tax portion of the item: quantity * unitPrice * taxRate / 100, unrounded.
func (it InvoiceItem) TaxAmount() decimal.Decimal {
	return it.Net().Mul(it.TaxRate).Div(oneHundred)
}

// Total returns the gross line total: quantity * unitPrice * (1 + taxRate/100), unrounded.
func (it InvoiceItem) Total() decimal.Decimal {
	return it.Net().Add(it.TaxAmount())
}

var oneHundred = decimal.New(100, 0)

// Totals derives subtotal, total tax and the grand total from the line items.
// Accumulation is exact; rounding to 2 decimal places happens only at the
// persistence and presentation boundaries.
func Totals(items []InvoiceItem) (subtotal, tax, total decimal.Decimal) {
	for _, it := range items {
		subtotal = subtotal.Add(it.Net())
		tax = tax.Add(it.TaxAmount())
	}

	return subtotal, tax, subtotal.Add(tax)
}

// InvoicePayload is a candidate invoice as submitted by a client, before
// validation. Dates are raw strings; submitted totals are display hints that
// the service re-derives and cross-checks.
type InvoicePayload struct {
	InvoiceNumber string
	Customer      string
	IssueDate     string
	DueDate       string
	Notes         string
	Status        InvoiceStatus
	Items         []InvoiceItemPayload
	Subtotal      *decimal.Decimal
	Tax           *decimal.Decimal
	Amount        *decimal.Decimal
}

type InvoiceItemPayload struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

type RevenueGroup string

const (
	RevenueByMonth    RevenueGroup = "month"
	RevenueByCustomer RevenueGroup = "customer"
)

func (g RevenueGroup) String() string {
	return string(g)
}

func (g RevenueGroup) Validate() error {
	switch g {
	case RevenueByMonth, RevenueByCustomer:
		return nil
	default:
		return fmt.Errorf("%w: unknown revenue grouping %s", ErrInvalidArgument, g)
	}
}

type RevenueRow struct {
	Period  string
	Revenue decimal.Decimal
}

// RevenueReport sums paid invoices grouped by period and the total amount
// still outstanding on everything not yet paid.
type RevenueReport struct {
	GroupedBy   RevenueGroup
	Rows        []RevenueRow
	Outstanding decimal.Decimal
}
