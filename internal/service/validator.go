package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/invoicing/internal/entity"
)

var oneHundred = decimal.New(100, 0)

// ValidateInvoicePayload checks a candidate invoice and returns the first
// failure found, in a fixed order: header fields, item presence, each item in
// sequence, then cross-field date ordering. It never touches the store.
func ValidateInvoicePayload(p entity.InvoicePayload) error {
	if p.InvoiceNumber == "" {
		return &entity.ValidationError{Field: "invoice_number", Message: "invoice number is required"}
	}

	if p.Customer == "" {
		return &entity.ValidationError{Field: "customer", Message: "customer is required"}
	}

	issue, err := parseDate("issue_date", p.IssueDate)
	if err != nil {
		return err
	}

	due, err := parseDate("due_date", p.DueDate)
	if err != nil {
		return err
	}

	if len(p.Items) == 0 {
		return &entity.ValidationError{Field: "items", Message: "at least one line item is required"}
	}

	for i, it := range p.Items {
		err = validateItem(i, it)
		if err != nil {
			return err
		}
	}

	if due.Before(issue) {
		return &entity.ValidationError{Field: "due_date", Message: "due date must not be earlier than issue date"}
	}

	if p.Status != "" {
		err = p.Status.Validate()
		if err != nil {
			return &entity.ValidationError{Field: "status", Message: fmt.Sprintf("status must be one of Draft, Sent, Paid, Overdue, got %q", p.Status)}
		}
	}

	return nil
}

func validateItem(i int, it entity.InvoiceItemPayload) error {
	field := func(name string) string {
		return fmt.Sprintf("items[%d].%s", i, name)
	}

	if it.Description == "" {
		return &entity.ValidationError{Field: field("description"), Message: "description is required"}
	}

	if !it.Quantity.IsPositive() {
		return &entity.ValidationError{Field: field("quantity"), Message: "quantity must be greater than zero"}
	}

	if it.UnitPrice.IsNegative() {
		return &entity.ValidationError{Field: field("unit_price"), Message: "unit price must not be negative"}
	}

	if it.TaxRate.IsNegative() || it.TaxRate.GreaterThan(oneHundred) {
		return &entity.ValidationError{Field: field("tax_rate"), Message: "tax rate must be between 0 and 100"}
	}

	return nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &entity.ValidationError{Field: field, Message: field + " is required"}
	}

	d, err := time.Parse(entity.DateLayout, value)
	if err != nil {
		return time.Time{}, &entity.ValidationError{Field: field, Message: "invalid date, expected YYYY-MM-DD"}
	}

	return d, nil
}

func validateCustomer(c entity.Customer) error {
	if c.Name == "" {
		return &entity.ValidationError{Field: "name", Message: "name is required"}
	}

	return nil
}
