package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/invoicing/internal/entity"
)

func TestInvoiceItem_Total(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name      string
		quantity  string
		unitPrice string
		taxRate   string
		wantTotal string
	}{
		{
			name:      "no tax",
			quantity:  "2",
			unitPrice: "49.99",
			taxRate:   "0",
			wantTotal: "99.98",
		},
		{
			name:      "10 percent",
			quantity:  "10",
			unitPrice: "100",
			taxRate:   "10",
			wantTotal: "1100",
		},
		{
			name:      "fractional quantity",
			quantity:  "1.5",
			unitPrice: "80",
			taxRate:   "20",
			wantTotal: "144",
		},
		{
			name:      "small amount",
			quantity:  "1",
			unitPrice: "0.40",
			taxRate:   "20",
			wantTotal: "0.48",
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			it := entity.InvoiceItem{
				Quantity:  decimal.RequireFromString(tt.quantity),
				UnitPrice: decimal.RequireFromString(tt.unitPrice),
				TaxRate:   decimal.RequireFromString(tt.taxRate),
			}

			got := it.Total()
			if !got.Equal(decimal.RequireFromString(tt.wantTotal)) {
				t.Errorf("Total() = %v, want %v", got, tt.wantTotal)
			}
		})
	}
}

func TestTotals(t *testing.T) {
	t.Parallel()

	items := []entity.InvoiceItem{
		{
			Description: "Consulting",
			Quantity:    decimal.New(10, 0),
			UnitPrice:   decimal.New(100, 0),
			TaxRate:     decimal.New(10, 0),
		},
	}

	subtotal, tax, total := entity.Totals(items)

	if !subtotal.Equal(decimal.New(1000, 0)) {
		t.Errorf("subtotal = %v, want 1000", subtotal)
	}

	if !tax.Equal(decimal.New(100, 0)) {
		t.Errorf("tax = %v, want 100", tax)
	}

	if !total.Equal(decimal.New(1100, 0)) {
		t.Errorf("total = %v, want 1100", total)
	}
}

// Totals must stay internally consistent for any mix of rates and fractional
// quantities: subtotal + tax == total, and the grand total matches the sum of
// per-line gross totals within a cent.
func TestTotals_Consistency(t *testing.T) {
	t.Parallel()

	items := []entity.InvoiceItem{
		{Quantity: decimal.RequireFromString("3"), UnitPrice: decimal.RequireFromString("19.99"), TaxRate: decimal.RequireFromString("18")},
		{Quantity: decimal.RequireFromString("0.25"), UnitPrice: decimal.RequireFromString("1200"), TaxRate: decimal.RequireFromString("5")},
		{Quantity: decimal.RequireFromString("7"), UnitPrice: decimal.RequireFromString("0.33"), TaxRate: decimal.RequireFromString("0")},
		{Quantity: decimal.RequireFromString("1"), UnitPrice: decimal.RequireFromString("999999.99"), TaxRate: decimal.RequireFromString("100")},
	}

	subtotal, tax, total := entity.Totals(items)

	if !subtotal.Add(tax).Equal(total) {
		t.Errorf("subtotal %v + tax %v != total %v", subtotal, tax, total)
	}

	var lineSum decimal.Decimal
	for _, it := range items {
		lineSum = lineSum.Add(it.Total())
	}

	tolerance := decimal.RequireFromString("0.01")
	if total.Sub(lineSum).Abs().GreaterThan(tolerance) {
		t.Errorf("total %v differs from line total sum %v by more than %v", total, lineSum, tolerance)
	}
}

func TestInvoiceStatus_Validate(t *testing.T) {
	t.Parallel()

	for _, s := range []entity.InvoiceStatus{
		entity.InvoiceStatusDraft,
		entity.InvoiceStatusSent,
		entity.InvoiceStatusPaid,
		entity.InvoiceStatusOverdue,
	} {
		if err := s.Validate(); err != nil {
			t.Errorf("Validate(%s) = %v, want nil", s, err)
		}
	}

	if err := entity.InvoiceStatus("Cancelled").Validate(); err == nil {
		t.Error("Validate(Cancelled) = nil, want error")
	}
}
