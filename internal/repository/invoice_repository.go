package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/invoicing/internal/entity"
)

// CreateInvoice persists the invoice header and its line items in one
// transaction. Items are inserted sequentially in input order so a failure is
// attributable to a specific item. Nothing is observable until commit.
func (r *Repository) CreateInvoice(ctx context.Context, inv entity.Invoice) (entity.Invoice, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return entity.Invoice{}, err
	}

	defer rollback(ctx, tx)

	const q = `
	INSERT INTO invoices (
		invoice_number,
		customer,
		issue_date,
		due_date,
		notes,
		subtotal,
		tax,
		amount,
		status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx,
		q,
		inv.InvoiceNumber,
		inv.Customer,
		inv.IssueDate,
		inv.DueDate,
		inv.Notes,
		inv.Subtotal,
		inv.Tax,
		inv.Amount,
		inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return entity.Invoice{}, classifyErr(err)
	}

	items, err := insertItems(ctx, tx, inv.ID, inv.Items)
	if err != nil {
		return entity.Invoice{}, err
	}

	inv.Items = items

	err = tx.Commit(ctx)
	if err != nil {
		return entity.Invoice{}, err
	}

	return inv, nil
}

// UpdateInvoice replaces the invoice header and its whole item set
// atomically. Line items carry no stable external identity, so the existing
// set is deleted and the submitted set inserted instead of diffing.
func (r *Repository) UpdateInvoice(ctx context.Context, inv entity.Invoice) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	defer rollback(ctx, tx)

	const q = `
	UPDATE invoices
	SET
		invoice_number = $1,
		customer = $2,
		issue_date = $3,
		due_date = $4,
		notes = $5,
		subtotal = $6,
		tax = $7,
		amount = $8,
		status = $9,
		updated_at = now()
	WHERE id = $10
	`

	result, err := tx.Exec(
		ctx,
		q,
		inv.InvoiceNumber,
		inv.Customer,
		inv.IssueDate,
		inv.DueDate,
		inv.Notes,
		inv.Subtotal,
		inv.Tax,
		inv.Amount,
		inv.Status,
		inv.ID,
	)
	if err != nil {
		return classifyErr(err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	_, err = tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID)
	if err != nil {
		return err
	}

	_, err = insertItems(ctx, tx, inv.ID, inv.Items)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteInvoice removes the invoice and its line items atomically. Items go
// first because of the foreign key.
func (r *Repository) DeleteInvoice(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	defer rollback(ctx, tx)

	_, err = tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return tx.Commit(ctx)
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceID int64, items []entity.InvoiceItem) ([]entity.InvoiceItem, error) {
	const q = `
	INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, tax_rate)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	inserted := make([]entity.InvoiceItem, 0, len(items))

	for i, it := range items {
		it.InvoiceID = invoiceID

		err := tx.QueryRow(ctx, q, invoiceID, it.Description, it.Quantity, it.UnitPrice, it.TaxRate).Scan(&it.ID)
		if err != nil {
			return nil, fmt.Errorf("insert item %d: %w", i, classifyErr(err))
		}

		inserted = append(inserted, it)
	}

	return inserted, nil
}

func (r *Repository) Invoice(ctx context.Context, id int64) (entity.Invoice, error) {
	q := selectInvoice + " WHERE id = $1"

	inv, err := scanInvoice(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return entity.Invoice{}, err
	}

	items, err := r.invoiceItems(ctx, id)
	if err != nil {
		return entity.Invoice{}, err
	}

	inv.Items = items

	return inv, nil
}

func (r *Repository) Invoices(ctx context.Context) (invoices []entity.Invoice, err error) {
	q := selectInvoice + " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}

		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

func (r *Repository) invoiceItems(ctx context.Context, invoiceID int64) (items []entity.InvoiceItem, err error) {
	q := selectInvoiceItems + " WHERE invoice_id = $1 ORDER BY id"

	rows, err := r.db.Query(ctx, q, invoiceID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var it entity.InvoiceItem

		err = rows.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPrice, &it.TaxRate)
		if err != nil {
			return nil, err
		}

		items = append(items, it)
	}

	return items, rows.Err()
}

// MarkOverdue flips every Sent invoice whose due date passed before the given
// day to Overdue and reports how many rows changed.
func (r *Repository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	const q = `UPDATE invoices SET status = $1, updated_at = now() WHERE status = $2 AND due_date < $3`

	result, err := r.db.Exec(ctx, q, entity.InvoiceStatusOverdue, entity.InvoiceStatusSent, before)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

// PaidRevenue aggregates the amounts of paid invoices grouped by issue month
// or by customer.
func (r *Repository) PaidRevenue(ctx context.Context, group entity.RevenueGroup) ([]entity.RevenueRow, error) {
	period := "to_char(issue_date, 'YYYY-MM')"
	if group == entity.RevenueByCustomer {
		period = "customer"
	}

	stmt := sq.Select(period+" AS period", "SUM(amount) AS revenue").
		From("invoices").
		Where(sq.Eq{"status": entity.InvoiceStatusPaid}).
		GroupBy("period").
		OrderBy("period").
		PlaceholderFormat(sq.Dollar)

	sql, args, err := stmt.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var res []entity.RevenueRow

	for rows.Next() {
		var row entity.RevenueRow

		err = rows.Scan(&row.Period, &row.Revenue)
		if err != nil {
			return nil, err
		}

		res = append(res, row)
	}

	return res, rows.Err()
}

// Outstanding sums the amounts of all invoices that are not paid yet.
func (r *Repository) Outstanding(ctx context.Context) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE status <> $1`

	var total decimal.Decimal

	err := r.db.QueryRow(ctx, q, entity.InvoiceStatusPaid).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return total, nil
}

func scanInvoice(row pgx.Row) (inv entity.Invoice, err error) {
	err = row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.Customer,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.Notes,
		&inv.Subtotal,
		&inv.Tax,
		&inv.Amount,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Invoice{}, entity.ErrNotFound
		}

		return entity.Invoice{}, err
	}

	return inv, nil
}
