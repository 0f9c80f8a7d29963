package repository

const (
	selectInvoice = `SELECT
		id,
		invoice_number,
		customer,
		issue_date,
		due_date,
		COALESCE(notes, ''),
		subtotal,
		tax,
		amount,
		status,
		created_at,
		updated_at
	FROM invoices`

	selectInvoiceItems = `SELECT
		id,
		invoice_id,
		description,
		quantity,
		unit_price,
		tax_rate
	FROM invoice_items`

	selectCustomer = `SELECT
		id,
		name,
		COALESCE(email, ''),
		COALESCE(phone, ''),
		COALESCE(address, ''),
		COALESCE(gstin, ''),
		COALESCE(notes, ''),
		created_at,
		updated_at
	FROM customers`
)
