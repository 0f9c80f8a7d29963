package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ledgerline/invoicing/internal/entity"
)

func (r *Repository) CreateCustomer(ctx context.Context, c entity.Customer) (entity.Customer, error) {
	const q = `
	INSERT INTO customers (name, email, phone, address, gstin, notes)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, q, c.Name, c.Email, c.Phone, c.Address, c.GSTIN, c.Notes).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return entity.Customer{}, classifyErr(err)
	}

	return c, nil
}

func (r *Repository) UpdateCustomer(ctx context.Context, c entity.Customer) (entity.Customer, error) {
	const q = `
	UPDATE customers
	SET name = $1, email = $2, phone = $3, address = $4, gstin = $5, notes = $6, updated_at = now()
	WHERE id = $7
	RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, q, c.Name, c.Email, c.Phone, c.Address, c.GSTIN, c.Notes, c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Customer{}, entity.ErrNotFound
		}

		return entity.Customer{}, classifyErr(err)
	}

	return c, nil
}

func (r *Repository) DeleteCustomer(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return err
}

func (r *Repository) Customer(ctx context.Context, id int64) (entity.Customer, error) {
	q := selectCustomer + " WHERE id = $1"
	return scanCustomer(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) Customers(ctx context.Context) ([]entity.Customer, error) {
	q := selectCustomer + " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectCustomers(rows)
}

// SearchCustomers does a case-insensitive substring match across name, email
// and phone, newest first.
func (r *Repository) SearchCustomers(ctx context.Context, term string) ([]entity.Customer, error) {
	pattern := "%" + term + "%"

	stmt := sq.Select(
		"id",
		"name",
		"COALESCE(email, '')",
		"COALESCE(phone, '')",
		"COALESCE(address, '')",
		"COALESCE(gstin, '')",
		"COALESCE(notes, '')",
		"created_at",
		"updated_at",
	).From("customers").
		Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"email": pattern},
			sq.ILike{"phone": pattern},
		}).
		OrderBy("created_at DESC").
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

	return collectCustomers(rows)
}

func collectCustomers(rows pgx.Rows) ([]entity.Customer, error) {
	var customers []entity.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}

		customers = append(customers, c)
	}

	return customers, rows.Err()
}

func scanCustomer(row pgx.Row) (c entity.Customer, err error) {
	err = row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.GSTIN,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Customer{}, entity.ErrNotFound
		}

		return entity.Customer{}, err
	}

	return c, nil
}
