package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/invoicing/internal/entity"
)

type Repository struct {
	db *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{
		db: pool,
	}
}

// Postgres error codes that map to distinct API failures.
const (
	pgCodeUniqueViolation  = "23505"
	pgCodeNotNullViolation = "23502"
	pgCodeInvalidText      = "22P02"
)

// classifyErr translates store-level failures into the entity error taxonomy.
// Anything unrecognized passes through as a server error.
func classifyErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgCodeUniqueViolation:
		return fmt.Errorf("%w: %s", entity.ErrDuplicateInvoiceNumber, pgErr.ConstraintName)
	case pgCodeNotNullViolation:
		return fmt.Errorf("%w: %s", entity.ErrMissingField, pgErr.ColumnName)
	case pgCodeInvalidText:
		return fmt.Errorf("%w: %s", entity.ErrInvalidType, pgErr.Message)
	default:
		return err
	}
}

// rollback is deferred on every transaction. A rollback failure after commit
// is expected and silent; any other failure is logged without masking the
// error that caused the rollback.
func rollback(ctx context.Context, tx pgx.Tx) {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.ErrorContext(ctx, "rollback transaction", "error", err)
	}
}
