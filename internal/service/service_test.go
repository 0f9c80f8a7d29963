package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ledgerline/invoicing/internal/entity"
	"github.com/ledgerline/invoicing/internal/mocks"
	"github.com/ledgerline/invoicing/internal/service"
)

func TestService_CreateInvoice(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	p := validPayload()

	var stored entity.Invoice

	repo.EXPECT().CreateInvoice(context.Background(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv entity.Invoice) (entity.Invoice, error) {
			stored = inv
			inv.ID = 1
			return inv, nil
		})
	producer.EXPECT().InvoiceCreated(context.Background(), gomock.Any())

	s := service.New(repo, producer)

	inv, err := s.CreateInvoice(context.Background(), p)
	require.NoError(t, err)
	require.EqualValues(t, 1, inv.ID)

	// Totals are recomputed server-side: 10 x 100 at 10% tax.
	require.Equal(t, "1000.00", stored.Subtotal.StringFixed(2))
	require.Equal(t, "100.00", stored.Tax.StringFixed(2))
	require.Equal(t, "1100.00", stored.Amount.StringFixed(2))

	// Status defaults to Draft when omitted.
	require.Equal(t, entity.InvoiceStatusDraft, stored.Status)

	require.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), stored.IssueDate)
	require.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), stored.DueDate)
}

func TestService_CreateInvoice_Invalid(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	p := validPayload()
	p.Items = nil

	// Neither the repository nor the producer may be touched.
	s := service.New(repo, producer)

	_, err := s.CreateInvoice(context.Background(), p)
	require.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestService_CreateInvoice_TotalMismatch(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	p := validPayload()
	submitted := decimal.NewFromInt(999)
	p.Amount = &submitted

	s := service.New(repo, producer)

	_, err := s.CreateInvoice(context.Background(), p)

	var vErr *entity.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "amount", vErr.Field)
}

func TestService_CreateInvoice_TotalWithinTolerance(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	p := validPayload()
	submitted := decimal.RequireFromString("1100.01")
	p.Amount = &submitted

	repo.EXPECT().CreateInvoice(context.Background(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv entity.Invoice) (entity.Invoice, error) {
			// The recomputed value wins over the submitted one.
			require.Equal(t, "1100.00", inv.Amount.StringFixed(2))
			return inv, nil
		})
	producer.EXPECT().InvoiceCreated(context.Background(), gomock.Any())

	s := service.New(repo, producer)

	_, err := s.CreateInvoice(context.Background(), p)
	require.NoError(t, err)
}

func TestService_CreateInvoice_DuplicateNumber(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	repo.EXPECT().CreateInvoice(context.Background(), gomock.Any()).
		Return(entity.Invoice{}, entity.ErrDuplicateInvoiceNumber)

	s := service.New(repo, producer)

	_, err := s.CreateInvoice(context.Background(), validPayload())
	require.ErrorIs(t, err, entity.ErrDuplicateInvoiceNumber)
}

func TestService_UpdateInvoice(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	repo.EXPECT().UpdateInvoice(context.Background(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv entity.Invoice) error {
			require.EqualValues(t, 42, inv.ID)
			return nil
		})
	producer.EXPECT().InvoiceUpdated(context.Background(), gomock.Any())

	s := service.New(repo, producer)

	err := s.UpdateInvoice(context.Background(), 42, validPayload())
	require.NoError(t, err)
}

func TestService_UpdateInvoice_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	repo.EXPECT().UpdateInvoice(context.Background(), gomock.Any()).
		Return(entity.ErrNotFound)

	s := service.New(repo, producer)

	err := s.UpdateInvoice(context.Background(), 42, validPayload())
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestService_DeleteInvoice(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	repo.EXPECT().DeleteInvoice(context.Background(), int64(7)).Return(nil)
	producer.EXPECT().InvoiceDeleted(context.Background(), int64(7))

	s := service.New(repo, producer)

	require.NoError(t, s.DeleteInvoice(context.Background(), 7))
}

func TestService_DeleteInvoice_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	repo.EXPECT().DeleteInvoice(context.Background(), int64(7)).Return(entity.ErrNotFound)

	s := service.New(repo, producer)

	err := s.DeleteInvoice(context.Background(), 7)
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestService_MarkOverdueInvoices(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	repo.EXPECT().MarkOverdue(context.Background(), gomock.Any()).
		DoAndReturn(func(_ context.Context, before time.Time) (int64, error) {
			require.False(t, before.After(time.Now().UTC()))
			return 3, nil
		})

	s := service.New(repo, producer)

	require.NoError(t, s.MarkOverdueInvoices(context.Background()))
}

func TestService_RevenueReport(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	rows := []entity.RevenueRow{
		{Period: "2026-01", Revenue: decimal.NewFromInt(1100)},
		{Period: "2026-02", Revenue: decimal.NewFromInt(500)},
	}

	repo.EXPECT().PaidRevenue(context.Background(), entity.RevenueByMonth).Return(rows, nil)
	repo.EXPECT().Outstanding(context.Background()).Return(decimal.NewFromInt(250), nil)

	s := service.New(repo, producer)

	report, err := s.RevenueReport(context.Background(), entity.RevenueByMonth)
	require.NoError(t, err)
	require.Equal(t, entity.RevenueByMonth, report.GroupedBy)
	require.Equal(t, rows, report.Rows)
	require.Equal(t, "250", report.Outstanding.String())
}

func TestService_RevenueReport_BadGroup(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	s := service.New(repo, producer)

	_, err := s.RevenueReport(context.Background(), entity.RevenueGroup("week"))
	require.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestService_CreateCustomer_Invalid(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	s := service.New(repo, producer)

	_, err := s.CreateCustomer(context.Background(), entity.Customer{Email: "a@b.c"})
	require.ErrorIs(t, err, entity.ErrInvalidArgument)
}
