package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yafafa-lodge/service-booking/internal/testutil"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
)

func validCreateRequest(ref string) CreateBookingRequest {
	return CreateBookingRequest{
		GuestName:     "Ama Mensah",
		Room:          "Garden Room",
		Date:          "2026-03-10",
		Time:          "14:00",
		Phone:         "0240000000",
		CustomerEmail: "ama@example.com",
		Network:       "MTN",
		Amount:        150.5,
		TransactionID: ref,
	}
}

func TestCreateBooking(t *testing.T) {
	repo := testutil.NewMemoryBookingRepository()
	svc := NewBookingService(repo, zap.NewNop())

	dto, err := svc.CreateBooking(context.Background(), validCreateRequest("ref-1"))
	require.NoError(t, err)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, 150.5, dto.Amount)
	assert.Equal(t, "Garden Room", dto.RoomName)
	assert.Nil(t, dto.PaymentDate)

	_, err = svc.CreateBooking(context.Background(), validCreateRequest("ref-1"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, repo.Len())
}

func TestCreateBooking_MissingField(t *testing.T) {
	repo := testutil.NewMemoryBookingRepository()
	svc := NewBookingService(repo, zap.NewNop())

	req := validCreateRequest("")
	_, err := svc.CreateBooking(context.Background(), req)
	require.Error(t, err)

	var domErr *domain.DomainError
	require.True(t, errors.As(err, &domErr))
	assert.Contains(t, domErr.Fields, "transactionId")
	assert.Zero(t, repo.Writes())
}

func TestGetByReference_Ownership(t *testing.T) {
	repo := testutil.NewMemoryBookingRepository()
	svc := NewBookingService(repo, zap.NewNop())
	_, err := svc.CreateBooking(context.Background(), validCreateRequest("ref-1"))
	require.NoError(t, err)

	dto, err := svc.GetByReference(context.Background(), "ref-1", "AMA@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", dto.TransactionID)

	_, err = svc.GetByReference(context.Background(), "ref-1", "someone@example.com", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByReference(context.Background(), "ref-1", "admin@example.com", true)
	assert.NoError(t, err)
}

func TestCancelAndStats(t *testing.T) {
	repo := testutil.NewMemoryBookingRepository()
	svc := NewBookingService(repo, zap.NewNop())
	r := NewReconciler(repo, &testutil.RecordingPublisher{}, zap.NewNop())

	pending, err := svc.CreateBooking(context.Background(), validCreateRequest("ref-1"))
	require.NoError(t, err)
	_, err = r.Apply(context.Background(), SourceWebhook, roomTx("ref-2"))
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, 150.0, stats.Revenue)
	assert.Equal(t, int64(1), stats.ByStatus["pending"])
	assert.Equal(t, int64(1), stats.ByStatus["completed"])

	require.NoError(t, svc.Cancel(context.Background(), pending.ID))
	assert.ErrorIs(t, svc.Cancel(context.Background(), pending.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Cancel(context.Background(), uuid.New()), domain.ErrNotFound)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCancel_LogsCancelledBooking(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	repo := testutil.NewMemoryBookingRepository()
	svc := NewBookingService(repo, zap.New(core))

	created, err := svc.CreateBooking(context.Background(), validCreateRequest("ref-9"))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), created.ID))

	entries := logs.FilterMessage("booking cancelled").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ref-9", fields["transaction_id"])
	assert.Equal(t, "pending", fields["status"])
	assert.Zero(t, repo.Len())
}

func TestCancel_MissingBookingDoesNotWrite(t *testing.T) {
	repo := testutil.NewMemoryBookingRepository()
	svc := NewBookingService(repo, zap.NewNop())

	assert.ErrorIs(t, svc.Cancel(context.Background(), uuid.New()), domain.ErrNotFound)
	assert.Zero(t, repo.Writes())
}
