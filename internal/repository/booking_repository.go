package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/yafafa-lodge/service-booking/internal/domain/booking"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
)

// BookingModel is the GORM persistence model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	GuestName     string     `gorm:"type:varchar(255)"`
	CustomerEmail string     `gorm:"type:varchar(255);index"`
	Phone         string     `gorm:"type:varchar(50)"`
	RoomName      string     `gorm:"type:varchar(255);not null"`
	Date          string     `gorm:"type:varchar(50)"`
	Time          string     `gorm:"type:varchar(50)"`
	Network       string     `gorm:"type:varchar(50)"`
	Amount        float64    `gorm:"type:numeric(12,2);not null"`
	TransactionID string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentDate   *time.Time `gorm:"type:timestamptz"`
	CreatedAt     time.Time  `gorm:"type:timestamptz;not null;default:now();index"`
	UpdatedAt     time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// BookingRepositoryImpl is the GORM-based implementation of BookingRepository.
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// NewBookingRepository creates a new GORM-based booking repository.
// The *gorm.DB must be opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey.
func NewBookingRepository(db *gorm.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{db: db}
}

// FindByID retrieves a booking by its unique ID.
func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, domain.NewPersistenceError("find booking", err)
	}
	return toDomain(&model), nil
}

// FindByTransactionID retrieves the booking for a gateway reference.
func (r *BookingRepositoryImpl) FindByTransactionID(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, domain.NewPersistenceError("find booking by reference", err)
	}
	return toDomain(&model), nil
}

// ListAll retrieves every booking, newest first.
func (r *BookingRepositoryImpl) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, domain.NewPersistenceError("list bookings", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomain(&models[i])
	}
	return bookings, nil
}

// GetRevenueStats returns booking statistics (admin).
func (r *BookingRepositoryImpl) GetRevenueStats(ctx context.Context) (int64, map[string]int64, error) {
	// Revenue from completed bookings, summed in major units
	var revenue float64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("status = ?", string(bookingDomain.StatusCompleted)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&revenue).Error; err != nil {
		return 0, nil, domain.NewPersistenceError("sum revenue", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return 0, nil, domain.NewPersistenceError("count bookings", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return bookingDomain.MinorFromMajor(revenue), counts, nil
}

// Save persists a new booking.
func (r *BookingRepositoryImpl) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("booking with transaction " + b.TransactionID() + " already exists")
		}
		return domain.NewPersistenceError("save booking", err)
	}
	return nil
}

// CompleteByTransactionID is a conditional update: it only touches a row
// that is not yet completed, so concurrent confirmations change it once.
func (r *BookingRepositoryImpl) CompleteByTransactionID(ctx context.Context, reference string, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("transaction_id = ? AND status <> ?", reference, string(bookingDomain.StatusCompleted)).
		Updates(map[string]interface{}{
			"status":       string(bookingDomain.StatusCompleted),
			"payment_date": paidAt.UTC(),
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return false, domain.NewPersistenceError("complete booking", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a booking.
func (r *BookingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return domain.NewPersistenceError("delete booking", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", id.String())
	}
	return nil
}

// toDomain maps a BookingModel to the domain Booking aggregate.
func toDomain(model *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(
		model.ID,
		model.GuestName,
		model.CustomerEmail,
		model.Phone,
		model.RoomName,
		model.Date,
		model.Time,
		model.Network,
		bookingDomain.MinorFromMajor(model.Amount),
		model.TransactionID,
		bookingDomain.Status(model.Status),
		model.PaymentDate,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

// toModel maps a domain Booking aggregate to a BookingModel for persistence.
func toModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:            b.ID(),
		GuestName:     b.GuestName(),
		CustomerEmail: b.CustomerEmail(),
		Phone:         b.Phone(),
		RoomName:      b.RoomName(),
		Date:          b.Date(),
		Time:          b.Time(),
		Network:       b.Network(),
		Amount:        b.Amount(),
		TransactionID: b.TransactionID(),
		Status:        string(b.Status()),
		PaymentDate:   b.PaymentDate(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	}
}
