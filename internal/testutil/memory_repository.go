// Package testutil provides in-memory collaborators for unit tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yafafa-lodge/service-booking/internal/domain/booking"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
	"github.com/yafafa-lodge/service-booking/pkg/kafka"
)

// MemoryBookingRepository is a booking.BookingRepository backed by a map.
// Uniqueness of transaction IDs and the conditional completion mirror the
// PostgreSQL store.
type MemoryBookingRepository struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*booking.Booking
	byRef    map[string]uuid.UUID
	writes   int
	failWith error

	// StaleReads makes that many FindByTransactionID calls report not
	// found, simulating a reader that lost a race with a concurrent insert.
	StaleReads int
}

var _ booking.BookingRepository = (*MemoryBookingRepository)(nil)

// NewMemoryBookingRepository creates an empty repository.
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		byID:  make(map[uuid.UUID]*booking.Booking),
		byRef: make(map[string]uuid.UUID),
	}
}

// FailWith makes every subsequent call return err wrapped as a persistence error.
func (r *MemoryBookingRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

// Writes returns the number of successful mutations.
func (r *MemoryBookingRepository) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// Len returns the number of stored bookings.
func (r *MemoryBookingRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Seed stores b without counting it as a write.
func (r *MemoryBookingRepository) Seed(b *booking.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *b
	r.byID[b.ID()] = &c
	r.byRef[b.TransactionID()] = b.ID()
}

func (r *MemoryBookingRepository) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, domain.NewPersistenceError("find booking", r.failWith)
	}
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	c := *b
	return &c, nil
}

func (r *MemoryBookingRepository) FindByTransactionID(_ context.Context, reference string) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, domain.NewPersistenceError("find booking", r.failWith)
	}
	if r.StaleReads > 0 {
		r.StaleReads--
		return nil, domain.NewNotFoundError("booking", reference)
	}
	id, ok := r.byRef[reference]
	if !ok {
		return nil, domain.NewNotFoundError("booking", reference)
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *MemoryBookingRepository) ListAll(_ context.Context) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, domain.NewPersistenceError("list bookings", r.failWith)
	}
	out := make([]*booking.Booking, 0, len(r.byID))
	for _, b := range r.byID {
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	return out, nil
}

func (r *MemoryBookingRepository) GetRevenueStats(_ context.Context) (int64, map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return 0, nil, domain.NewPersistenceError("booking stats", r.failWith)
	}
	var revenue int64
	counts := make(map[string]int64)
	for _, b := range r.byID {
		counts[string(b.Status())]++
		if b.IsCompleted() {
			revenue += b.AmountMinor()
		}
	}
	return revenue, counts, nil
}

func (r *MemoryBookingRepository) Save(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return domain.NewPersistenceError("save booking", r.failWith)
	}
	if _, exists := r.byRef[b.TransactionID()]; exists {
		return domain.NewConflictError("booking with transaction " + b.TransactionID() + " already exists")
	}
	c := *b
	r.byID[b.ID()] = &c
	r.byRef[b.TransactionID()] = b.ID()
	r.writes++
	return nil
}

func (r *MemoryBookingRepository) CompleteByTransactionID(_ context.Context, reference string, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, domain.NewPersistenceError("complete booking", r.failWith)
	}
	id, ok := r.byRef[reference]
	if !ok {
		return false, nil
	}
	b := r.byID[id]
	if b.IsCompleted() {
		return false, nil
	}
	if err := b.Complete(paidAt); err != nil {
		return false, err
	}
	r.writes++
	return true, nil
}

func (r *MemoryBookingRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return domain.NewPersistenceError("delete booking", r.failWith)
	}
	b, ok := r.byID[id]
	if !ok {
		return domain.NewNotFoundError("booking", id.String())
	}
	delete(r.byRef, b.TransactionID())
	delete(r.byID, id)
	r.writes++
	return nil
}

// Published is one event captured by RecordingPublisher.
type Published struct {
	Topic string
	Event kafka.CloudEvent
}

// RecordingPublisher captures published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

// PublishEvent records the event, or returns Err when set.
func (p *RecordingPublisher) PublishEvent(_ context.Context, topic string, ce kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, Published{Topic: topic, Event: ce})
	return nil
}

// Events returns the events published so far, optionally filtered by type.
func (p *RecordingPublisher) Events(eventType string) []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Published
	for _, e := range p.events {
		if eventType == "" || e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
