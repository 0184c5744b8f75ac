package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/yafafa-lodge/service-booking/internal/adapter"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
)

// FakeGateway is an adapter.PaymentGateway returning canned results.
type FakeGateway struct {
	mu sync.Mutex

	Transactions map[string]*adapter.Transaction
	VerifyErr    error
	InitPayload  json.RawMessage
	InitErr      error

	verifyCalls int
}

var _ adapter.PaymentGateway = (*FakeGateway)(nil)

func (g *FakeGateway) InitializeCharge(_ context.Context, _ string, _ float64, _ json.RawMessage) (json.RawMessage, error) {
	if g.InitErr != nil {
		return nil, g.InitErr
	}
	return g.InitPayload, nil
}

func (g *FakeGateway) VerifyTransaction(_ context.Context, reference string) (*adapter.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.VerifyErr != nil {
		return nil, g.VerifyErr
	}
	tx, ok := g.Transactions[reference]
	if !ok {
		return nil, domain.NewVerificationFailedError(reference, "not_found")
	}
	if !tx.Succeeded() {
		return nil, domain.NewVerificationFailedError(reference, tx.Status)
	}
	c := *tx
	return &c, nil
}

// VerifyCalls returns how many times VerifyTransaction ran.
func (g *FakeGateway) VerifyCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verifyCalls
}

// SuccessfulTransaction builds a successful mobile-money transaction.
func SuccessfulTransaction(reference, email string, amountMinor int64) *adapter.Transaction {
	tx := &adapter.Transaction{
		Reference: reference,
		Status:    adapter.TransactionStatusSuccess,
		Amount:    amountMinor,
		Currency:  "GHS",
		Channel:   adapter.ChannelMobileMoney,
		PaidAt:    "2026-03-01T10:15:00Z",
	}
	tx.Customer.Email = email
	tx.Authorization.Channel = adapter.ChannelMobileMoney
	tx.Authorization.Provider = "mtn"
	tx.Authorization.MobileMoneyNumber = "0241234567"
	return tx
}
