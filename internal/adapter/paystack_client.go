package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/yafafa-lodge/service-booking/internal/domain/booking"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
)

// PaymentGateway is the Anti-Corruption Layer interface for the payment gateway.
type PaymentGateway interface {
	// InitializeCharge starts a mobile-money charge and returns the gateway's raw payload.
	InitializeCharge(ctx context.Context, email string, amountMajor float64, metadata json.RawMessage) (json.RawMessage, error)

	// VerifyTransaction fetches the final state of a transaction by reference.
	VerifyTransaction(ctx context.Context, reference string) (*Transaction, error)
}

// GatewayError is a non-2xx answer from the gateway. Body is kept untouched
// so it can be relayed to the caller.
type GatewayError struct {
	StatusCode int
	Body       []byte
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("paystack returned status %d", e.StatusCode)
}

// PaystackConfig configures a PaystackClient.
type PaystackConfig struct {
	BaseURL   string
	SecretKey string
	Currency  string
	Timeout   time.Duration
}

// PaystackClient talks to the Paystack REST API.
type PaystackClient struct {
	baseURL    string
	secretKey  string
	currency   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPaystackClient creates a PaystackClient with a bounded request timeout.
func NewPaystackClient(cfg PaystackConfig, logger *zap.Logger) *PaystackClient {
	return &PaystackClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:  cfg.SecretKey,
		currency:   cfg.Currency,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type initializeRequest struct {
	Email    string          `json:"email"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency,omitempty"`
	Channels []string        `json:"channels"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// InitializeCharge converts the amount to minor units and restricts the
// charge to mobile money. Metadata is forwarded as-is.
func (c *PaystackClient) InitializeCharge(ctx context.Context, email string, amountMajor float64, metadata json.RawMessage) (json.RawMessage, error) {
	ctx, span := otel.Tracer("paystack").Start(ctx, "paystack.initialize")
	defer span.End()

	reqBody := initializeRequest{
		Email:    email,
		Amount:   booking.MinorFromMajor(amountMajor),
		Currency: c.currency,
		Channels: []string{ChannelMobileMoney},
		Metadata: metadata,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal initialize request: %w", err)
	}
	span.SetAttributes(attribute.Int64("paystack.amount_minor", reqBody.Amount))

	body, err := c.do(ctx, http.MethodPost, "/transaction/initialize", payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "initialize failed")
		return nil, err
	}

	c.logger.Info("paystack charge initialized",
		zap.String("customer_email", email),
		zap.Int64("amount_minor", reqBody.Amount),
	)
	return json.RawMessage(body), nil
}

// VerifyTransaction calls the verify-by-reference endpoint. A transaction
// the gateway reports as anything but success is ErrVerificationFailed.
func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	ctx, span := otel.Tracer("paystack").Start(ctx, "paystack.verify")
	defer span.End()
	span.SetAttributes(attribute.String("paystack.reference", reference))

	body, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "verify failed")
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			switch gwErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				// Our credentials were refused; the payment itself is unknown.
				c.logger.Error("paystack rejected API credentials",
					zap.Int("status", gwErr.StatusCode),
					zap.String("reference", reference),
				)
				return nil, domain.NewGatewayUnavailableError(err)
			case http.StatusRequestTimeout, http.StatusTooManyRequests:
				return nil, domain.NewGatewayUnavailableError(err)
			}
			// Other 4xx: unknown or rejected reference, final for this payment.
			if gwErr.StatusCode < http.StatusInternalServerError {
				return nil, domain.NewVerificationFailedError(reference, "rejected")
			}
			return nil, domain.NewGatewayUnavailableError(err)
		}
		return nil, err
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.NewGatewayUnavailableError(fmt.Errorf("decode verify response: %w", err))
	}
	var tx Transaction
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &tx); err != nil {
			return nil, domain.NewGatewayUnavailableError(fmt.Errorf("decode transaction: %w", err))
		}
	}

	if !env.Status || !tx.Succeeded() {
		c.logger.Warn("paystack transaction not successful",
			zap.String("reference", reference),
			zap.String("status", tx.Status),
			zap.String("gateway_response", tx.GatewayResponse),
		)
		return nil, domain.NewVerificationFailedError(reference, tx.Status)
	}
	if tx.Reference == "" {
		tx.Reference = reference
	}
	return &tx, nil
}

// do performs an authenticated request. Transport failures and timeouts
// become ErrGatewayUnavailable; non-2xx answers become *GatewayError.
func (c *PaystackClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("paystack request failed", zap.String("path", path), zap.Error(err))
		return nil, domain.NewGatewayUnavailableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.NewGatewayUnavailableError(fmt.Errorf("read paystack response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("paystack returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}
