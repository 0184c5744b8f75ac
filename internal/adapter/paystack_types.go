package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Paystack transaction statuses and channels this service acts on.
const (
	TransactionStatusSuccess = "success"
	ChannelMobileMoney       = "mobile_money"
	EventChargeSuccess       = "charge.success"
)

// Transaction is the transaction object Paystack returns from verify and
// embeds in charge webhooks.
type Transaction struct {
	ID              int64         `json:"id"`
	Reference       string        `json:"reference"`
	Status          string        `json:"status"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	Channel         string        `json:"channel"`
	GatewayResponse string        `json:"gateway_response"`
	PaidAt          string        `json:"paid_at"`
	Customer        Customer      `json:"customer"`
	Authorization   Authorization `json:"authorization"`
	Metadata        Metadata      `json:"metadata"`
}

// Succeeded reports whether the gateway considers the charge successful.
func (t *Transaction) Succeeded() bool {
	return t.Status == TransactionStatusSuccess
}

// PaidTime parses paid_at. Paystack sends RFC 3339 with milliseconds, or null.
func (t *Transaction) PaidTime() (time.Time, bool) {
	if t.PaidAt == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, t.PaidAt)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Customer is the payer as Paystack reports it.
type Customer struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Authorization describes the payment instrument used.
type Authorization struct {
	Channel           string `json:"channel"`
	Provider          string `json:"provider"`
	MobileMoneyNumber string `json:"mobile_money_number"`
	Bank              string `json:"bank"`
}

// CustomField is one entry of metadata.custom_fields.
type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// UnmarshalJSON reads value as a string, number or boolean. Numbers keep
// their literal text so "2" and 2 yield the same field value.
func (f *CustomField) UnmarshalJSON(data []byte) error {
	var raw struct {
		DisplayName  string          `json:"display_name"`
		VariableName string          `json:"variable_name"`
		Value        json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value, err := scalarString(raw.Value)
	if err != nil {
		return err
	}
	*f = CustomField{DisplayName: raw.DisplayName, VariableName: raw.VariableName, Value: value}
	return nil
}

func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case '{', '[':
		return "", fmt.Errorf("custom field value is not a scalar: %s", raw)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
}

// Metadata is the metadata the client attached at initialization. Paystack
// echoes it back as an object, or as an empty string when none was sent.
type Metadata struct {
	CustomFields []CustomField `json:"custom_fields"`
}

// UnmarshalJSON accepts an object, an empty string, or null. Metadata is
// client-controlled, so a shape it cannot read is treated as empty and a
// custom field it cannot read is skipped, without failing the transaction.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	*m = Metadata{}
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var raw struct {
		CustomFields json.RawMessage `json:"custom_fields"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw.CustomFields, &entries); err != nil {
		return nil
	}
	for _, entry := range entries {
		var f CustomField
		if err := json.Unmarshal(entry, &f); err != nil {
			continue
		}
		m.CustomFields = append(m.CustomFields, f)
	}
	return nil
}

// Field returns the value of the custom field with the given variable name.
func (m Metadata) Field(variableName string) (string, bool) {
	for _, f := range m.CustomFields {
		if f.VariableName == variableName && f.Value != "" {
			return f.Value, true
		}
	}
	return "", false
}

// apiEnvelope is the common shape of every Paystack API response.
type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
