package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":15000}}`)
	sig := Sign(secret, body)

	assert.True(t, VerifySignature(secret, body, sig))
	assert.True(t, VerifySignature(secret, body, " "+sig+" "))

	tampered := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":99999}}`)
	assert.False(t, VerifySignature(secret, tampered, sig))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature(secret, body, ""))
	assert.False(t, VerifySignature("", body, Sign("", body)))
	assert.False(t, VerifySignature(secret, body, "zz-not-hex"))
}

func TestParseWebhookEvent(t *testing.T) {
	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref-1",
			"status": "success",
			"amount": 15000,
			"paid_at": "2026-10-14T09:30:00.000Z",
			"customer": {"email": "ama@example.com", "phone": null},
			"authorization": {"channel": "mobile_money", "provider": "mtn", "mobile_money_number": "0551234987"},
			"metadata": {"custom_fields": [{"variable_name": "room_booked", "value": "Garden View"}]}
		}
	}`)

	ev, err := ParseWebhookEvent(body)
	require.NoError(t, err)
	assert.True(t, ev.IsChargeSuccess())
	assert.True(t, ev.Data.Succeeded())
	assert.Equal(t, int64(15000), ev.Data.Amount)
	assert.Equal(t, "", ev.Data.Customer.Phone)

	room, ok := ev.Data.Metadata.Field("room_booked")
	assert.True(t, ok)
	assert.Equal(t, "Garden View", room)

	paidAt, ok := ev.Data.PaidTime()
	require.True(t, ok)
	assert.Equal(t, 2026, paidAt.Year())
}

func TestParseWebhookEvent_EmptyStringMetadata(t *testing.T) {
	ev, err := ParseWebhookEvent([]byte(`{"event":"transfer.success","data":{"metadata":""}}`))
	require.NoError(t, err)
	assert.False(t, ev.IsChargeSuccess())
	_, ok := ev.Data.Metadata.Field("room_booked")
	assert.False(t, ok)
}

func TestParseWebhookEvent_Malformed(t *testing.T) {
	_, err := ParseWebhookEvent([]byte(`{not json`))
	assert.Error(t, err)

	_, err = ParseWebhookEvent([]byte(`{"data":{}}`))
	assert.Error(t, err)
}

func TestParseWebhookEvent_MixedCustomFieldValues(t *testing.T) {
	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref-2",
			"metadata": {"custom_fields": [
				{"variable_name": "room_booked", "value": "Deluxe Suite"},
				{"variable_name": "nights", "value": 2},
				{"variable_name": "breakfast", "value": true},
				{"variable_name": "extras", "value": {"spa": true}},
				"not-an-object"
			]}
		}
	}`)

	ev, err := ParseWebhookEvent(body)
	require.NoError(t, err)

	room, ok := ev.Data.Metadata.Field("room_booked")
	assert.True(t, ok)
	assert.Equal(t, "Deluxe Suite", room)

	nights, ok := ev.Data.Metadata.Field("nights")
	assert.True(t, ok)
	assert.Equal(t, "2", nights)

	breakfast, ok := ev.Data.Metadata.Field("breakfast")
	assert.True(t, ok)
	assert.Equal(t, "true", breakfast)

	_, ok = ev.Data.Metadata.Field("extras")
	assert.False(t, ok)
	assert.Len(t, ev.Data.Metadata.CustomFields, 3)
}
