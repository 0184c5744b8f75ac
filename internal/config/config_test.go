package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("APP_ENV", "test")
	v.Set("SERVICE_PORT", "9090")
	v.Set("DATABASE_URL", "postgres://u:p@localhost:5432/yafafa?sslmode=disable")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092")
	v.Set("JWT_SECRET", "jwt-secret")
	v.Set("PAYSTACK_SECRET_KEY", "sk_test_123")
	v.Set("ADMIN_EMAILS", "admin@example.com, ops@example.com")
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(baseViper())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, "GHS", cfg.PaystackConfig.Currency)
	assert.Equal(t, "https://api.paystack.co", cfg.PaystackConfig.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.PaystackConfig.Timeout)
	assert.Equal(t, "sk_test_123", cfg.PaystackConfig.WebhookSecret, "webhook secret falls back to the secret key")
	assert.Equal(t, []string{"admin@example.com", "ops@example.com"}, cfg.AdminEmails)
	assert.Equal(t, int64(1<<20), cfg.WebhookMaxBodyBytes)
}

func TestFromViper_DedicatedWebhookSecret(t *testing.T) {
	v := baseViper()
	v.Set("PAYSTACK_WEBHOOK_SECRET", "whsec")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "whsec", cfg.PaystackConfig.WebhookSecret)
}

func TestFromViper_MissingSecrets(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{name: "jwt secret", unset: "JWT_SECRET", want: "JWT_SECRET is required"},
		{name: "paystack secret", unset: "PAYSTACK_SECRET_KEY", want: "PAYSTACK_SECRET_KEY is required"},
		{name: "kafka brokers", unset: "KAFKA_BROKERS", want: "KAFKA_BROKERS is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := baseViper()
			v.Set(tt.unset, "")

			_, err := FromViper(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
