package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/yafafa-lodge/service-booking/pkg/config"
	"github.com/yafafa-lodge/service-booking/pkg/database"
)

// PaystackConfig holds Paystack-specific configuration.
type PaystackConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	Currency      string
	Timeout       time.Duration
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port                string
	AppEnv              string
	DBConfig            database.PostgresConfig
	JWTConfig           config.JWTConfig
	KafkaConfig         config.KafkaConfig
	PaystackConfig      PaystackConfig
	AdminEmails         []string
	CORSOrigins         []string
	WebhookMaxBodyBytes int64
	OTelEndpoint        string
}

// Load reads configuration from environment variables and returns a ServiceConfig.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("booking")
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper builds a ServiceConfig and checks that every required secret is present.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	v.SetDefault("DB_NAME", "yafafa")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("PAYSTACK_CURRENCY", "GHS")
	v.SetDefault("PAYSTACK_TIMEOUT", "10s")
	v.SetDefault("WEBHOOK_MAX_BODY_BYTES", 1<<20)

	cfg := &ServiceConfig{
		Port:                config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:              config.GetAppEnv(v),
		DBConfig:            config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:           config.LoadJWTConfig(v),
		KafkaConfig:         config.LoadKafkaConfig(v),
		PaystackConfig:      loadPaystackConfig(v),
		AdminEmails:         config.SplitList(v.GetString("ADMIN_EMAILS")),
		CORSOrigins:         config.SplitList(v.GetString("CORS_ORIGINS")),
		WebhookMaxBodyBytes: v.GetInt64("WEBHOOK_MAX_BODY_BYTES"),
		OTelEndpoint:        v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPaystackConfig extracts Paystack configuration from Viper. Paystack
// signs webhooks with the secret key unless a dedicated secret is set.
func loadPaystackConfig(v *viper.Viper) PaystackConfig {
	webhookSecret := v.GetString("PAYSTACK_WEBHOOK_SECRET")
	if webhookSecret == "" {
		webhookSecret = v.GetString("PAYSTACK_SECRET_KEY")
	}
	return PaystackConfig{
		BaseURL:       v.GetString("PAYSTACK_BASE_URL"),
		SecretKey:     v.GetString("PAYSTACK_SECRET_KEY"),
		WebhookSecret: webhookSecret,
		Currency:      v.GetString("PAYSTACK_CURRENCY"),
		Timeout:       v.GetDuration("PAYSTACK_TIMEOUT"),
	}
}

func (c *ServiceConfig) validate() error {
	var errs []error
	if c.PaystackConfig.SecretKey == "" {
		errs = append(errs, errors.New("PAYSTACK_SECRET_KEY is required"))
	}
	if c.PaystackConfig.WebhookSecret == "" {
		errs = append(errs, errors.New("PAYSTACK_WEBHOOK_SECRET is required"))
	}
	if c.PaystackConfig.Timeout <= 0 {
		errs = append(errs, errors.New("PAYSTACK_TIMEOUT must be positive"))
	}
	if c.JWTConfig.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DBConfig.URL == "" && c.DBConfig.DBName == "" {
		errs = append(errs, errors.New("DATABASE_URL or DB_NAME is required"))
	}
	if len(c.KafkaConfig.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if c.WebhookMaxBodyBytes <= 0 {
		errs = append(errs, errors.New("WEBHOOK_MAX_BODY_BYTES must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
