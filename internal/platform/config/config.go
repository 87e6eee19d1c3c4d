package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	MigrationsPath     string
	JWTSecret          string
	JWTExpiryDuration  time.Duration
	JWTIssuer          string
	CORSAllowedOrigins []string

	// Owner of the organization-scoped accounts used by capital transfers
	OrganizationID string `validate:"required"`

	// Optional. When empty, rate limiting uses an in-memory store and repayments are only logged.
	RedisURL         string
	RepaymentChannel string
	RateLimit        string `validate:"required"`

	MaintenanceCron string `validate:"required"`

	Settlement SettlementConfig
}

// SettlementConfig holds the loan settlement rules chosen per deployment.
type SettlementConfig struct {
	RepaymentPriority          string `validate:"required,oneof=interest principal interest+principal"`
	ApplyChargesOnIssuance     bool
	DeductChargesFromPrincipal bool
	DisburseOnApproval         bool
}

// Policy converts the configuration into the domain settlement policy.
func (s SettlementConfig) Policy() domain.SettlementPolicy {
	return domain.SettlementPolicy{
		RepaymentPriority:          domain.RepaymentPriority(s.RepaymentPriority),
		ApplyChargesOnIssuance:     s.ApplyChargesOnIssuance,
		DeductChargesFromPrincipal: s.DeductChargesFromPrincipal,
		DisburseOnApproval:         s.DisburseOnApproval,
	}
}

// Validate checks the struct tags of the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "sacco-ledger")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("ORGANIZATION_ID", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REPAYMENT_CHANNEL", "sacco.repayments")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("MAINTENANCE_CRON", "0 1 * * *")
	v.SetDefault("REPAYMENT_PRIORITY", string(domain.PriorityInterest))
	v.SetDefault("CHARGES_APPLY_ON_ISSUANCE", true)
	v.SetDefault("CHARGES_DEDUCT_FROM_PRINCIPAL", true)
	v.SetDefault("DISBURSE_ON_APPROVAL", true)
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:        v.GetString("PGSQL_URL"),
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:     v.GetString("MIGRATIONS_PATH"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		OrganizationID:     v.GetString("ORGANIZATION_ID"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RedisURL:           v.GetString("REDIS_URL"),
		RepaymentChannel:   v.GetString("REPAYMENT_CHANNEL"),
		RateLimit:          v.GetString("RATE_LIMIT"),
		MaintenanceCron:    v.GetString("MAINTENANCE_CRON"),
		Settlement: SettlementConfig{
			RepaymentPriority:          v.GetString("REPAYMENT_PRIORITY"),
			ApplyChargesOnIssuance:     v.GetBool("CHARGES_APPLY_ON_ISSUANCE"),
			DeductChargesFromPrincipal: v.GetBool("CHARGES_DEDUCT_FROM_PRINCIPAL"),
			DisburseOnApproval:         v.GetBool("DISBURSE_ON_APPROVAL"),
		},
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	// Load JWT Expiry Duration (e.g., "60m", "1h")
	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	if cfg.IsProduction && cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList parses a comma separated environment value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
