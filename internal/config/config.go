package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/wibank/ledger-core/internal/domain"
)

// Config holds all runtime configuration derived from environment variables.
type Config struct {
	HTTPPort               string
	JWTSecret              string
	JWTIssuer              string
	JWTAudience            string
	VerificationDelay      time.Duration
	VerificationInterval   time.Duration
	CheckClearingDelay     time.Duration
	SettlementInterval     time.Duration
	ReconciliationInterval time.Duration
	WelcomeBonusMicros     int64
	HistoryDefaultLimit    int
	PublicRateLimitRPS     int
	AuthRateLimitRPS       int
	IdempotencyTTL         time.Duration
	LogLevel               string
	SeedDemoAccount        bool
}

// Load reads environment variables using viper and returns a typed config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v, "port", "PORT", "LEDGER_PORT")
	bindEnv(v, "jwt_secret", "JWT_SECRET", "LEDGER_JWT_SECRET")
	bindEnv(v, "jwt_issuer", "JWT_ISSUER", "LEDGER_JWT_ISSUER")
	bindEnv(v, "jwt_audience", "JWT_AUDIENCE", "LEDGER_JWT_AUDIENCE")
	bindEnv(v, "verification_delay", "VERIFICATION_DELAY", "LEDGER_VERIFICATION_DELAY")
	bindEnv(v, "verification_interval", "VERIFICATION_POLL_INTERVAL", "LEDGER_VERIFICATION_POLL_INTERVAL")
	bindEnv(v, "check_clearing_delay", "CHECK_CLEARING_DELAY", "LEDGER_CHECK_CLEARING_DELAY")
	bindEnv(v, "settlement_interval", "SETTLEMENT_POLL_INTERVAL", "LEDGER_SETTLEMENT_POLL_INTERVAL")
	bindEnv(v, "reconciliation_interval", "RECONCILIATION_INTERVAL", "LEDGER_RECONCILIATION_INTERVAL")
	bindEnv(v, "welcome_bonus", "WELCOME_BONUS", "LEDGER_WELCOME_BONUS")
	bindEnv(v, "history_default_limit", "HISTORY_DEFAULT_LIMIT", "LEDGER_HISTORY_DEFAULT_LIMIT")
	bindEnv(v, "public_rate_limit_rps", "PUBLIC_RATE_LIMIT_RPS", "LEDGER_PUBLIC_RATE_LIMIT_RPS")
	bindEnv(v, "auth_rate_limit_rps", "AUTH_RATE_LIMIT_RPS", "LEDGER_AUTH_RATE_LIMIT_RPS")
	bindEnv(v, "idempotency_ttl", "IDEMPOTENCY_TTL", "LEDGER_IDEMPOTENCY_TTL")
	bindEnv(v, "log_level", "LOG_LEVEL", "LEDGER_LOG_LEVEL")
	bindEnv(v, "seed_demo_account", "SEED_DEMO_ACCOUNT", "LEDGER_SEED_DEMO_ACCOUNT")

	v.SetDefault("port", "8080")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "ledger-core")
	v.SetDefault("jwt_audience", "ledger-api")
	v.SetDefault("verification_delay", "5s")
	v.SetDefault("verification_interval", "1s")
	v.SetDefault("check_clearing_delay", "24h")
	v.SetDefault("settlement_interval", "10s")
	v.SetDefault("reconciliation_interval", "1h")
	v.SetDefault("welcome_bonus", "25.00")
	v.SetDefault("history_default_limit", 50)
	v.SetDefault("public_rate_limit_rps", 10)
	v.SetDefault("auth_rate_limit_rps", 100)
	v.SetDefault("idempotency_ttl", "24h")
	v.SetDefault("log_level", "info")
	v.SetDefault("seed_demo_account", false)

	verificationDelay, err := time.ParseDuration(v.GetString("verification_delay"))
	if err != nil {
		return nil, fmt.Errorf("invalid VERIFICATION_DELAY: %w", err)
	}
	verificationInterval, err := time.ParseDuration(v.GetString("verification_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid VERIFICATION_POLL_INTERVAL: %w", err)
	}
	clearingDelay, err := time.ParseDuration(v.GetString("check_clearing_delay"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECK_CLEARING_DELAY: %w", err)
	}
	settlementInterval, err := time.ParseDuration(v.GetString("settlement_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid SETTLEMENT_POLL_INTERVAL: %w", err)
	}
	reconciliationInterval, err := time.ParseDuration(v.GetString("reconciliation_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILIATION_INTERVAL: %w", err)
	}
	ttl, err := time.ParseDuration(v.GetString("idempotency_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}

	bonus, err := domain.ParseAmount(v.GetString("welcome_bonus"))
	if err != nil {
		return nil, fmt.Errorf("invalid WELCOME_BONUS: %w", err)
	}
	if bonus < 0 {
		return nil, fmt.Errorf("WELCOME_BONUS must not be negative")
	}

	historyLimit := v.GetInt("history_default_limit")
	if historyLimit <= 0 {
		historyLimit = 50
	}

	cfg := &Config{
		HTTPPort:               v.GetString("port"),
		JWTSecret:              v.GetString("jwt_secret"),
		JWTIssuer:              v.GetString("jwt_issuer"),
		JWTAudience:            v.GetString("jwt_audience"),
		VerificationDelay:      verificationDelay,
		VerificationInterval:   verificationInterval,
		CheckClearingDelay:     clearingDelay,
		SettlementInterval:     settlementInterval,
		ReconciliationInterval: reconciliationInterval,
		WelcomeBonusMicros:     bonus,
		HistoryDefaultLimit:    historyLimit,
		PublicRateLimitRPS:     max(v.GetInt("public_rate_limit_rps"), 1),
		AuthRateLimitRPS:       max(v.GetInt("auth_rate_limit_rps"), 1),
		IdempotencyTTL:         ttl,
		LogLevel:               v.GetString("log_level"),
		SeedDemoAccount:        v.GetBool("seed_demo_account"),
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if strings.TrimSpace(cfg.JWTIssuer) == "" {
		return nil, fmt.Errorf("JWT_ISSUER is required")
	}
	if strings.TrimSpace(cfg.JWTAudience) == "" {
		return nil, fmt.Errorf("JWT_AUDIENCE is required")
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key string, names ...string) {
	args := append([]string{key}, names...)
	_ = v.BindEnv(args...)
}
