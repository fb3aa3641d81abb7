package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ecomcore/tokens/internal/common/constants"
	commonerrors "github.com/ecomcore/tokens/internal/common/errors"
)

// Config is loaded once at startup and treated as immutable afterwards.
// The signing key is required and validated here; there is deliberately
// no compiled-in fallback key.
type Config struct {
	HTTPPort    string `validate:"required,numeric"`
	DatabaseURL string `validate:"required"`

	SigningKey string `validate:"required,min=32"`
	Issuer     string `validate:"required"`
	Audience   string `validate:"required"`

	AccessTokenLifetimeDays  int `validate:"required,gt=0"`
	RefreshTokenLifetimeDays int `validate:"required,gt=0"`

	RequestTimeout time.Duration `validate:"required,gt=0"`

	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

// AccessTokenLifetime converts the configured day count to a duration.
func (c Config) AccessTokenLifetime() time.Duration {
	return time.Duration(c.AccessTokenLifetimeDays) * 24 * time.Hour
}

func (c Config) RefreshTokenLifetime() time.Duration {
	return time.Duration(c.RefreshTokenLifetimeDays) * 24 * time.Hour
}

func Load() (Config, error) {
	signingKey, err := mustEnv("TOKEN_SIGNING_KEY")
	if err != nil {
		return Config{}, err
	}

	if len(signingKey) < constants.SigningKeyMinLength {
		return Config{}, commonerrors.ErrInvalidSigningKey.WithCause(
			fmt.Errorf("got %d bytes", len(signingKey)))
	}

	issuer, err := mustEnv("TOKEN_ISSUER")
	if err != nil {
		return Config{}, err
	}

	audience, err := mustEnv("TOKEN_AUDIENCE")
	if err != nil {
		return Config{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:                 getEnv("TOKENS_HTTP_PORT", constants.DefaultTokensHTTPPort),
		DatabaseURL:              databaseURL,
		SigningKey:               signingKey,
		Issuer:                   issuer,
		Audience:                 audience,
		AccessTokenLifetimeDays:  getIntEnv("ACCESS_TOKEN_LIFETIME_DAYS", constants.DefaultAccessTokenLifetimeDays),
		RefreshTokenLifetimeDays: getIntEnv("REFRESH_TOKEN_LIFETIME_DAYS", constants.DefaultRefreshTokenLifetimeDays),
		RequestTimeout:           getDurationEnv("TOKENS_REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		CircuitBreakerThreshold:  int32(getIntEnv("TOKENS_CB_THRESHOLD", constants.DefaultCircuitBreakerThreshold)),
		CircuitBreakerTimeout:    getDurationEnv("TOKENS_CB_TIMEOUT", constants.DefaultCircuitBreakerTimeout),
		CircuitBreakerReset:      getDurationEnv("TOKENS_CB_RESET", constants.DefaultCircuitBreakerReset),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, commonerrors.ErrInvalidConfig.WithCause(err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("%s", key))
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
