package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string   `mapstructure:"PORT"`
	Env               string   `mapstructure:"ENV"`
	DatabaseURL       string   `mapstructure:"DATABASE_URL"`
	DBMaxConns        int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret         string   `mapstructure:"JWT_SECRET"`
	JWTRefreshSecret  string   `mapstructure:"JWT_REFRESH_SECRET"`
	JWTExpiry         string   `mapstructure:"JWT_EXPIRY"`
	JWTRefreshExpiry  string   `mapstructure:"JWT_REFRESH_EXPIRY"`
	AutoActivateUsers bool     `mapstructure:"AUTO_ACTIVATE_USERS"`
	FrontendURL       string   `mapstructure:"FRONTEND_URL"`
	CORSOrigins       []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS      float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("JWT_SECRET", "dev-secret-change-in-production")
	v.SetDefault("JWT_REFRESH_SECRET", "dev-refresh-secret-change-in-production")
	v.SetDefault("JWT_EXPIRY", "1h")
	v.SetDefault("JWT_REFRESH_EXPIRY", "7d")
	v.SetDefault("AUTO_ACTIVATE_USERS", false)
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_REFRESH_SECRET")
	v.BindEnv("JWT_EXPIRY")
	v.BindEnv("JWT_REFRESH_EXPIRY")
	v.BindEnv("AUTO_ACTIVATE_USERS")
	v.BindEnv("FRONTEND_URL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AccessTTL returns the access-token lifetime parsed from JWT_EXPIRY.
func (c *Config) AccessTTL() (time.Duration, error) {
	return ParseTTL(c.JWTExpiry)
}

// RefreshTTL returns the refresh-token lifetime parsed from JWT_REFRESH_EXPIRY.
func (c *Config) RefreshTTL() (time.Duration, error) {
	return ParseTTL(c.JWTRefreshExpiry)
}

// ParseTTL parses a token lifetime string. On top of Go duration syntax
// ("1h", "30m") it accepts a day suffix ("7d"), since refresh lifetimes are
// conventionally configured in days.
func ParseTTL(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid TTL %q: %w", s, err)
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL %q: %w", s, err)
	}
	return d, nil
}

// Validate checks that the configuration is safe to run. The two signing
// secrets must always be distinct. In production both must be set to
// non-default values and auto-activation of registered users is refused
// outright.
func (c *Config) Validate() error {
	if _, err := c.AccessTTL(); err != nil {
		return fmt.Errorf("JWT_EXPIRY: %w", err)
	}
	if _, err := c.RefreshTTL(); err != nil {
		return fmt.Errorf("JWT_REFRESH_EXPIRY: %w", err)
	}

	if c.JWTSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must be distinct")
	}

	if c.IsProduction() {
		if c.JWTSecret == "" || strings.HasPrefix(c.JWTSecret, "dev-") {
			return fmt.Errorf("JWT_SECRET must be set to a non-default value in production")
		}
		if c.JWTRefreshSecret == "" || strings.HasPrefix(c.JWTRefreshSecret, "dev-") {
			return fmt.Errorf("JWT_REFRESH_SECRET must be set to a non-default value in production")
		}
		if c.AutoActivateUsers {
			return fmt.Errorf("AUTO_ACTIVATE_USERS is not permitted in production")
		}
	}

	return nil
}
