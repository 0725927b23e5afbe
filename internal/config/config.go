// Package config loads typed runtime configuration from the environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every tunable the process reads at startup.
type Config struct {
	Env         string  `mapstructure:"APP_ENV"`
	Port        string  `mapstructure:"APP_PORT"`
	DatabaseURL string  `mapstructure:"DATABASE_URL"`
	JWTSecret   string  `mapstructure:"JWT_SECRET"`
	Currency    string  `mapstructure:"CURRENCY"`
	MetricsOn   bool    `mapstructure:"METRICS_ENABLED"`

	// TaxRate is the deployment-wide sales tax applied to every checkout.
	TaxRate float64 `mapstructure:"TAX_RATE"`

	// PointsDivisor converts a sale total into loyalty points by floor
	// division. Must be positive.
	PointsDivisor int `mapstructure:"POINTS_DIVISOR"`
}

// Load reads configuration from environment variables. Callers are expected
// to have loaded any .env file (godotenv) before calling Load.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("CURRENCY", "ZMW")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("TAX_RATE", 0.17)
	v.SetDefault("POINTS_DIVISOR", 100)

	// Bind explicitly so AutomaticEnv sees keys that have no default.
	for _, key := range []string{"APP_ENV", "APP_PORT", "DATABASE_URL", "JWT_SECRET", "CURRENCY", "METRICS_ENABLED", "TAX_RATE", "POINTS_DIVISOR"} {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DatabaseURL == "" {
		return c, fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return c, fmt.Errorf("JWT_SECRET is required")
	}
	if c.TaxRate < 0 {
		return c, fmt.Errorf("TAX_RATE must not be negative")
	}
	if c.PointsDivisor <= 0 {
		return c, fmt.Errorf("POINTS_DIVISOR must be positive")
	}
	return c, nil
}
