package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string `mapstructure:"PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DBMaxConns        int    `mapstructure:"DB_MAX_CONNS"`
	JWTSecretRaw      string `mapstructure:"JWT_SECRET"`
	CORSOriginsRaw    string `mapstructure:"CORS_ORIGINS"`
	RequestTimeoutSec int    `mapstructure:"REQUEST_TIMEOUT_SEC"`
	CacheTTLSec       int    `mapstructure:"CACHE_TTL_SEC"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int    `mapstructure:"REDIS_DB"`
	DefaultOpens      string `mapstructure:"DEFAULT_OPENS"`
	DefaultCloses     string `mapstructure:"DEFAULT_CLOSES"`
	PublicRatePerMin  int    `mapstructure:"PUBLIC_RATE_PER_MIN"`
	// TrustedProxyHops is the number of proxies in front of the server that append to
	// X-Forwarded-For. 0 keys clients on the connection address.
	TrustedProxyHops  int    `mapstructure:"TRUSTED_PROXY_HOPS"`
	AppPublicURL      string `mapstructure:"APP_PUBLIC_URL"`
	// WhatsApp (AiSensy) for appointment reminders
	AiSensyAPIKey   string `mapstructure:"AISENSY_API_KEY"`
	AiSensyCampaign string `mapstructure:"AISENSY_CAMPAIGN"`
	AiSensyURL      string `mapstructure:"AISENSY_URL"`
	ReminderTZ      string `mapstructure:"REMINDER_TZ"`
	ReminderAPIKey  string `mapstructure:"REMINDER_API_KEY"`
	ReminderDays    int    `mapstructure:"REMINDER_DAYS_AHEAD"`

	JWTSecret   []byte   `mapstructure:"-"`
	CORSOrigins []string `mapstructure:"-"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "DB_MAX_CONNS", "JWT_SECRET", "CORS_ORIGINS",
	"REQUEST_TIMEOUT_SEC", "CACHE_TTL_SEC", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"DEFAULT_OPENS", "DEFAULT_CLOSES", "PUBLIC_RATE_PER_MIN", "TRUSTED_PROXY_HOPS", "APP_PUBLIC_URL",
	"AISENSY_API_KEY", "AISENSY_CAMPAIGN", "AISENSY_URL", "REMINDER_TZ",
	"REMINDER_API_KEY", "REMINDER_DAYS_AHEAD",
}

// devJWTSecret is only accepted outside production.
const devJWTSecret = "development-secret-min-32-chars-long!!"

// Load reads the environment and an optional .env file in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("REQUEST_TIMEOUT_SEC", 30)
	v.SetDefault("CACHE_TTL_SEC", 30)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DEFAULT_OPENS", "08:00")
	v.SetDefault("DEFAULT_CLOSES", "20:00")
	v.SetDefault("PUBLIC_RATE_PER_MIN", 30)
	v.SetDefault("TRUSTED_PROXY_HOPS", 0)
	v.SetDefault("AISENSY_URL", "https://backend.aisensy.com/campaign/t1/api/v2")
	v.SetDefault("REMINDER_TZ", "Europe/Madrid")
	v.SetDefault("REMINDER_DAYS_AHEAD", 1)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for _, o := range strings.Split(cfg.CORSOriginsRaw, ",") {
		if t := strings.TrimSpace(o); t != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, t)
		}
	}
	if len(cfg.JWTSecretRaw) < 32 {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		cfg.JWTSecretRaw = devJWTSecret
	}
	cfg.JWTSecret = []byte(cfg.JWTSecretRaw)
	if cfg.RequestTimeoutSec <= 0 {
		cfg.RequestTimeoutSec = 30
	}
	if cfg.TrustedProxyHops < 0 {
		cfg.TrustedProxyHops = 0
	}
	if cfg.CacheTTLSec <= 0 {
		cfg.CacheTTLSec = 30
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// WhatsAppEnabled reports whether reminders can be sent.
func (c *Config) WhatsAppEnabled() bool {
	return c.AiSensyAPIKey != "" && c.AiSensyCampaign != ""
}
