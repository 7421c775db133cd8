// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type GPTConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

type StripeConfig struct {
	SecretKey  string
	WebhookKey string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
	}
	DB       DBConfig
	Redis    RedisConfig
	GPT      GPTConfig
	Stripe   StripeConfig
	Telegram struct {
		Token string
	}
	Auth struct {
		JWTSecret string
	}
	Catalog struct {
		Seed bool
	}
	ShutdownTimeout time.Duration
}

// defaults doubles as the list of keys viper resolves from the environment:
// AutomaticEnv only answers for keys it already knows about.
var defaults = map[string]interface{}{
	"server.port":         "8080",
	"server.readtimeout":  15 * time.Second,
	"server.writetimeout": time.Duration(0),
	"db.host":             "localhost",
	"db.port":             "5432",
	"db.user":             "postgres",
	"db.password":         "postgres",
	"db.dbname":           "nutrition",
	"db.sslmode":          "disable",
	"db.maxopenconns":     20,
	"db.maxidleconns":     5,
	"db.connlifetime":     5 * time.Minute,
	"redis.addr":          "",
	"redis.password":      "",
	"redis.db":            0,
	"redis.ttl":           10 * time.Minute,
	"gpt.apikey":          "",
	"gpt.model":           "gpt-4o-mini",
	"gpt.baseurl":         "",
	"gpt.maxtokens":       1500,
	"stripe.secretkey":    "",
	"stripe.webhookkey":   "",
	"stripe.priceid":      "",
	"stripe.successurl":   "http://localhost:5173/profile?checkout=success",
	"stripe.cancelurl":    "http://localhost:5173/profile?checkout=cancel",
	"telegram.token":      "",
	"auth.jwtsecret":      "",
	"catalog.seed":        true,
	"shutdowntimeout":     10 * time.Second,
}

// Load reads config.{yaml,json} when present and lets every key be overridden
// from the environment (DB_HOST, GPT_API_KEY, ...).
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("$HOME/.nutrition-tracker")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv keeps the underscore-separated names used in deployment files
// (GPT_API_KEY rather than GPT_APIKEY).
func bindLegacyEnv(v *viper.Viper) {
	aliases := map[string]string{
		"db.dbname":         "DB_NAME",
		"db.sslmode":        "DB_SSL_MODE",
		"gpt.apikey":        "GPT_API_KEY",
		"gpt.baseurl":       "GPT_BASE_URL",
		"stripe.secretkey":  "STRIPE_SECRET_KEY",
		"stripe.webhookkey": "STRIPE_WEBHOOK_KEY",
		"stripe.priceid":    "STRIPE_PRICE_ID",
		"telegram.token":    "TELEGRAM_TOKEN",
		"auth.jwtsecret":    "JWT_SECRET",
		"server.port":       "PORT",
	}
	for key, env := range aliases {
		_ = v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtsecret (JWT_SECRET) is not configured")
	}
	if c.DB.Host == "" {
		return errors.New("db.host is not configured")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is not configured")
	}
	return nil
}

// ConnString builds the pgx connection string.
func (c DBConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.MaxOpenConns,
	)
}
