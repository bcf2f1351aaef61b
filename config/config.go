package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server   ServerConfig
	App      AppConfig
	GitHub   GitHubConfig
	Sync     SyncConfig
	Mail     MailConfig
	Redis    RedisConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port string
	// TrustedProxies may set X-Forwarded-For / X-Real-IP. Empty trusts none.
	TrustedProxies []string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
}

type GitHubConfig struct {
	Username string
	Token    string
	APIURL   string
	Timeout  time.Duration
}

type SyncConfig struct {
	// Cron is a seconds-enabled cron spec. Empty disables the scheduler.
	Cron        string
	EmptyPolicy string
	// Live makes every project listing hit upstream.
	Live bool
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Enabled reports whether enough is set to send mail.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != "" && m.To != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	AdminToken         string
	CORSAllowedOrigins []string
	ContactRatePerMin  int
	ContactRateBurst   int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	mailFrom := getEnv("MAIL_FROM", "")
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES", nil),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		GitHub: GitHubConfig{
			Username: getEnv("GITHUB_USERNAME", "Quadratic01"),
			Token:    getEnv("GITHUB_TOKEN", ""),
			APIURL:   getEnv("GITHUB_API_URL", "https://api.github.com"),
			Timeout:  getEnvAsDuration("GITHUB_TIMEOUT", 10*time.Second),
		},
		Sync: SyncConfig{
			Cron:        lookupEnv("SYNC_CRON", "0 */30 * * * *"),
			EmptyPolicy: getEnv("SYNC_EMPTY_POLICY", "keep"),
			Live:        getEnvAsBool("PROJECTS_LIVE", true),
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_HOST", ""),
			Port:     getEnvAsInt("MAIL_PORT", 587),
			Username: getEnv("MAIL_USERNAME", mailFrom),
			Password: getEnv("MAIL_PASSWORD", getEnv("GMAIL_APP_PASSWORD", "")),
			From:     mailFrom,
			To:       getEnv("MAIL_TO", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Security: SecurityConfig{
			AdminToken:         getEnv("ADMIN_TOKEN", ""),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ContactRatePerMin:  getEnvAsInt("CONTACT_RATE_PER_MIN", 5),
			ContactRateBurst:   getEnvAsInt("CONTACT_RATE_BURST", 3),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.GitHub.Username == "" {
		return fmt.Errorf("GITHUB_USERNAME is required")
	}

	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("GITHUB_TIMEOUT must be positive")
	}

	switch c.Sync.EmptyPolicy {
	case "keep", "replace":
	default:
		return fmt.Errorf("SYNC_EMPTY_POLICY must be keep or replace, got %q", c.Sync.EmptyPolicy)
	}

	if c.Security.ContactRatePerMin <= 0 {
		return fmt.Errorf("CONTACT_RATE_PER_MIN must be positive")
	}

	if c.Mail.Host != "" && (c.Mail.From == "" || c.Mail.To == "") {
		return fmt.Errorf("MAIL_FROM and MAIL_TO are required when MAIL_HOST is set")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is like getEnv but honours a variable that is set to "".
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Bool("default", defaultValue).Msg("invalid boolean, using default")
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Dur("default", defaultValue).Msg("invalid duration, using default")
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
