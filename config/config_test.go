package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GITHUB_USERNAME", "")
	t.Setenv("SYNC_EMPTY_POLICY", "")
	t.Setenv("PROJECTS_LIVE", "")
	t.Setenv("MAIL_HOST", "")
	t.Setenv("GITHUB_TIMEOUT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "Quadratic01", cfg.GitHub.Username)
	assert.Equal(t, 10*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, "keep", cfg.Sync.EmptyPolicy)
	assert.True(t, cfg.Sync.Live)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, []string{"*"}, cfg.Security.CORSAllowedOrigins)
	assert.Nil(t, cfg.Server.TrustedProxies)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GITHUB_USERNAME", "octocat")
	t.Setenv("GITHUB_TIMEOUT", "3s")
	t.Setenv("SYNC_CRON", "")
	t.Setenv("SYNC_EMPTY_POLICY", "replace")
	t.Setenv("PROJECTS_LIVE", "false")
	t.Setenv("MAIL_HOST", "smtp.gmail.com")
	t.Setenv("MAIL_FROM", "site@example.com")
	t.Setenv("MAIL_TO", "owner@example.com")
	t.Setenv("MAIL_USERNAME", "")
	t.Setenv("MAIL_PASSWORD", "")
	t.Setenv("GMAIL_APP_PASSWORD", "app-pass")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "octocat", cfg.GitHub.Username)
	assert.Equal(t, 3*time.Second, cfg.GitHub.Timeout)
	assert.Empty(t, cfg.Sync.Cron, "an explicitly empty SYNC_CRON disables the scheduler")
	assert.Equal(t, "replace", cfg.Sync.EmptyPolicy)
	assert.False(t, cfg.Sync.Live)
	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, "site@example.com", cfg.Mail.Username)
	assert.Equal(t, "app-pass", cfg.Mail.Password)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.TrustedProxies)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8080"},
			GitHub: GitHubConfig{Username: "someone", Timeout: time.Second},
			Sync:   SyncConfig{EmptyPolicy: "keep"},
			Security: SecurityConfig{
				ContactRatePerMin: 5,
			},
		}
	}

	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"missing port":     func(c *Config) { c.Server.Port = "" },
		"missing username": func(c *Config) { c.GitHub.Username = "" },
		"zero timeout":     func(c *Config) { c.GitHub.Timeout = 0 },
		"bad policy":       func(c *Config) { c.Sync.EmptyPolicy = "drop" },
		"zero rate":        func(c *Config) { c.Security.ContactRatePerMin = 0 },
		"mail without to":  func(c *Config) { c.Mail = MailConfig{Host: "smtp", From: "a@b.com"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
