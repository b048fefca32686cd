package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("QUEUE_BACKEND", "")
	t.Setenv("ACCESS_TTL", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "redis", cfg.QueueBackend)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.False(t, cfg.Production())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("ACCESS_TTL", "1h")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "Dean@College.EDU")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example/")
	t.Setenv("ROSTER_LINK_DOMAINS", "college.edu")

	cfg := Load()

	assert.True(t, cfg.Production())
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "dean@college.edu", cfg.BootstrapAdminEmail)
	assert.Equal(t, "https://api.example", cfg.PublicBaseURL)
	assert.Equal(t, []string{"college.edu"}, cfg.RosterLinkDomains)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("ACCESS_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "many")
	t.Setenv("MIGRATE_ON_START", "maybe")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 240, cfg.RateLimitPerMin)
	assert.True(t, cfg.MigrateOnStart)
}

func TestCloudinaryEnabled(t *testing.T) {
	cfg := App{CloudinaryCloudName: "demo", CloudinaryAPIKey: "k"}
	assert.False(t, cfg.CloudinaryEnabled())
	cfg.CloudinaryAPISecret = "s"
	assert.True(t, cfg.CloudinaryEnabled())
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, App{Timezone: "Local"}.Location())
	assert.Equal(t, time.Local, App{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", App{Timezone: "UTC"}.Location().String())
}
