package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreMongo, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "students", cfg.Mongo.StudentsCollection)
	assert.Equal(t, "scan_logs", cfg.Mongo.ScanLogsCollection)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 50, cfg.ScanLogs.DefaultLimit)
	assert.Equal(t, "admin", cfg.Admin.Username)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MONGODB_URL", "mongodb://db:27017")
	t.Setenv("DATABASE_NAME", "event")
	t.Setenv("COLLECTION_NAME", "attendees")
	t.Setenv("ADMIN_USERNAME", "operator")
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("SECRET_KEY", "k")
	t.Setenv("DEBUG", "true")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URL)
	assert.Equal(t, "event", cfg.Mongo.Database)
	assert.Equal(t, "attendees", cfg.Mongo.StudentsCollection)
	assert.Equal(t, "operator", cfg.Admin.Username)
	assert.Equal(t, "k", cfg.Session.Secret)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:     EnvDevelopment,
			Store:   StoreConfig{Driver: StoreMongo},
			Mongo:   MongoConfig{URL: "mongodb://localhost"},
			Session: SessionConfig{Store: SessionStoreMemory, Secret: defaultSecret},
			Admin:   AdminCredentials{Username: "admin", Password: "pw"},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Admin.Password = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Admin.Password = ""
	cfg.Admin.PasswordHash = "$2a$10$abc"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Env = EnvProduction
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Store.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Session.Store = "file"
	assert.Error(t, cfg.Validate())
}
