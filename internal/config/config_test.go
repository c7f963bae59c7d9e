package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_SSLMODE", "SQLITE_PATH", "JWT_SECRET", "TOKEN_TTL_MINUTES", "UPLOAD_DIR",
		"OPENAI_API_KEY", "DEEPSEEK_API_KEY", "OPENAI_BASE_URL", "DEEPSEEK_BASE_URL",
		"OPENAI_MODEL", "AI_REQUIRE_AUTH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 300*time.Minute, cfg.TokenTTL())
	assert.Equal(t, "deepseek-chat", cfg.OpenAIModel)
	assert.False(t, cfg.AIRequireAuth)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := []byte(`
db_driver: postgres
db_host: db.internal
db_port: 6543
db_name: tasks
jwt_secret: from-file
ai_require_auth: true
`)
	require.NoError(t, os.WriteFile(path, yml, 0o600))

	t.Setenv("DB_PORT", "7000")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 7000, cfg.DBPort)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.True(t, cfg.AIRequireAuth)
	assert.Contains(t, cfg.ConnString(), "host=db.internal port=7000")
	assert.Contains(t, cfg.ConnString(), "dbname=tasks")
}

func TestLoadOpenAIFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_API_KEY", "ds-key")
	t.Setenv("DEEPSEEK_BASE_URL", "https://api.deepseek.com")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ds-key", cfg.OpenAIKey)
	assert.Equal(t, "https://api.deepseek.com", cfg.OpenAIBaseURL)

	t.Setenv("OPENAI_API_KEY", "oa-key")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "oa-key", cfg.OpenAIKey)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadBadIntKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_TTL_MINUTES", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.TokenTTLMinutes)
}

func TestSQLiteConnString(t *testing.T) {
	cfg := defaults()
	cfg.SQLitePath = "/tmp/x.db"
	assert.Equal(t, "file:/tmp/x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.ConnString())
}
