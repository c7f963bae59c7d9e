package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`
	SQLitePath string `yaml:"sqlite_path"`

	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`

	UploadDir string `yaml:"upload_dir"`

	OpenAIKey     string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
	AIRequireAuth bool   `yaml:"ai_require_auth"`
}

// DefaultJWTSecret is only meant for local runs; serve warns when it is in use.
const DefaultJWTSecret = "SUPER_SECRET_KEY_CHANGE_ME"

func defaults() *Config {
	return &Config{
		HTTPAddr:        ":8000",
		DBDriver:        DriverSQLite,
		DBHost:          "localhost",
		DBPort:          5432,
		DBSSLMode:       "disable",
		SQLitePath:      "./sql_app.db",
		JWTSecret:       DefaultJWTSecret,
		TokenTTLMinutes: 300,
		UploadDir:       "static/avatars",
		OpenAIModel:     "deepseek-chat",
	}
}

// Load builds the config from defaults, then the YAML file at path (if any),
// then environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(c *Config) {
	setString(&c.HTTPAddr, "HTTP_ADDR")

	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DBHost, "DB_HOST")
	setInt(&c.DBPort, "DB_PORT")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")
	setString(&c.DBSSLMode, "DB_SSLMODE")
	setString(&c.SQLitePath, "SQLITE_PATH")

	setString(&c.JWTSecret, "JWT_SECRET")
	setInt(&c.TokenTTLMinutes, "TOKEN_TTL_MINUTES")

	setString(&c.UploadDir, "UPLOAD_DIR")

	// DeepSeek speaks the OpenAI protocol, so its variables are accepted as fallbacks.
	setString(&c.OpenAIKey, "DEEPSEEK_API_KEY")
	setString(&c.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIBaseURL, "DEEPSEEK_BASE_URL")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.OpenAIModel, "OPENAI_MODEL")

	if v, ok := os.LookupEnv("AI_REQUIRE_AUTH"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.AIRequireAuth = b
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return // keep previous value
	}
	*dst = n
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported db driver %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("config: jwt secret is empty")
	}
	if c.TokenTTLMinutes <= 0 {
		return errors.New("config: token ttl must be positive")
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c *Config) ConnString() string {
	if c.DBDriver == DriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", c.SQLitePath)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
