package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	ErrSecretKeyMissing   = errors.New("SECRET_KEY is not set")
	ErrDatabaseURLMissing = errors.New("DATABASE_URL is not set")
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugAddr       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		SessionMaxAge   time.Duration
	}

	DatabaseConfig struct {
		URL             string // postgres://… | sqlite://path
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}
)

// NewConfig loads the configuration from the environment.
// config/.env.<env> is loaded first if it exists (ENV defaults to DEV).
func NewConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.AutomaticEnv()

	// defaults
	v.SetDefault("app_name", "Markaz")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("addr", ":8000")
	v.SetDefault("debug_addr", "localhost:4000")
	v.SetDefault("read_timeout", 5*time.Second)
	v.SetDefault("write_timeout", 10*time.Second)
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("session_max_age", 7*24*time.Hour)
	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", 30*time.Minute)

	hostname, _ := os.Hostname()
	conf := &Config{
		AppName:      v.GetString("app_name"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     env == "TEST",
		SecretKey:    v.GetString("secret_key"),
		RollbarToken: v.GetString("rollbar_token"),
		Server: ServerConfig{
			Host:            hostname,
			Addr:            v.GetString("addr"),
			DebugAddr:       v.GetString("debug_addr"),
			ReadTimeout:     v.GetDuration("read_timeout"),
			WriteTimeout:    v.GetDuration("write_timeout"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
			SessionMaxAge:   v.GetDuration("session_max_age"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("database_url"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		},
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate fails fast on required settings; there are no insecure fallbacks.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return ErrSecretKeyMissing
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return ErrDatabaseURLMissing
	}
	return nil
}
