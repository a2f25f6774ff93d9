package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		dbURL   string
		wantErr error
	}{
		{name: "secret key missing", dbURL: "sqlite://markaz.db", wantErr: ErrSecretKeyMissing},
		{name: "blank secret key", secret: "   ", dbURL: "sqlite://markaz.db", wantErr: ErrSecretKeyMissing},
		{name: "database url missing", secret: "s3cr3t", wantErr: ErrDatabaseURLMissing},
		{name: "valid", secret: "s3cr3t", dbURL: "postgres://u:p@localhost/markaz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "TEST")
			t.Setenv("SECRET_KEY", tt.secret)
			t.Setenv("DATABASE_URL", tt.dbURL)

			conf, err := NewConfig()
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.Nil(t, conf)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.secret, conf.SecretKey)
			assert.Equal(t, tt.dbURL, conf.Database.URL)
			assert.True(t, conf.TestMode)
			assert.False(t, conf.Debug)
		})
	}
}

func TestNewConfig_overrides(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("SECRET_KEY", "s3cr3t")
	t.Setenv("DATABASE_URL", "sqlite://markaz.db")
	t.Setenv("ADDR", ":9000")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")

	conf, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "PROD", conf.Env)
	assert.Equal(t, ":9000", conf.Server.Addr)
	assert.Equal(t, 30*time.Second, conf.Server.ShutdownTimeout)
	assert.Equal(t, 25, conf.Database.MaxOpenConns)
	assert.Equal(t, "Markaz", conf.AppName)
}
