package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, int64(10*1024*1024), cfg.Bulk.MaxFileBytes, "el límite de carga por defecto es 10 MB")
	assert.Equal(t, 3, cfg.Ledger.RetryMaxAttempts)
	assert.Equal(t, 20*time.Millisecond, cfg.Ledger.RetryBaseDelay)
	assert.False(t, cfg.Ledger.BlockNegativeStock)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 2*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, "fieldstock-api", cfg.DB.ApplicationName)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "memory")
	v.Set("DB_PORT", "6543")
	v.Set("BULK_WORKERS", "0")
	v.Set("BULK_ROWS_PER_SECOND", "2.5")
	v.Set("LEDGER_BLOCK_NEGATIVE_STOCK", "true")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("DB_LOCK_TIMEOUT_MS", "0")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 1, cfg.Bulk.Workers, "workers se normaliza a mínimo 1")
	assert.Equal(t, 2.5, cfg.Bulk.RowsPerSecond)
	assert.True(t, cfg.Ledger.BlockNegativeStock)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Zero(t, cfg.DB.LockTimeout)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "mongo")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "fieldstock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/fieldstock?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())
}
