package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "Kollur", cfg.Demo.Authority)
	assert.Equal(t, StatusBackendFile, cfg.Demo.StatusBackend)
	assert.Equal(t, "logs/demo_status.log", cfg.Demo.StatusPath)
	assert.Equal(t, LedgerBackendMemory, cfg.Ledger.Backend)
	assert.Equal(t, "create_asset", cfg.Ledger.CreateFunction)
	assert.Equal(t, "custodian.demo.status", cfg.Kafka.StatusTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CUSTODIAN_ADDR", ":9090")
	t.Setenv("DEMO_STATUS_BACKEND", StatusBackendRedis)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_READ_TIMEOUT", "750ms")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 750*time.Millisecond, cfg.Redis.ReadTimeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Run("malformed integer", func(t *testing.T) {
		t.Setenv("REDIS_POOL_SIZE", "many")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "REDIS_POOL_SIZE")
	})

	t.Run("redis backend without url", func(t *testing.T) {
		t.Setenv("DEMO_STATUS_BACKEND", StatusBackendRedis)
		_, err := FromEnv()
		assert.ErrorContains(t, err, "REDIS_URL")
	})

	t.Run("unknown ledger backend", func(t *testing.T) {
		t.Setenv("LEDGER_BACKEND", "ethereum")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("fabric without network settings", func(t *testing.T) {
		t.Setenv("LEDGER_BACKEND", LedgerBackendFabric)
		_, err := FromEnv()
		assert.ErrorContains(t, err, "FABRIC_CHANNEL")
	})
}
