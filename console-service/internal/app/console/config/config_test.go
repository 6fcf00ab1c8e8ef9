package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5050/api", cfg.API.BaseURL)
	assert.Equal(t, BackendRemote, cfg.Store.Backend)
	assert.False(t, cfg.Store.LastWriterWins)
	assert.Equal(t, SessionFile, cfg.Session.Backend)
	assert.Equal(t, "0.0.0.0:8090", cfg.Server.Address())
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://inventory.example.com/api/")
	t.Setenv("BACKEND_MODE", "mock")
	t.Setenv("MOCK_LATENCY_MS", "250")
	t.Setenv("STORE_LAST_WRITER_WINS", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://inventory.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, BackendMock, cfg.Store.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.MockLatency)
	assert.True(t, cfg.Store.LastWriterWins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("BACKEND_MODE", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "console", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=console sslmode=disable", c.DSN())
}
