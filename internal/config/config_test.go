package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":8888", cfg.Forwarder.ListenAddr)
	assert.Equal(t, "http://podvis.default:8001/", cfg.Forwarder.TargetURL)
	assert.Equal(t, 5*time.Second, cfg.Forwarder.Timeout)
	assert.Equal(t, "podvis.notifications", cfg.Forwarder.NatsSubject)
	assert.Equal(t, ":8000", cfg.Listener.UIAddr)
	assert.Equal(t, ":8001", cfg.Listener.ReflectorAddr)
	assert.Equal(t, StoreMemory, cfg.Listener.Store)
	assert.Equal(t, []string{"localhost:2379"}, cfg.Etcd.Endpoints)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestInitConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "podvis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
forwarder:
  target_url: http://reflector.monitoring:8001/
  timeout: 750ms
listener:
  store: etcd
etcd:
  etcd_endpoints: ["etcd-0:2379", "etcd-1:2379"]
`), 0o600))
	t.Setenv("LOG_LOG_LEVEL", "debug")

	v := viper.New()
	require.NoError(t, InitConfig(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://reflector.monitoring:8001/", cfg.Forwarder.TargetURL)
	assert.Equal(t, 750*time.Millisecond, cfg.Forwarder.Timeout)
	assert.Equal(t, StoreEtcd, cfg.Listener.Store)
	assert.Equal(t, []string{"etcd-0:2379", "etcd-1:2379"}, cfg.Etcd.Endpoints)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestInitConfig_MissingExplicitFile(t *testing.T) {
	err := InitConfig(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Forwarder: ForwarderConfig{Timeout: time.Second},
			Listener:  ListenerConfig{Store: StoreMemory, ClientBuffer: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.Forwarder.Timeout = 0 }, wantErr: "forwarder.timeout"},
		{name: "unknown store", mutate: func(c *Config) { c.Listener.Store = "redis" }, wantErr: "listener.store"},
		{name: "no client buffer", mutate: func(c *Config) { c.Listener.ClientBuffer = 0 }, wantErr: "listener.client_buffer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
