package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ForwarderConfig holds the classifier/forwarder settings.
type ForwarderConfig struct {
	ListenAddr  string        `mapstructure:"listen_addr"`
	TargetURL   string        `mapstructure:"target_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	NatsURL     string        `mapstructure:"nats_url"`
	NatsSubject string        `mapstructure:"nats_subject"`
}

// ListenerConfig holds the visualization listener settings.
type ListenerConfig struct {
	UIAddr         string   `mapstructure:"ui_addr"`
	ReflectorAddr  string   `mapstructure:"reflector_addr"`
	ClientBuffer   int      `mapstructure:"client_buffer"`
	NatsURL        string   `mapstructure:"nats_url"`
	NatsSubject    string   `mapstructure:"nats_subject"`
	Store          string   `mapstructure:"store"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"log_level"`
}

// EtcdConfig holds etcd-related configuration.
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"etcd_endpoints"`
	PathPrefix  string        `mapstructure:"etcd_path_prefix"`
	DialTimeout time.Duration `mapstructure:"etcd_dial_timeout"`
}

// TelemetryConfig holds tracing configuration.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Config is the top-level configuration struct.
type Config struct {
	Forwarder ForwarderConfig `mapstructure:"forwarder"`
	Listener  ListenerConfig  `mapstructure:"listener"`
	Logging   LoggingConfig   `mapstructure:"log"`
	Etcd      EtcdConfig      `mapstructure:"etcd"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

const (
	StoreMemory = "memory"
	StoreEtcd   = "etcd"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("forwarder.listen_addr", ":8888")
	v.SetDefault("forwarder.target_url", "http://podvis.default:8001/")
	v.SetDefault("forwarder.timeout", 5*time.Second)
	v.SetDefault("forwarder.nats_url", "")
	v.SetDefault("forwarder.nats_subject", "podvis.notifications")
	v.SetDefault("listener.ui_addr", ":8000")
	v.SetDefault("listener.reflector_addr", ":8001")
	v.SetDefault("listener.client_buffer", 16)
	v.SetDefault("listener.nats_url", "")
	v.SetDefault("listener.nats_subject", "podvis.notifications")
	v.SetDefault("listener.store", StoreMemory)
	v.SetDefault("listener.allowed_origins", []string{"*"})
	v.SetDefault("log.log_level", "INFO")
	v.SetDefault("etcd.etcd_endpoints", []string{"localhost:2379"})
	v.SetDefault("etcd.etcd_path_prefix", "/podvis")
	v.SetDefault("etcd.etcd_dial_timeout", 2*time.Second)
	v.SetDefault("telemetry.otlp_endpoint", "")
}

// InitConfig performs the initial configuration: setting defaults, specifying the config file, and reading it.
func InitConfig(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config") // Looks for config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the configuration into the Config struct.
func Load(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.Forwarder.Timeout <= 0 {
		return fmt.Errorf("forwarder.timeout must be positive, got %s", c.Forwarder.Timeout)
	}
	switch c.Listener.Store {
	case StoreMemory, StoreEtcd:
	default:
		return fmt.Errorf("unsupported listener.store %q", c.Listener.Store)
	}
	if c.Listener.ClientBuffer < 1 {
		return fmt.Errorf("listener.client_buffer must be at least 1, got %d", c.Listener.ClientBuffer)
	}
	return nil
}
