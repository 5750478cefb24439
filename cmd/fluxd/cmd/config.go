package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configDir    = "config"
	dataDir      = "data"
	appTomlFile  = "app.toml"
	genesisFile  = "genesis.json"
	envPrefix    = "FLUXD"
	databaseName = "application"
)

// Config is the node configuration read from <home>/config/app.toml.
type Config struct {
	Fluxagg     FluxaggConfig     `mapstructure:"fluxagg"`
	API         APIConfig         `mapstructure:"api"`
	Access      AccessConfig      `mapstructure:"access"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Events      EventsConfig      `mapstructure:"events"`
}

// FluxaggConfig holds the identity of the aggregator.
type FluxaggConfig struct {
	// Authority is the owner allowed to run the owner-only operations.
	Authority string `mapstructure:"authority"`
	ChainID   string `mapstructure:"chain-id"`
}

// APIConfig configures the read gateway started by serve.
type APIConfig struct {
	Enable       bool     `mapstructure:"enable"`
	Address      string   `mapstructure:"address"`
	RateLimitRPS int      `mapstructure:"rate-limit-rps"`
	CORSOrigins  []string `mapstructure:"cors-origins"`
	JWTSecret    string   `mapstructure:"jwt-secret"`
	RequireAuth  bool     `mapstructure:"require-auth"`
}

// AccessConfig restricts who may read answers.
type AccessConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedReaders []string `mapstructure:"allowed-readers"`
}

// TelemetryConfig configures metrics and tracing.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	MetricsAddress string  `mapstructure:"metrics-address"`
	OTLPEndpoint   string  `mapstructure:"otlp-endpoint"`
	SampleRate     float64 `mapstructure:"sample-rate"`

	// StaleAfter is the answer age after which the health endpoints report
	// the feed as degraded.
	StaleAfter time.Duration `mapstructure:"stale-after"`
}

// MaintenanceConfig holds the cron schedules of background jobs run by serve.
// An empty schedule disables the job.
type MaintenanceConfig struct {
	InvariantSchedule    string `mapstructure:"invariant-schedule"`
	FundsRefreshSchedule string `mapstructure:"funds-refresh-schedule"`
}

// EventsConfig configures publication of committed events. Publication is
// off while MQTTBroker is empty.
type EventsConfig struct {
	MQTTBroker  string        `mapstructure:"mqtt-broker"`
	ClientID    string        `mapstructure:"client-id"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	TopicPrefix string        `mapstructure:"topic-prefix"`
	QoS         uint8         `mapstructure:"qos"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fluxagg.authority", "")
	v.SetDefault("fluxagg.chain-id", "")

	v.SetDefault("api.enable", true)
	v.SetDefault("api.address", "127.0.0.1:1318")
	v.SetDefault("api.rate-limit-rps", 100)
	v.SetDefault("api.cors-origins", []string{"http://localhost:3000"})
	v.SetDefault("api.jwt-secret", "")
	v.SetDefault("api.require-auth", false)

	v.SetDefault("access.enabled", false)
	v.SetDefault("access.allowed-readers", []string{})

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.metrics-address", "127.0.0.1:36660")
	v.SetDefault("telemetry.otlp-endpoint", "")
	v.SetDefault("telemetry.sample-rate", 0.1)
	v.SetDefault("telemetry.stale-after", "1h")

	v.SetDefault("maintenance.invariant-schedule", "@every 1m")
	v.SetDefault("maintenance.funds-refresh-schedule", "@every 5m")

	v.SetDefault("events.mqtt-broker", "")
	v.SetDefault("events.client-id", "fluxd")
	v.SetDefault("events.username", "")
	v.SetDefault("events.password", "")
	v.SetDefault("events.topic-prefix", "fluxagg/events")
	v.SetDefault("events.qos", 1)
	v.SetDefault("events.timeout", "5s")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func appTomlPath(home string) string {
	return filepath.Join(home, configDir, appTomlFile)
}

func genesisPath(home string) string {
	return filepath.Join(home, configDir, genesisFile)
}

// ReadConfig loads app.toml from home. A missing file yields the defaults
// with environment overrides applied.
func ReadConfig(home string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(appTomlPath(home))
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", appTomlPath(home), err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// WriteConfig writes the default configuration with the given overrides to
// app.toml under home.
func WriteConfig(home string, overrides map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Join(home, configDir), 0o755); err != nil {
		return err
	}

	v := viper.New()
	setDefaults(v)
	for key, value := range overrides {
		v.Set(key, value)
	}
	return v.WriteConfigAs(appTomlPath(home))
}
