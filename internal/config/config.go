// Package config loads the bridge settings from configs/config.yml and TOON_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port   string
	DBPath string

	LogLevel  string
	LogFormat string

	RequestTimeout time.Duration
	PollInterval   time.Duration
	PollKinds      []string

	SigningKey string
	TokenTTL   time.Duration

	MQTT    MQTT
	Metrics Metrics
}

type MQTT struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type Metrics struct {
	Enabled bool
	Path    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "toon.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("device.request_timeout", 8*time.Second)
	v.SetDefault("poll.interval", 10*time.Second)
	v.SetDefault("poll.kinds", []string{"thermostat", "powerusage", "water", "metertotals"})
	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "toon-bridge")
	v.SetDefault("mqtt.topic_prefix", "toon")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads the config file at path. With an empty path configs/config.yml
// is used when present and defaults apply otherwise.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TOON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Port:           v.GetString("port"),
		DBPath:         v.GetString("db.path"),
		LogLevel:       strings.ToLower(v.GetString("log.level")),
		LogFormat:      strings.ToLower(v.GetString("log.format")),
		RequestTimeout: v.GetDuration("device.request_timeout"),
		PollInterval:   v.GetDuration("poll.interval"),
		PollKinds:      v.GetStringSlice("poll.kinds"),
		SigningKey:     v.GetString("auth.signing_key"),
		TokenTTL:       v.GetDuration("auth.token_ttl"),
		MQTT: MQTT{
			Enabled:     v.GetBool("mqtt.enabled"),
			Broker:      v.GetString("mqtt.broker"),
			ClientID:    v.GetString("mqtt.client_id"),
			Username:    v.GetString("mqtt.username"),
			Password:    v.GetString("mqtt.password"),
			TopicPrefix: v.GetString("mqtt.topic_prefix"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("device.request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required when mqtt is enabled")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	return nil
}
