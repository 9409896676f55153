// Package config loads server configuration from an optional YAML file,
// a .env file and APP_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Event sink names.
const (
	SinkLog   = "log"
	SinkRedis = "redis"
	SinkKafka = "kafka"
)

type Config struct {
	Server struct {
		Addr string
	} `mapstructure:"server"`

	Database struct {
		Path string
	} `mapstructure:"database"`

	Log struct {
		Path   string
		Format string
		Level  string
	} `mapstructure:"log"`

	Auth struct {
		AdminUsername string        `mapstructure:"admin_username"`
		TokenTTL      time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	Events struct {
		Sinks          []string
		PublishTimeout time.Duration `mapstructure:"publish_timeout"`
	} `mapstructure:"events"`

	Redis struct {
		URL    string
		Prefix string
	} `mapstructure:"redis"`

	Kafka struct {
		Brokers []string
		Topic   string
		// Topics routes single events away from Topic, as "event=topic".
		Topics []string
	} `mapstructure:"kafka"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Lifts struct {
		RestoreOnClear bool `mapstructure:"restore_on_clear"`
	} `mapstructure:"lifts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.path", "zaloga.db")
	v.SetDefault("log.path", "")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("events.sinks", []string{SinkLog})
	v.SetDefault("events.publish_timeout", 2*time.Second)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.prefix", "zaloga")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "zaloga.inventory")
	v.SetDefault("kafka.topics", []string{})
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("lifts.restore_on_clear", true)
}

// Load reads the configuration. An empty path skips the config file; the
// defaults and the environment still apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("reading config file: %w", err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// LoadEnvFile loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c Config) Validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	for _, s := range c.Events.Sinks {
		switch s {
		case SinkLog, SinkRedis, SinkKafka:
		default:
			return fmt.Errorf("unknown event sink %q", s)
		}
	}
	if c.HasSink(SinkKafka) && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka sink needs at least one broker")
	}
	if _, err := c.KafkaTopics(); err != nil {
		return err
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}

// KafkaTopics parses kafka.topics into a map from event name to topic.
func (c Config) KafkaTopics() (map[string]string, error) {
	if len(c.Kafka.Topics) == 0 {
		return nil, nil
	}
	topics := make(map[string]string, len(c.Kafka.Topics))
	for _, entry := range c.Kafka.Topics {
		event, topic, ok := strings.Cut(entry, "=")
		event, topic = strings.TrimSpace(event), strings.TrimSpace(topic)
		if !ok || event == "" || topic == "" {
			return nil, fmt.Errorf("invalid kafka topic route %q, want event=topic", entry)
		}
		topics[event] = topic
	}
	return topics, nil
}

// HasSink reports whether the named event sink is enabled.
func (c Config) HasSink(name string) bool {
	for _, s := range c.Events.Sinks {
		if s == name {
			return true
		}
	}
	return false
}
