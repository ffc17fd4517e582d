package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

type Config struct {
	HTTPPort     string `env:"HTTP_PORT" envDefault:"8080"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES" envDefault:"2097152"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DBString    string `env:"DB_STRING"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"orders"`

	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaGroupID     string   `env:"KAFKA_GROUP_ID" envDefault:"orders-intake"`
	JSONTopic        string   `env:"ORDERS_JSON_TOPIC" envDefault:"orders-json"`
	XMLTopic         string   `env:"ORDERS_XML_TOPIC" envDefault:"orders-xml"`
	DeadLetterSuffix string   `env:"DEAD_LETTER_SUFFIX" envDefault:".dlq"`

	BatchSize int           `env:"CONSUMER_BATCH_SIZE" envDefault:"10"`
	BatchWait time.Duration `env:"CONSUMER_BATCH_WAIT" envDefault:"1s"`
	Workers   int           `env:"CONSUMER_WORKERS" envDefault:"4"`

	LogDevelopment bool `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

func LoadConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("env.Parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c Config) DeadLetterTopic(topic string) string {
	return topic + c.DeadLetterSuffix
}

func (c Config) validate() error {
	var problems []string

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBString == "" {
			problems = append(problems, "DB_STRING is required for the postgres store")
		}
	case StoreDriverRedis:
		if c.RedisAddr == "" {
			problems = append(problems, "REDIS_ADDR is required for the redis store")
		}
	case StoreDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if len(c.KafkaBrokers) == 0 {
		problems = append(problems, "KAFKA_BROKERS is required")
	}
	if c.JSONTopic == "" || c.XMLTopic == "" {
		problems = append(problems, "ORDERS_JSON_TOPIC and ORDERS_XML_TOPIC are required")
	}
	if c.JSONTopic == c.XMLTopic {
		problems = append(problems, "json and xml lanes need separate topics")
	}
	if c.DeadLetterSuffix == "" {
		problems = append(problems, "DEAD_LETTER_SUFFIX must not be empty")
	}
	if c.BatchSize < 1 {
		problems = append(problems, "CONSUMER_BATCH_SIZE must be >= 1")
	}
	if c.BatchWait <= 0 {
		problems = append(problems, "CONSUMER_BATCH_WAIT must be positive")
	}
	if c.Workers < 1 {
		problems = append(problems, "CONSUMER_WORKERS must be >= 1")
	}
	if c.MaxBodyBytes < 1 {
		problems = append(problems, "MAX_BODY_BYTES must be >= 1")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
