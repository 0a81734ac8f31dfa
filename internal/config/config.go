package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MongoDB       MongoDBConfig       `mapstructure:"mongodb"`
	Cassandra     CassandraConfig     `mapstructure:"cassandra"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MQTT          MQTTConfig          `mapstructure:"mqtt"`
	Stores        StoresConfig        `mapstructure:"stores"`
	Monitoring    MonitoringConfig    `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Postgres    PostgresConfig `mapstructure:"postgres"`
	TimescaleDB PostgresConfig `mapstructure:"timescaledb"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type CassandraConfig struct {
	Hosts       []string      `mapstructure:"hosts"`
	Keyspace    string        `mapstructure:"keyspace"`
	Consistency string        `mapstructure:"consistency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
	QoS      byte   `mapstructure:"qos"`
}

// StoresConfig holds settings shared by every store adapter
type StoresConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	BootstrapSchema bool          `mapstructure:"bootstrap_schema"`
}

type MonitoringConfig struct {
	MetricsPath string `mapstructure:"metrics_path"`
}

// Load initializes configuration from environment variables and config file.
// An explicit path takes precedence over ./config/config.yaml.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SENSER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Load config file if exists
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.dbname", "senser")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.timescaledb.host", "localhost")
	v.SetDefault("database.timescaledb.port", 5433)
	v.SetDefault("database.timescaledb.user", "timescale")
	v.SetDefault("database.timescaledb.dbname", "timescale")
	v.SetDefault("database.timescaledb.sslmode", "disable")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// MongoDB defaults
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "senser")
	v.SetDefault("mongodb.collection", "sensors")

	// Cassandra defaults
	v.SetDefault("cassandra.hosts", []string{"localhost"})
	v.SetDefault("cassandra.keyspace", "sensor")
	v.SetDefault("cassandra.consistency", "quorum")
	v.SetDefault("cassandra.timeout", "5s")

	// Elasticsearch defaults
	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.index", "sensors")

	// MQTT defaults
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic", "sensors/+/data")
	v.SetDefault("mqtt.client_id", "senser-ingest")
	v.SetDefault("mqtt.qos", 1)

	// Store defaults
	v.SetDefault("stores.timeout", "5s")
	v.SetDefault("stores.bootstrap_schema", true)

	// Monitoring defaults
	v.SetDefault("monitoring.metrics_path", "/metrics")
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", config.Server.Port)
	}
	if config.Database.Postgres.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if config.Database.TimescaleDB.Host == "" {
		return fmt.Errorf("timescaledb host is required")
	}
	if config.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if config.MongoDB.URI == "" {
		return fmt.Errorf("mongodb uri is required")
	}
	if len(config.Cassandra.Hosts) == 0 {
		return fmt.Errorf("at least one cassandra host is required")
	}
	if config.Cassandra.Keyspace == "" {
		return fmt.Errorf("cassandra keyspace is required")
	}
	if len(config.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("at least one elasticsearch address is required")
	}
	if config.Elasticsearch.Index == "" {
		return fmt.Errorf("elasticsearch index is required")
	}
	if config.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	if config.Stores.Timeout <= 0 {
		return fmt.Errorf("stores timeout must be positive")
	}
	return nil
}
