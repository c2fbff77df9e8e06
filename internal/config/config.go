package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Storage   StorageConfig   `yaml:"storage"`
	Samples   SamplesConfig   `yaml:"samples"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
}

// StorageConfig selects the slot backend. Only the fields of the selected
// driver are read.
type StorageConfig struct {
	// Driver is one of memory, file, sqlite, postgres, s3.
	Driver  string `yaml:"driver"`
	SlotKey string `yaml:"slot_key"`
	// Dir is the root directory of the file driver.
	Dir string `yaml:"dir"`
	// SQLitePath also holds the activity log, whatever the driver.
	SQLitePath  string   `yaml:"sqlite_path"`
	PostgresDSN string   `yaml:"postgres_dsn"`
	S3          S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type SamplesConfig struct {
	CollisionPolicy    string `yaml:"collision_policy"`
	LegacyLatestEdited bool   `yaml:"legacy_latest_edited"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Runtime bool `yaml:"runtime"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SlotKey:    "mero_samples",
			Dir:        "data",
			SQLitePath: "merobase.db",
		},
		Samples: SamplesConfig{
			CollisionPolicy: "reject",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}

	if path := os.Getenv("MEROBASE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) error {
		v := os.Getenv(name)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = b
		return nil
	}

	setString("MEROBASE_SERVER_HOST", &cfg.Server.Host)
	if portStr := os.Getenv("MEROBASE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid MEROBASE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	setString("MEROBASE_TRANSPORT_MODE", &cfg.Transport.Mode)

	setString("MEROBASE_STORAGE_DRIVER", &cfg.Storage.Driver)
	setString("MEROBASE_STORAGE_SLOT_KEY", &cfg.Storage.SlotKey)
	setString("MEROBASE_STORAGE_DIR", &cfg.Storage.Dir)
	setString("MEROBASE_DB_PATH", &cfg.Storage.SQLitePath)
	setString("MEROBASE_POSTGRES_DSN", &cfg.Storage.PostgresDSN)
	setString("MEROBASE_S3_BUCKET", &cfg.Storage.S3.Bucket)
	setString("MEROBASE_S3_REGION", &cfg.Storage.S3.Region)
	setString("MEROBASE_S3_PREFIX", &cfg.Storage.S3.Prefix)
	setString("MEROBASE_S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	if err := setBool("MEROBASE_S3_PATH_STYLE", &cfg.Storage.S3.PathStyle); err != nil {
		return err
	}

	setString("MEROBASE_COLLISION_POLICY", &cfg.Samples.CollisionPolicy)
	if err := setBool("MEROBASE_LEGACY_LATEST_EDITED", &cfg.Samples.LegacyLatestEdited); err != nil {
		return err
	}

	setString("MEROBASE_LOG_LEVEL", &cfg.Log.Level)
	setString("MEROBASE_LOG_PATH", &cfg.Log.Path)

	if err := setBool("MEROBASE_METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	return setBool("MEROBASE_METRICS_RUNTIME", &cfg.Metrics.Runtime)
}

// Validate checks the settings that would otherwise fail late at startup.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Storage.Driver {
	case "memory", "file", "sqlite":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage driver postgres requires postgres_dsn")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage driver s3 requires s3.bucket")
		}
	default:
		return fmt.Errorf("invalid storage driver %q", c.Storage.Driver)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
