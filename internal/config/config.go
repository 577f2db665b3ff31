package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Hermes        HermesConfig        `yaml:"hermes"`
	Registry      RegistryConfig      `yaml:"registry"`
	Questionnaire QuestionnaireConfig `yaml:"questionnaire"`
	Intake        IntakeConfig        `yaml:"intake"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	MetricsPort    int      `yaml:"metrics_port"`
	AdminToken     string   `yaml:"admin_token"`
	RateLimit      int      `yaml:"rate_limit_per_minute"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "postgres" or "sqlite"
	URL    string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

// RegistryConfig points at the study backend that serves questionnaire
// catalogues. Empty URL disables remote loading.
type RegistryConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// QuestionnaireConfig selects the catalogue. Resolution order: registry
// (when configured), Path, built-in FACT-G.
type QuestionnaireConfig struct {
	Key  string `yaml:"key"`
	Path string `yaml:"path"`
}

type IntakeConfig struct {
	Enabled   bool `yaml:"enabled"`
	Workers   int  `yaml:"workers"`
	QueueSize int  `yaml:"queue_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) RegistryTimeout() time.Duration {
	return time.Duration(c.Registry.TimeoutMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           8700,
			MetricsPort:    8701,
			RateLimit:      120,
			AllowedOrigins: []string{"http://localhost:8081"},
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Registry: RegistryConfig{
			TimeoutMs: 10000,
		},
		Questionnaire: QuestionnaireConfig{
			Key: "FACT-G",
		},
		Intake: IntakeConfig{
			Enabled:   true,
			Workers:   4,
			QueueSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Intake.Workers < 1 {
		return fmt.Errorf("intake workers must be >= 1, got %d", c.Intake.Workers)
	}
	if c.Intake.QueueSize < 0 {
		return fmt.Errorf("intake queue size must be >= 0, got %d", c.Intake.QueueSize)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUALIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("QUALIS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("QUALIS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("QUALIS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("QUALIS_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("QUALIS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("QUALIS_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("QUALIS_REGISTRY_URL"); v != "" {
		cfg.Registry.URL = v
	}
	if v := os.Getenv("QUALIS_QUESTIONNAIRE_KEY"); v != "" {
		cfg.Questionnaire.Key = v
	}
	if v := os.Getenv("QUALIS_QUESTIONNAIRE_PATH"); v != "" {
		cfg.Questionnaire.Path = v
	}
	if v := os.Getenv("QUALIS_INTAKE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Intake.Enabled = b
		}
	}
	if v := os.Getenv("QUALIS_INTAKE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Intake.Workers = n
		}
	}
	if v := os.Getenv("QUALIS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QUALIS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
