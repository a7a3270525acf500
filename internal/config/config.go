// Package config loads the application configuration from defaults, an
// optional yaml file, a .env file, environment variables, and command
// line flags, in increasing priority. Load happens before the logger
// exists, so messages produced while loading are buffered and flushed
// to zap once it is up.
package config

import (
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrDatabaseURLRequired = errors.New("database url is required")

type Config struct {
	Debug            bool     `yaml:"debug"`
	Host             string   `yaml:"host"`
	Port             string   `yaml:"port"`
	DatabaseURL      string   `yaml:"database_url"`
	MigrationSource  string   `yaml:"migration_source"`
	OtelCollectorUrl string   `yaml:"otel_collector_url"`
	AllowOrigins     []string `yaml:"allow_origins"`
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	return nil
}

// Log buffers messages emitted during Load until the zap logger is
// initialized.
type Log struct {
	entries []entry
}

type entry struct {
	level   zap.Field
	message string
	fields  []zap.Field
}

func (l *Log) info(message string, fields ...zap.Field) {
	l.entries = append(l.entries, entry{message: message, fields: fields})
}

func (l *Log) warn(message string, fields ...zap.Field) {
	l.entries = append(l.entries, entry{level: zap.Bool("warn", true), message: message, fields: fields})
}

func (l *Log) FlushToZap(logger *zap.Logger) {
	for _, e := range l.entries {
		if e.level.Key != "" {
			logger.Warn(e.message, e.fields...)
		} else {
			logger.Info(e.message, e.fields...)
		}
	}
	l.entries = nil
}

func defaultConfig() Config {
	return Config{
		Debug:           false,
		Host:            "localhost",
		Port:            "8080",
		MigrationSource: "file://internal/database/migrations",
		AllowOrigins:    []string{"http://localhost:3000"},
	}
}

func Load() (Config, *Log) {
	cfgLog := &Log{}

	cfg := defaultConfig()
	cfg = cfg.loadFromFile("config.yaml", cfgLog)
	cfg = cfg.loadFromEnv(cfgLog)
	cfg = cfg.loadFromFlags()

	return cfg, cfgLog
}

func (c Config) loadFromFile(path string, cfgLog *Log) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			cfgLog.warn("Failed to read config file", zap.String("path", path), zap.Error(err))
		}
		return c
	}

	if err := yaml.Unmarshal(raw, &c); err != nil {
		cfgLog.warn("Failed to parse config file, ignoring it", zap.String("path", path), zap.Error(err))
		return c
	}

	cfgLog.info("Loaded config file", zap.String("path", path))
	return c
}

func (c Config) loadFromEnv(cfgLog *Log) Config {
	if err := godotenv.Load(); err == nil {
		cfgLog.info("Loaded .env file")
	}

	if value := os.Getenv("DEBUG"); value != "" {
		c.Debug = value == "true" || value == "1"
	}
	if value := os.Getenv("HOST"); value != "" {
		c.Host = value
	}
	if value := os.Getenv("PORT"); value != "" {
		c.Port = value
	}
	if value := os.Getenv("DATABASE_URL"); value != "" {
		c.DatabaseURL = value
	}
	if value := os.Getenv("MIGRATION_SOURCE"); value != "" {
		c.MigrationSource = value
	}
	if value := os.Getenv("OTEL_COLLECTOR_URL"); value != "" {
		c.OtelCollectorUrl = value
	}
	if value := os.Getenv("ALLOW_ORIGINS"); value != "" {
		c.AllowOrigins = strings.Split(value, ",")
	}

	return c
}

func (c Config) loadFromFlags() Config {
	debug := flag.Bool("debug", c.Debug, "enable debug mode")
	host := flag.String("host", c.Host, "server host")
	port := flag.String("port", c.Port, "server port")
	databaseURL := flag.String("database_url", c.DatabaseURL, "database connection url")
	migrationSource := flag.String("migration_source", c.MigrationSource, "database migration source")
	otelCollectorUrl := flag.String("otel_collector_url", c.OtelCollectorUrl, "opentelemetry collector url")

	flag.Parse()

	c.Debug = *debug
	c.Host = *host
	c.Port = *port
	c.DatabaseURL = *databaseURL
	c.MigrationSource = *migrationSource
	c.OtelCollectorUrl = *otelCollectorUrl

	return c
}
