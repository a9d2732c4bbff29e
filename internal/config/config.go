package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Retention RetentionConfig `mapstructure:"retention"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
}

type ServerConfig struct {
	Port           string          `mapstructure:"port"`
	Mode           string          `mapstructure:"mode"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
	BatchLimit     int             `mapstructure:"batch_limit"`
	BatchWorkers   int             `mapstructure:"batch_workers"`
}

// RateLimitConfig bounds requests per client IP on the write routes.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// DatabaseConfig selects the gorm driver. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
	LogLevel   string `mapstructure:"log_level"`
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// RedisConfig enables the report cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// NarrativeConfig points at an OpenAI-compatible chat completions endpoint.
// An empty APIKey disables the model and the plain summary is used instead.
type NarrativeConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
}

type RetentionConfig struct {
	Days     int           `mapstructure:"days"`
	Interval time.Duration `mapstructure:"interval"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type ScoringConfig struct {
	ThresholdsFile string `mapstructure:"thresholds_file"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit.requests", 60)
	v.SetDefault("server.rate_limit.window", time.Minute)
	v.SetDefault("server.batch_limit", 100)
	v.SetDefault("server.batch_workers", 4)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "mindmirror")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "mindmirror.db")
	v.SetDefault("database.log_level", "warn")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("narrative.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("narrative.model", "gpt-4o-mini")
	v.SetDefault("narrative.api_key", "")
	v.SetDefault("narrative.timeout", 30*time.Second)
	v.SetDefault("narrative.temperature", 0.2)

	v.SetDefault("retention.days", 365)
	v.SetDefault("retention.interval", 24*time.Hour)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "mindmirror")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("scoring.thresholds_file", "config/thresholds.yaml")
}

// Load reads the configuration without installing it globally or watching it.
func Load(projectRoot string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// e.g. MINDMIRROR_SERVER_PORT, MINDMIRROR_NARRATIVE_API_KEY
	v.SetEnvPrefix("MINDMIRROR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if !filepath.IsAbs(conf.Scoring.ThresholdsFile) {
		conf.Scoring.ThresholdsFile = filepath.Join(projectRoot, conf.Scoring.ThresholdsFile)
	}
	return &conf, v, nil
}

// Init loads the configuration into Conf and watches the file for changes.
// Settings read once at startup (port, database, thresholds) need a restart.
func Init(projectRoot string, log *zap.Logger) error {
	conf, v, err := Load(projectRoot)
	if err != nil {
		return err
	}
	Conf = conf

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		reloaded, _, err := Load(projectRoot)
		if err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		Conf = reloaded
	})

	log.Info("Configuration loaded successfully", zap.String("config_file", v.ConfigFileUsed()))
	return nil
}
