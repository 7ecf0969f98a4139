package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the User-Agent sent when a links file is fetched over HTTP.
const DefaultUserAgent = "MovieLinks/2 (+https://github.com/Belphemur/MovieLinks)"

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	UserAgent             string `mapstructure:"user_agent"`
	LogLevel              string `mapstructure:"log_level"`
	Source                struct {
		Path     string `mapstructure:"path"`     // local file or http(s) URL
		Encoding string `mapstructure:"encoding"` // e.g. "windows-1252"; empty means UTF-8
		Entry    string `mapstructure:"entry"`    // file name looked up inside zip/rar archives
		Timeout  string `mapstructure:"timeout"`  // Go duration string for remote sources
	} `mapstructure:"source"`
	Database struct {
		Driver         string `mapstructure:"driver"`
		DSN            string `mapstructure:"dsn"` // overrides host/port/user/password/name
		Host           string `mapstructure:"host"`
		Port           int    `mapstructure:"port"`
		User           string `mapstructure:"user"`
		Password       string `mapstructure:"password"`
		Name           string `mapstructure:"name"`
		Table          string `mapstructure:"table"`
		ConnectTimeout string `mapstructure:"connect_timeout"`
	} `mapstructure:"database"`
	Import struct {
		Mode          string  `mapstructure:"mode"` // "insert" or "upsert"
		BatchSize     int     `mapstructure:"batch_size"`
		MaxErrorRatio float64 `mapstructure:"max_error_ratio"`
		DryRun        bool    `mapstructure:"dry_run"`
		LockFile      string  `mapstructure:"lock_file"`
		CreateTable   bool    `mapstructure:"create_table"`
	} `mapstructure:"import"`
	Retry struct {
		MaxAttempts int    `mapstructure:"max_attempts"`
		Delay       string `mapstructure:"delay"`
		MaxDelay    string `mapstructure:"max_delay"`
	} `mapstructure:"retry"`
	Ledger struct {
		Provider string `mapstructure:"provider"` // "none", "memory" or "redis"
		Size     int    `mapstructure:"size"`
		TTL      string `mapstructure:"ttl"`
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"ledger"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	}).With().Timestamp().Logger()
}

// Init loads the configuration, applies the log level and stores the result
// for GetUserAgent. configFile may be empty to use the default search paths.
func Init(configFile string) (*Config, error) {
	config, err := LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
	return config, nil
}

// LoadConfig reads configFile, or searches for config.yaml in "." and
// "./config" when configFile is empty. An explicit file must exist.
func LoadConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Environment variable support
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
// The database defaults are the ones the links table was originally loaded with.
func setDefaults() {
	viper.SetDefault("proxy_connection_string", "")
	viper.SetDefault("user_agent", DefaultUserAgent)
	viper.SetDefault("log_level", "info")

	viper.SetDefault("source.path", "data/links.csv")
	viper.SetDefault("source.encoding", "")
	viper.SetDefault("source.entry", "links.csv")
	viper.SetDefault("source.timeout", "60s")

	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.host", "127.0.0.1")
	viper.SetDefault("database.port", 33060)
	viper.SetDefault("database.user", "homestead")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.name", "hva_bigdata_indv_assignment")
	viper.SetDefault("database.table", "movielens_tmdb_imdb")
	viper.SetDefault("database.connect_timeout", "10s")

	viper.SetDefault("import.mode", "insert")
	viper.SetDefault("import.batch_size", 1)
	viper.SetDefault("import.max_error_ratio", 0.0)
	viper.SetDefault("import.dry_run", false)
	viper.SetDefault("import.lock_file", "")
	viper.SetDefault("import.create_table", false)

	viper.SetDefault("retry.max_attempts", 3)
	viper.SetDefault("retry.delay", "200ms")
	viper.SetDefault("retry.max_delay", "5s")

	viper.SetDefault("ledger.provider", "none")
	viper.SetDefault("ledger.size", 200000)
	viper.SetDefault("ledger.ttl", "24h")
	viper.SetDefault("ledger.redis.address", "")
	viper.SetDefault("ledger.redis.password", "")
	viper.SetDefault("ledger.redis.db", 0)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.address", "localhost")
	viper.SetDefault("metrics.port", 9090)

	viper.SetDefault("sentry.dsn", "")
	viper.SetDefault("sentry.environment", "production")
}

// GetUserAgent returns the configured User-Agent, or DefaultUserAgent before Init.
func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}

// ParseDuration parses a Go duration string, logging and returning fallback
// when the value is empty or invalid.
func ParseDuration(key, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}
