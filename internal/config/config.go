package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

type Common struct {
	Log       logConfig       `yaml:"log"`
	Http      httpConfig      `yaml:"http"`
	Postgres  postgresConfig  `yaml:"postgres"`
	Directory directoryConfig `yaml:"directory"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type httpConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxRequestSize int64  `yaml:"max_request_size"`
}

type postgresConfig struct {
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Database           string `yaml:"database"`
	SSLMode            string `yaml:"ssl_mode"`
	ReadTimeout        int    `yaml:"read_timeout"`
	WriteTimeout       int    `yaml:"write_timeout"`
	MaxOpenConnections int    `yaml:"max_open_connections"`
}

func (c postgresConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.Database),
		sslMode,
	)
}

// SeedGroup is a group ensured to exist at boot
type SeedGroup struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description *string `yaml:"description,omitempty"`
}

type directoryConfig struct {
	SeedGroups []SeedGroup `yaml:"seed_groups"`
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Common: Common{
		Log: logConfig{
			Level:  "info",
			Format: "json",
		},
		Http: httpConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			MaxRequestSize: 5242880,
		},
		Postgres: postgresConfig{
			User:               "postgres",
			Password:           "postgres",
			Host:               "localhost",
			Port:               5432,
			Database:           "userdir",
			SSLMode:            "disable",
			ReadTimeout:        30,
			WriteTimeout:       30,
			MaxOpenConnections: 10,
		},
		Directory: directoryConfig{
			SeedGroups: nil,
		},
	},
}

// Load loads the configuration following proper precedence: defaults → config file → environment variables
func Load() {
	// Start with defaults
	_loaded = &defaultConfig

	configFile := os.Getenv("USERDIR_CONFIG_FILE")
	if configFile == "" {
		configFile = "userdir.yaml"
	}

	if err := LoadFromFile(configFile); err != nil {
		log.Printf("Failed to load config file %s: %v, using defaults", configFile, err)
	}

	// Apply environment variable overrides (highest priority)
	ApplyEnvOverrides()
}

func LoadDefault() {
	config := defaultConfig
	_loaded = &config
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := defaultConfig

	// Merge YAML values over defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	_loaded = &cfg
	return nil
}

// ApplyEnvOverrides overrides loaded configuration from environment variables
func ApplyEnvOverrides() {
	if _loaded == nil {
		LoadDefault()
	}
	config := *_loaded

	if dbHost := os.Getenv("USERDIR_DB_HOST"); dbHost != "" {
		config.Common.Postgres.Host = dbHost
	}
	if dbPort := os.Getenv("USERDIR_DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			config.Common.Postgres.Port = port
		}
	}
	if dbUser := os.Getenv("USERDIR_DB_USER"); dbUser != "" {
		config.Common.Postgres.User = dbUser
	}
	if dbPassword := os.Getenv("USERDIR_DB_PASSWORD"); dbPassword != "" {
		config.Common.Postgres.Password = dbPassword
	}
	if dbName := os.Getenv("USERDIR_DB_NAME"); dbName != "" {
		config.Common.Postgres.Database = dbName
	}
	if sslMode := os.Getenv("USERDIR_DB_SSL_MODE"); sslMode != "" {
		config.Common.Postgres.SSLMode = sslMode
	}

	if httpHost := os.Getenv("USERDIR_HTTP_HOST"); httpHost != "" {
		config.Common.Http.Host = httpHost
	}
	if httpPort := os.Getenv("USERDIR_HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			config.Common.Http.Port = port
		}
	}

	if logLevel := os.Getenv("USERDIR_LOG_LEVEL"); logLevel != "" {
		config.Common.Log.Level = logLevel
	}
	if logFormat := os.Getenv("USERDIR_LOG_FORMAT"); logFormat != "" {
		config.Common.Log.Format = logFormat
	}

	_loaded = &config
}

// Logger returns the logging configuration
func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

// Http returns the HTTP server configuration
func Http() httpConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Http
}

// Postgres returns the PostgreSQL configuration
func Postgres() postgresConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Postgres
}

// Directory returns the directory service configuration
func Directory() directoryConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Directory
}
