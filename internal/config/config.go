// Package config provides centralized configuration management for the
// service. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	GeoServer GeoServerConfig
	Tools     ToolsConfig
	Storage   StorageConfig
	Ingest    IngestConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body.
	// Uploads can be large, so the default is generous (default: 5m)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"5m"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown,
	// including draining in-flight ingestion pipelines (default: 60s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostGIS connection settings. The discrete fields are
// the source of truth because the bulk-load tools and the map-server
// datastore descriptor need them individually; the pool DSN is derived.
type DatabaseConfig struct {
	// Host is the database host (default: localhost)
	Host string `env:"DB_HOST" default:"localhost"`

	// Port is the database port (default: 5432)
	Port int `env:"DB_PORT" default:"5432"`

	// Name is the database name (required)
	Name string `env:"DB_NAME" required:"true"`

	// User is the database user (required)
	User string `env:"DB_USER" required:"true"`

	// Password is the database password
	Password string `env:"DB_PASSWORD" envAlt:"PGPASSWORD"`

	// Schema is the schema spatial tables are loaded into (default: public)
	Schema string `env:"DB_SCHEMA" default:"public"`

	// SSLMode is the connection sslmode parameter (default: disable)
	SSLMode string `env:"DB_SSLMODE" default:"disable"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// DSN returns the pool connection string assembled from the discrete fields.
func (c *DatabaseConfig) DSN() string {
	parts := []string{
		"host=" + c.Host,
		fmt.Sprintf("port=%d", c.Port),
		"dbname=" + c.Name,
		"user=" + c.User,
		"sslmode=" + c.SSLMode,
	}
	if c.Password != "" {
		parts = append(parts, "password="+c.Password)
	}
	return strings.Join(parts, " ")
}

// GeoServerConfig holds the map server's admin endpoint and credentials.
type GeoServerConfig struct {
	// BaseURL is the map server root, e.g. http://localhost:8081/geoserver (required)
	BaseURL string `env:"GEOSERVER_URL" required:"true"`

	// User is the admin user (default: admin)
	User string `env:"GEOSERVER_USER" default:"admin"`

	// Password is the admin password (required)
	Password string `env:"GEOSERVER_PASSWORD" required:"true"`

	// Workspace is the workspace all uploads publish into (default: geodata)
	Workspace string `env:"GEOSERVER_WORKSPACE" default:"geodata"`

	// PublicBaseURL is the externally reachable base used in catalog access
	// URLs; falls back to BaseURL when unset
	PublicBaseURL string `env:"GEOSERVER_PUBLIC_URL"`
}

// ToolsConfig holds the external command names or paths the pipelines
// invoke. Bare names are resolved through PATH.
type ToolsConfig struct {
	// OGRInfo inspects vector datasets (default: ogrinfo)
	OGRInfo string `env:"TOOL_OGRINFO" default:"ogrinfo"`

	// GDALInfo inspects raster datasets (default: gdalinfo)
	GDALInfo string `env:"TOOL_GDALINFO" default:"gdalinfo"`

	// Shp2Pgsql converts shapefiles to SQL (default: shp2pgsql)
	Shp2Pgsql string `env:"TOOL_SHP2PGSQL" default:"shp2pgsql"`

	// Psql executes the converted SQL (default: psql)
	Psql string `env:"TOOL_PSQL" default:"psql"`
}

// StorageConfig holds filesystem locations the pipelines write to.
type StorageConfig struct {
	// ScratchDir is the root for temporary spool and extraction
	// directories (default: /tmp/geoingest)
	ScratchDir string `env:"STORAGE_SCRATCH_DIR" default:"/tmp/geoingest"`

	// RasterDir is the permanent raster storage directory the map server
	// can read from (required)
	RasterDir string `env:"STORAGE_RASTER_DIR" required:"true"`
}

// IngestConfig holds upload processing settings.
type IngestConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 512MB)
	MaxFileSize int64 `env:"INGEST_MAX_FILE_SIZE" default:"536870912"`

	// MaxConcurrent is the maximum number of pipelines running at once (default: 4)
	MaxConcurrent int `env:"INGEST_MAX_CONCURRENT" default:"4"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PublicBase returns the base URL catalog entries should advertise.
func (c *GeoServerConfig) PublicBase() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	return strings.TrimRight(c.BaseURL, "/")
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT (%d) must be 1-65535", c.Database.Port))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}

	if !strings.HasPrefix(c.GeoServer.BaseURL, "http://") && !strings.HasPrefix(c.GeoServer.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("GEOSERVER_URL (%q) must be an http(s) URL", c.GeoServer.BaseURL))
	}
	if c.GeoServer.Workspace == "" {
		errs = append(errs, "GEOSERVER_WORKSPACE must not be empty")
	}

	if c.Ingest.MaxFileSize <= 0 {
		errs = append(errs, "INGEST_MAX_FILE_SIZE must be positive")
	}
	if c.Ingest.MaxConcurrent <= 0 {
		errs = append(errs, "INGEST_MAX_CONCURRENT must be positive")
	}

	if c.Storage.ScratchDir == "" {
		errs = append(errs, "STORAGE_SCRATCH_DIR must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// Credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {Host: %q, Port: %d, Name: %q, User: %q, Password: [MASKED], MaxConns: %d}, ",
		c.Database.Host, c.Database.Port, c.Database.Name, c.Database.User, c.Database.MaxConns))
	b.WriteString(fmt.Sprintf("GeoServer: {BaseURL: %q, User: %q, Password: [MASKED], Workspace: %q}, ",
		c.GeoServer.BaseURL, c.GeoServer.User, c.GeoServer.Workspace))
	b.WriteString(fmt.Sprintf("Storage: {ScratchDir: %q, RasterDir: %q}, ",
		c.Storage.ScratchDir, c.Storage.RasterDir))
	b.WriteString(fmt.Sprintf("Ingest: {MaxFileSize: %d, MaxConcurrent: %d}, ",
		c.Ingest.MaxFileSize, c.Ingest.MaxConcurrent))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
