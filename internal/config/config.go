package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pdfdigest/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Upload    UploadConfig
	Cache     CacheConfig
	Converter ConverterConfig
	Export    ExportConfig
	Storage   StorageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UploadConfig holds limits applied to incoming documents.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// ConverterConfig holds document converter settings.
type ConverterConfig struct {
	Default     string        `mapstructure:"default"`
	DoclingURL  string        `mapstructure:"docling_url"`
	AgnoAPIKey  string        `mapstructure:"agno_api_key"`
	AgnoModel   string        `mapstructure:"agno_model"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ExportConfig holds table export settings.
type ExportConfig struct {
	DefaultFormat string `mapstructure:"default_format"`
}

// StorageConfig holds artifact storage settings.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	LocalDir  string `mapstructure:"local_dir"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Load reads configuration from environment variables with the PDFDIGEST_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PDFDIGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 16)

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.path", "/var/lib/pdfdigest/cache")
	v.SetDefault("cache.ttl", "1h")

	// Converter defaults
	v.SetDefault("converter.default", "docling")
	v.SetDefault("converter.docling_url", "http://localhost:5001")
	v.SetDefault("converter.agno_api_key", "")
	v.SetDefault("converter.agno_model", "gpt-4o")
	v.SetDefault("converter.max_retries", 2)
	v.SetDefault("converter.timeout", "120s")

	// Export defaults
	v.SetDefault("export.default_format", "csv")

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_dir", "/var/lib/pdfdigest/artifacts")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "pdfdigest-artifacts")
	v.SetDefault("storage.endpoint", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "PDFDIGEST_SERVER_PORT",
		"server.read_timeout":      "PDFDIGEST_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "PDFDIGEST_SERVER_WRITE_TIMEOUT",
		"server.environment":       "PDFDIGEST_SERVER_ENVIRONMENT",
		"log.level":                "PDFDIGEST_LOG_LEVEL",
		"log.format":               "PDFDIGEST_LOG_FORMAT",
		"upload.max_file_size_mb":  "PDFDIGEST_UPLOAD_MAX_FILE_SIZE_MB",
		"cache.backend":            "PDFDIGEST_CACHE_BACKEND",
		"cache.path":               "PDFDIGEST_CACHE_PATH",
		"cache.ttl":                "PDFDIGEST_CACHE_TTL",
		"converter.default":        "PDFDIGEST_CONVERTER_DEFAULT",
		"converter.docling_url":    "PDFDIGEST_CONVERTER_DOCLING_URL",
		"converter.agno_api_key":   "PDFDIGEST_CONVERTER_AGNO_API_KEY",
		"converter.agno_model":     "PDFDIGEST_CONVERTER_AGNO_MODEL",
		"converter.max_retries":    "PDFDIGEST_CONVERTER_MAX_RETRIES",
		"converter.timeout":        "PDFDIGEST_CONVERTER_TIMEOUT",
		"export.default_format":    "PDFDIGEST_EXPORT_DEFAULT_FORMAT",
		"storage.backend":          "PDFDIGEST_STORAGE_BACKEND",
		"storage.local_dir":        "PDFDIGEST_STORAGE_LOCAL_DIR",
		"storage.region":           "PDFDIGEST_STORAGE_REGION",
		"storage.bucket":           "PDFDIGEST_STORAGE_BUCKET",
		"storage.endpoint":         "PDFDIGEST_STORAGE_ENDPOINT",
		"storage.access_key":       "PDFDIGEST_STORAGE_ACCESS_KEY",
		"storage.secret_key":       "PDFDIGEST_STORAGE_SECRET_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PDFDIGEST_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PDFDIGEST_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Cache = CacheConfig{
		Backend: v.GetString("cache.backend"),
		Path:    v.GetString("cache.path"),
		TTL:     v.GetDuration("cache.ttl"),
	}
	cfg.Converter = ConverterConfig{
		Default:    v.GetString("converter.default"),
		DoclingURL: v.GetString("converter.docling_url"),
		AgnoAPIKey: v.GetString("converter.agno_api_key"),
		AgnoModel:  v.GetString("converter.agno_model"),
		MaxRetries: v.GetInt("converter.max_retries"),
		Timeout:    v.GetDuration("converter.timeout"),
	}
	cfg.Export = ExportConfig{
		DefaultFormat: v.GetString("export.default_format"),
	}
	cfg.Storage = StorageConfig{
		Backend:   v.GetString("storage.backend"),
		LocalDir:  v.GetString("storage.local_dir"),
		Region:    v.GetString("storage.region"),
		Bucket:    v.GetString("storage.bucket"),
		Endpoint:  v.GetString("storage.endpoint"),
		AccessKey: v.GetString("storage.access_key"),
		SecretKey: v.GetString("storage.secret_key"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for values that would only
// fail later, at request time.
func (c *Config) Validate() error {
	if _, err := domain.ParseProcessor(c.Converter.Default); err != nil {
		return fmt.Errorf("config: converter.default %q: %w", c.Converter.Default, err)
	}
	if c.Converter.Default == string(domain.ProcessorAgno) && c.Converter.AgnoAPIKey == "" {
		return fmt.Errorf("config: converter.default is %q: %w", domain.ProcessorAgno, domain.ErrMissingAPIKey)
	}
	if _, err := domain.ParseExportFormat(c.Export.DefaultFormat); err != nil {
		return fmt.Errorf("config: export.default_format %q: %w", c.Export.DefaultFormat, err)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("config: cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("config: upload.max_file_size_mb must be positive, got %d", c.Upload.MaxFileSizeMB)
	}
	switch c.Cache.Backend {
	case "memory", "badger":
	default:
		return fmt.Errorf("config: cache.backend must be memory or badger, got %q", c.Cache.Backend)
	}
	switch c.Storage.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("config: storage.backend must be local or s3, got %q", c.Storage.Backend)
	}
	if c.Converter.MaxRetries < 0 {
		return fmt.Errorf("config: converter.max_retries must not be negative, got %d", c.Converter.MaxRetries)
	}
	return nil
}
