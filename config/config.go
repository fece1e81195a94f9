package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"auditease-backend/llm"
	"auditease-backend/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigPathEnv names the environment variable holding an optional YAML config file
const ConfigPathEnv = "AUDITEASE_CONFIG"

// Config is the process configuration. Keys double as lower-case YAML keys.
type Config struct {
	Port        string `mapstructure:"port"`
	DatabaseURL string `mapstructure:"database_url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`

	GeminiAPIKey  string        `mapstructure:"gemini_api_key"`
	LLMProvider   string        `mapstructure:"llm_provider"`
	LLMModel      string        `mapstructure:"llm_model"`
	LLMBaseURL    string        `mapstructure:"llm_base_url"`
	LLMTimeout    time.Duration `mapstructure:"llm_timeout"`
	LLMMaxRetries int           `mapstructure:"llm_max_retries"`

	StorageType        string `mapstructure:"storage_type"`
	StorageLocalPath   string `mapstructure:"storage_local_path"`
	AWSS3Bucket        string `mapstructure:"aws_s3_bucket"`
	AWSRegion          string `mapstructure:"aws_region"`
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	MinIOEndpoint      string `mapstructure:"minio_endpoint"`
	MinIOAccessKey     string `mapstructure:"minio_access_key"`
	MinIOSecretKey     string `mapstructure:"minio_secret_key"`
	MinIOBucket        string `mapstructure:"minio_bucket"`
	MinIOUseSSL        bool   `mapstructure:"minio_use_ssl"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	RateLimitRPS       float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int      `mapstructure:"rate_limit_burst"`
	FreeAuditLimit     int      `mapstructure:"free_audit_limit"`
}

var defaults = map[string]any{
	"port":                 "8080",
	"auto_migrate":         false,
	"llm_provider":         llm.ProviderGemini,
	"llm_timeout":          llm.DefaultTimeout,
	"llm_max_retries":      2,
	"storage_type":         string(storage.StorageTypeLocal),
	"storage_local_path":   "./storage/files",
	"aws_region":           "us-east-1",
	"minio_use_ssl":        false,
	"log_level":            "info",
	"log_format":           "structured",
	"cors_allowed_origins": []string{"http://localhost:5173", "http://localhost:3000"},
	"rate_limit_rps":       1.0,
	"rate_limit_burst":     5,
	"free_audit_limit":     10,
}

// LoadDotEnv loads .env from the working directory, then from the project
// root when running from cmd/<name>. Missing files are not an error.
func LoadDotEnv() bool {
	if err := godotenv.Load(); err == nil {
		return true
	}
	return godotenv.Load("../../.env") == nil
}

// Load resolves configuration from defaults, an optional YAML file and the
// environment, in increasing priority. An empty path falls back to
// AUDITEASE_CONFIG.
func Load(path string) (*Config, error) {
	LoadDotEnv()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range envKeys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.CORSAllowedOrigins = splitOrigins(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKeys lists every config key; each binds to its upper-cased environment variable
var envKeys = []string{
	"port", "database_url", "auto_migrate",
	"gemini_api_key", "llm_provider", "llm_model", "llm_base_url", "llm_timeout", "llm_max_retries",
	"storage_type", "storage_local_path", "aws_s3_bucket", "aws_region", "aws_access_key_id",
	"aws_secret_access_key", "minio_endpoint", "minio_access_key", "minio_secret_key",
	"minio_bucket", "minio_use_ssl",
	"log_level", "log_format",
	"cors_allowed_origins", "rate_limit_rps", "rate_limit_burst", "free_audit_limit",
}

// Validate checks values that would otherwise fail late at startup
func (c *Config) Validate() error {
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limit values must not be negative")
	}
	if c.LLMMaxRetries < 0 {
		return errors.New("LLM_MAX_RETRIES must not be negative")
	}
	if c.FreeAuditLimit <= 0 {
		return errors.New("FREE_AUDIT_LIMIT must be positive")
	}
	return nil
}

// LLM converts to the client configuration
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:   c.LLMProvider,
		APIKey:     c.GeminiAPIKey,
		Model:      c.LLMModel,
		BaseURL:    c.LLMBaseURL,
		Timeout:    c.LLMTimeout,
		MaxRetries: c.LLMMaxRetries,
	}
}

// Storage converts to the storage backend configuration
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Type:           storage.StorageType(strings.ToLower(c.StorageType)),
		LocalPath:      c.StorageLocalPath,
		S3Bucket:       c.AWSS3Bucket,
		S3Region:       c.AWSRegion,
		AWSAccessKey:   c.AWSAccessKeyID,
		AWSSecretKey:   c.AWSSecretAccessKey,
		MinIOEndpoint:  c.MinIOEndpoint,
		MinIOAccessKey: c.MinIOAccessKey,
		MinIOSecretKey: c.MinIOSecretKey,
		MinIOBucket:    c.MinIOBucket,
		MinIOUseSSL:    c.MinIOUseSSL,
	}
}

func splitOrigins(values []string) []string {
	var out []string
	for _, value := range values {
		for _, origin := range strings.Split(value, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
