// Package config handles loading and validation of application configuration
// from environment variables and an optional YAML file.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Chat providers understood by llm.NewFactory.
const (
	ChatProviderGemini = "gemini"
	ChatProviderOpenAI = "openai"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	BasePath       string      `mapstructure:"BASE_PATH" yaml:"base_path"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
}

// StorageConfig points at the JSON file holding the feedback collection.
type StorageConfig struct {
	DataFile string `mapstructure:"DATA_FILE" yaml:"data_file"`
}

// ChatConfig selects and configures the remote text-generation provider.
type ChatConfig struct {
	Provider      string `mapstructure:"PROVIDER" yaml:"provider"`
	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY" yaml:"gemini_api_key"`
	GeminiModel   string `mapstructure:"GEMINI_MODEL" yaml:"gemini_model"`
	GeminiBaseURL string `mapstructure:"GEMINI_BASE_URL" yaml:"gemini_base_url"`
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY" yaml:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL" yaml:"openai_base_url"`
	OpenAIModel   string `mapstructure:"OPENAI_MODEL" yaml:"openai_model"`
	// TimeoutSeconds bounds one provider call. Zero leaves it to the transport.
	TimeoutSeconds int `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// APIKey returns the credential of the selected provider.
func (c *ChatConfig) APIKey() string {
	if c.Provider == ChatProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// RedisConfig holds connection details for the optional feedback event stream.
type RedisConfig struct {
	Enabled               bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Address               string `mapstructure:"ADDRESS" yaml:"address"`
	Password              string `mapstructure:"PASSWORD" yaml:"password"`
	DB                    int    `mapstructure:"DB" yaml:"db"`
	Channel               string `mapstructure:"CHANNEL" yaml:"channel"`
	PublishTimeoutSeconds int    `mapstructure:"PUBLISH_TIMEOUT_SECONDS" yaml:"publish_timeout_seconds"`
}

// EmailConfig holds configuration for new-feedback notifications.
type EmailConfig struct {
	Enabled       bool   `mapstructure:"ENABLED" yaml:"enabled"`
	ResendAPIKey  string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
	FromAddress   string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName      string `mapstructure:"FROM_NAME" yaml:"from_name"`
	NotifyAddress string `mapstructure:"NOTIFY_ADDRESS" yaml:"notify_address"`
}

// WorkerPoolConfig sizes the pool that delivers notifications off the request path.
type WorkerPoolConfig struct {
	MaxWorkers             int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	QueueSize              int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	JobTimeoutSeconds      int `mapstructure:"JOB_TIMEOUT_SECONDS" yaml:"job_timeout_seconds"`
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server     ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Storage    StorageConfig    `mapstructure:"STORAGE" yaml:"storage"`
	Chat       ChatConfig       `mapstructure:"CHAT" yaml:"chat"`
	Redis      RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	Email      EmailConfig      `mapstructure:"EMAIL" yaml:"email"`
	WorkerPool WorkerPoolConfig `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "3001")
	v.SetDefault("SERVER.BASE_PATH", "/api")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("STORAGE.DATA_FILE", "server/data/feedback.json")
	v.SetDefault("CHAT.PROVIDER", ChatProviderGemini)
	v.SetDefault("CHAT.GEMINI_API_KEY", "")
	v.SetDefault("CHAT.GEMINI_MODEL", "models/gemini-1.5-flash")
	v.SetDefault("CHAT.GEMINI_BASE_URL", "")
	v.SetDefault("CHAT.OPENAI_API_KEY", "")
	v.SetDefault("CHAT.OPENAI_BASE_URL", "")
	v.SetDefault("CHAT.OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("CHAT.TIMEOUT_SECONDS", 60)
	v.SetDefault("REDIS.ENABLED", false)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.CHANNEL", "feedback:events")
	v.SetDefault("REDIS.PUBLISH_TIMEOUT_SECONDS", 5)
	v.SetDefault("EMAIL.ENABLED", false)
	v.SetDefault("EMAIL.RESEND_API_KEY", "")
	v.SetDefault("EMAIL.FROM_ADDRESS", "")
	v.SetDefault("EMAIL.FROM_NAME", "Feedback Bot")
	v.SetDefault("EMAIL.NOTIFY_ADDRESS", "")
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 2)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 100)
	v.SetDefault("WORKER_POOL.JOB_TIMEOUT_SECONDS", 30)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("LOG_LEVEL", "info")
}

var envBindings = [][2]string{
	// Server config
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.BASE_PATH", "BASE_PATH"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "VERSION"},
	// Storage
	{"STORAGE.DATA_FILE", "DATA_FILE"},
	// Chat provider
	{"CHAT.PROVIDER", "CHAT_PROVIDER"},
	{"CHAT.GEMINI_API_KEY", "GEMINI_API_KEY"},
	{"CHAT.GEMINI_MODEL", "GEMINI_MODEL"},
	{"CHAT.GEMINI_BASE_URL", "GEMINI_BASE_URL"},
	{"CHAT.OPENAI_API_KEY", "OPENAI_API_KEY"},
	{"CHAT.OPENAI_BASE_URL", "OPENAI_BASE_URL"},
	{"CHAT.OPENAI_MODEL", "OPENAI_MODEL"},
	{"CHAT.TIMEOUT_SECONDS", "CHAT_TIMEOUT_SECONDS"},
	// Redis event stream
	{"REDIS.ENABLED", "REDIS_ENABLED"},
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.CHANNEL", "REDIS_CHANNEL"},
	{"REDIS.PUBLISH_TIMEOUT_SECONDS", "REDIS_PUBLISH_TIMEOUT_SECONDS"},
	// Email notifications
	{"EMAIL.ENABLED", "EMAIL_ENABLED"},
	{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
	{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
	{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
	{"EMAIL.NOTIFY_ADDRESS", "EMAIL_NOTIFY_ADDRESS"},
	// Notification worker pool
	{"WORKER_POOL.MAX_WORKERS", "WORKER_POOL_MAX_WORKERS"},
	{"WORKER_POOL.QUEUE_SIZE", "WORKER_POOL_QUEUE_SIZE"},
	{"WORKER_POOL.JOB_TIMEOUT_SECONDS", "WORKER_POOL_JOB_TIMEOUT_SECONDS"},
	{"WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", "WORKER_POOL_SHUTDOWN_TIMEOUT_SECONDS"},
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, merges the YAML file named by CONFIG_FILE (if any),
// unmarshals the configuration, and validates it. Environment variables win
// over the file.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}
	if err := v.BindEnv("CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("failed to bind CONFIG_FILE: %w", err)
	}

	if path := v.GetString("CONFIG_FILE"); path != "" {
		overlay, err := readYAMLFile(path)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(overlay); err != nil {
			return nil, fmt.Errorf("merge config file %s: %w", path, err)
		}
		log.Infow("Configuration file merged", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg, log); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"base_path", cfg.Server.BasePath,
		"allowed_origins", cfg.Server.AllowedOrigins,
		"data_file", cfg.Storage.DataFile,
		"chat_provider", cfg.Chat.Provider,
		"chat_api_key", logger.MaskAPIKey(cfg.Chat.APIKey()),
		"redis_enabled", cfg.Redis.Enabled,
		"email_enabled", cfg.Email.Enabled,
	)
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config, log *zap.SugaredLogger) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Server.BasePath != "" && !strings.HasPrefix(cfg.Server.BasePath, "/") {
		return fmt.Errorf("base path must start with '/': %q", cfg.Server.BasePath)
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Storage.DataFile == "" {
		return fmt.Errorf("storage data file is required")
	}

	if err := validateChatConfig(&cfg.Chat, log); err != nil {
		return err
	}

	if cfg.Redis.Enabled {
		if cfg.Redis.Address == "" {
			log.Warn("Redis enabled without an address, auto-disabling feedback events")
			cfg.Redis.Enabled = false
		} else if cfg.Redis.PublishTimeoutSeconds <= 0 {
			return fmt.Errorf("redis publish timeout must be positive")
		}
	}

	validateEmailConfig(&cfg.Email, log)

	if cfg.Email.Enabled {
		if cfg.WorkerPool.MaxWorkers <= 0 {
			return fmt.Errorf("worker pool max workers must be positive")
		}
		if cfg.WorkerPool.QueueSize <= 0 {
			return fmt.Errorf("worker pool queue size must be positive")
		}
		if cfg.WorkerPool.JobTimeoutSeconds <= 0 || cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
			return fmt.Errorf("worker pool timeouts must be positive")
		}
	}
	return nil
}

func validateChatConfig(cfg *ChatConfig, log *zap.SugaredLogger) error {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch cfg.Provider {
	case ChatProviderGemini, ChatProviderOpenAI:
	default:
		return fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
	if cfg.TimeoutSeconds < 0 {
		return fmt.Errorf("chat timeout must not be negative")
	}
	for _, raw := range []string{cfg.GeminiBaseURL, cfg.OpenAIBaseURL} {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid chat base URL '%s': %w", raw, err)
		}
	}
	// The server still starts; /chat answers 500 until a key is configured.
	if cfg.APIKey() == "" {
		log.Warnw("Chat provider API key is not set, chat requests will fail", "provider", cfg.Provider)
	}
	return nil
}

// validateEmailConfig auto-disables notifications that cannot be delivered.
func validateEmailConfig(cfg *EmailConfig, log *zap.SugaredLogger) {
	if !cfg.Enabled {
		return
	}
	if cfg.ResendAPIKey == "" || cfg.FromAddress == "" || cfg.NotifyAddress == "" {
		log.Warn("Email notifications enabled but Resend key, sender or recipient missing, auto-disabling")
		cfg.Enabled = false
	}
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
