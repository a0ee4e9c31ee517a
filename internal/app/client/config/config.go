package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	defaultServerAddress    = "localhost:8080"
	defaultLogLevel         = "info"
	defaultEnv              = EnvLocal
	defaultConfigDir        = ".marketplace"
	defaultStateFile        = "state.db"
	defaultNotificationTTL  = 3000
	defaultRequestTimeout   = 30
	defaultMessagesPageSize = 50
	defaultListingsPageSize = 20
)

type Config struct {
	Env              string        `mapstructure:"app_env"`
	ServerAddress    string        `mapstructure:"server_address"`
	EnableTLS        bool          `mapstructure:"enable_tls"`
	LogLevel         string        `mapstructure:"log_level"`
	ConfigDir        string        `mapstructure:"config_dir"`
	StatePath        string        `mapstructure:"state_path"`
	NotificationTTL  time.Duration `mapstructure:"-"`
	RequestTimeout   time.Duration `mapstructure:"-"`
	MessagesPageSize int           `mapstructure:"messages_page_size"`
	ListingsPageSize int           `mapstructure:"listings_page_size"`
}

// MustLoad загружает конфигурацию клиента и паникует при ошибке
func MustLoad() *Config {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load собирает конфигурацию из .env, переменных окружения и конфиг-файла,
// уже прочитанного в v.
func Load(v *viper.Viper) (*Config, error) {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("ENABLE_TLS", true)
	v.SetDefault("NOTIFICATION_TTL_MS", defaultNotificationTTL)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", defaultRequestTimeout)
	v.SetDefault("MESSAGES_PAGE_SIZE", defaultMessagesPageSize)
	v.SetDefault("LISTINGS_PAGE_SIZE", defaultListingsPageSize)

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	statePath := v.GetString("STATE_PATH")
	if statePath == "" {
		statePath = filepath.Join(configDir, defaultStateFile)
	}

	cfg := &Config{
		Env:              v.GetString("APP_ENV"),
		ServerAddress:    v.GetString("SERVER_ADDRESS"),
		EnableTLS:        v.GetBool("ENABLE_TLS"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		ConfigDir:        configDir,
		StatePath:        statePath,
		NotificationTTL:  time.Duration(v.GetInt("NOTIFICATION_TTL_MS")) * time.Millisecond,
		RequestTimeout:   time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		MessagesPageSize: v.GetInt("MESSAGES_PAGE_SIZE"),
		ListingsPageSize: v.GetInt("LISTINGS_PAGE_SIZE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.NotificationTTL <= 0 {
		return fmt.Errorf("notification_ttl_ms должен быть положительным")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout_seconds должен быть положительным")
	}
	if c.MessagesPageSize <= 0 || c.ListingsPageSize <= 0 {
		return fmt.Errorf("размер страницы должен быть положительным")
	}
	return nil
}

// BaseURL возвращает адрес REST API со схемой
func (c *Config) BaseURL() string {
	scheme := "http://"
	if c.EnableTLS {
		scheme = "https://"
	}
	return scheme + c.ServerAddress
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// IsDev проверяет, dev ли окружение
func (c *Config) IsDev() bool {
	return c.Env == EnvDev
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
