// Package config содержит загрузку и валидацию конфигурации.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config представляет конфигурацию приложения
type Config struct {
	// Telegram
	BotToken       string
	AdminID        int64
	FilesChannelID int64

	// Yandex Music
	SecretKey  string
	TokenFile  string
	APIBaseURL string

	// Delivery
	WorkersCount int
	QueueSize    int

	// Health
	HealthPort         string
	HealthCheckEnabled bool

	// Logging
	LogLevel string

	// HTTP Client
	HTTPClientConfig HTTPClientConfig

	// Timeouts
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
}

// HTTPClientConfig представляет конфигурацию HTTP клиента
type HTTPClientConfig struct {
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	DisableKeepAlives     bool
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл если он существует
	if err := godotenv.Load(); err != nil {
		// Игнорируем ошибку если файл не найден
	}

	config := &Config{
		BotToken:           getEnv("BOT_API", ""),
		AdminID:            getEnvInt64("ADMIN_ID", 0),
		FilesChannelID:     getEnvInt64("FILES_CHANNEL", 0),
		SecretKey:          getEnv("YANDEX_SECRET_KEY", ""),
		TokenFile:          getEnv("TOKEN_FILE", "config.json"),
		APIBaseURL:         getEnv("YANDEX_API_BASE_URL", "https://api.music.yandex.net"),
		WorkersCount:       getEnvInt("WORKERS_COUNT", 1),
		QueueSize:          getEnvInt("QUEUE_SIZE", 128),
		HealthPort:         getEnv("HEALTH_PORT", "8080"),
		HealthCheckEnabled: getEnvBool("HEALTH_CHECK_ENABLED", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		HTTPClientConfig: HTTPClientConfig{
			MaxIdleConns:          getEnvInt("HTTP_MAX_IDLE_CONNS", 100),
			MaxIdleConnsPerHost:   getEnvInt("HTTP_MAX_IDLE_CONNS_PER_HOST", 10),
			IdleConnTimeout:       getEnvDuration("HTTP_IDLE_CONN_TIMEOUT", 90*time.Second),
			TLSHandshakeTimeout:   getEnvDuration("HTTP_TLS_HANDSHAKE_TIMEOUT", 10*time.Second),
			ResponseHeaderTimeout: getEnvDuration("HTTP_RESPONSE_HEADER_TIMEOUT", 30*time.Second),
			DisableKeepAlives:     getEnvBool("HTTP_DISABLE_KEEP_ALIVES", false),
		},
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		DownloadTimeout: getEnvDuration("DOWNLOAD_TIMEOUT", 2*time.Minute),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate проверяет конфигурацию на корректность
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_API is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("YANDEX_SECRET_KEY is required")
	}
	if c.FilesChannelID == 0 {
		return fmt.Errorf("FILES_CHANNEL is required")
	}
	if c.WorkersCount < 1 {
		return fmt.Errorf("WORKERS_COUNT must be at least 1")
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1")
	}
	return nil
}

// getEnv получает строковую переменную окружения со значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленную переменную окружения со значением по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt64 получает переменную окружения int64 со значением по умолчанию
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool получает булеву переменную окружения со значением по умолчанию
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения-длительность со значением по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
