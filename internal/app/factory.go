// Package app содержит фабрику компонентов приложения.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"ymbot/internal/config"
	"ymbot/internal/delivery"
	"ymbot/internal/health"
	"ymbot/internal/session"
	"ymbot/internal/telegram"
	"ymbot/internal/yandex"
)

// ComponentFactory создает компоненты приложения
type ComponentFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewComponentFactory создает новую фабрику компонентов
func NewComponentFactory(cfg *config.Config, logger *zap.Logger) *ComponentFactory {
	if cfg == nil {
		logger.Fatal("Config cannot be nil")
	}
	if logger == nil {
		panic("Logger cannot be nil")
	}

	return &ComponentFactory{
		config: cfg,
		logger: logger,
	}
}

// CreateSessionStore создает хранилище токена и читает текущий токен
func (f *ComponentFactory) CreateSessionStore() (*session.Store, error) {
	store := session.NewStore(f.config.TokenFile)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load session token: %w", err)
	}

	f.logger.Info("Session token loaded", zap.String("file", f.config.TokenFile))
	return store, nil
}

// CreateMusicClient создает клиент API Яндекс Музыки
func (f *ComponentFactory) CreateMusicClient(store *session.Store) *yandex.Client {
	client := yandex.NewClient(yandex.Config{
		BaseURL:               f.config.APIBaseURL,
		SecretKey:             f.config.SecretKey,
		RequestTimeout:        f.config.RequestTimeout,
		DownloadTimeout:       f.config.DownloadTimeout,
		MaxIdleConns:          f.config.HTTPClientConfig.MaxIdleConns,
		MaxIdleConnsPerHost:   f.config.HTTPClientConfig.MaxIdleConnsPerHost,
		IdleConnTimeout:       f.config.HTTPClientConfig.IdleConnTimeout,
		TLSHandshakeTimeout:   f.config.HTTPClientConfig.TLSHandshakeTimeout,
		ResponseHeaderTimeout: f.config.HTTPClientConfig.ResponseHeaderTimeout,
		DisableKeepAlives:     f.config.HTTPClientConfig.DisableKeepAlives,
	}, store, f.logger)

	f.logger.Info("Music client created", zap.String("base_url", f.config.APIBaseURL))
	return client
}

// CreateTelegramClient создает клиент Telegram
func (f *ComponentFactory) CreateTelegramClient() (*telegram.Client, error) {
	client, err := telegram.NewClient(f.config.BotToken, f.config.FilesChannelID, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	f.logger.Info("Telegram client created successfully")
	return client, nil
}

// CreateDeliveryPool создает пул воркеров доставки
func (f *ComponentFactory) CreateDeliveryPool(music *yandex.Client, tg *telegram.Client) *delivery.Pool {
	pool := delivery.NewPool(f.config.WorkersCount, f.config.QueueSize, music, tg, f.logger)
	f.logger.Info("Delivery pool created",
		zap.Int("workers", f.config.WorkersCount),
		zap.Int("queue_size", f.config.QueueSize))
	return pool
}

// CreateHealthServer создает сервер health check
func (f *ComponentFactory) CreateHealthServer(pool *delivery.Pool) *health.Server {
	if !f.config.HealthCheckEnabled {
		f.logger.Info("Health check server is disabled")
		return nil
	}

	server := health.NewServer(f.config.HealthPort, pool, f.logger)
	f.logger.Info("Health check server created", zap.String("port", f.config.HealthPort))
	return server
}

// CreateApp создает полное приложение со всеми зависимостями
func (f *ComponentFactory) CreateApp() (*App, error) {
	store, err := f.CreateSessionStore()
	if err != nil {
		return nil, err
	}

	music := f.CreateMusicClient(store)

	tg, err := f.CreateTelegramClient()
	if err != nil {
		return nil, err
	}

	pool := f.CreateDeliveryPool(music, tg)
	healthServer := f.CreateHealthServer(pool)

	return NewApp(f.config, f.logger, store, music, tg, pool, healthServer), nil
}
