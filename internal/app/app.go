package app

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ymbot/internal/bot"
	"ymbot/internal/config"
	"ymbot/internal/delivery"
	"ymbot/internal/health"
	"ymbot/internal/session"
	"ymbot/internal/telegram"
	"ymbot/internal/yandex"
)

// App связывает компоненты бота и управляет их жизненным циклом
type App struct {
	config  *config.Config
	logger  *zap.Logger
	session *session.Store
	music   *yandex.Client
	tg      *telegram.Client
	pool    *delivery.Pool
	health  *health.Server
}

// NewApp создает приложение из готовых компонентов
func NewApp(cfg *config.Config, logger *zap.Logger, store *session.Store, music *yandex.Client,
	tg *telegram.Client, pool *delivery.Pool, healthServer *health.Server) *App {
	return &App{
		config:  cfg,
		logger:  logger,
		session: store,
		music:   music,
		tg:      tg,
		pool:    pool,
		health:  healthServer,
	}
}

// Run запускает приложение и блокируется до отмены контекста.
// Остановка кооперативная: цикл обновлений прекращает принимать
// задачи, затем пул дорабатывает очередь до конца.
func (a *App) Run(ctx context.Context) error {
	a.pool.Start()

	if a.health != nil {
		go func() {
			if err := a.health.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Health check server failed", zap.Error(err))
			}
		}()
	}

	front := bot.New(a.tg, a.music, a.pool, a.session, a.config, a.logger)
	err := front.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	// Сначала дорабатывается очередь доставки, потом гасится остальное
	a.pool.Stop()

	if a.health != nil {
		if stopErr := a.health.Stop(); stopErr != nil {
			a.logger.Warn("Failed to stop health check server", zap.Error(stopErr))
		}
	}

	return err
}
