// Package bot реализует интерактивный фронтенд Telegram-бота:
// inline-поиск, поиск в личном чате с пагинацией и команды.
package bot

import (
	"context"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ymbot/internal/config"
	"ymbot/internal/delivery"
	"ymbot/internal/session"
	"ymbot/internal/telegram"
	"ymbot/internal/yandex"
)

const (
	// inlinePageSize размер страницы inline-поиска
	inlinePageSize = 30
	// chatPageSize размер страницы поиска в личном чате
	chatPageSize = 15

	msgNoResults    = "Нет результатов по запросу"
	msgSearchTitle  = "Результаты поиска:"
	msgWaitDownload = "Пожалуйста, подождите. Ваш трек загружается..."
	msgLoadFailed   = "Ошибка при загрузке трека"
	msgTokenUpdated = "Токен обновлён"
)

// Bot представляет фронтенд бота
type Bot struct {
	tg      *telegram.Client
	music   *yandex.Client
	pool    *delivery.Pool
	session *session.Store
	config  *config.Config
	logger  *zap.Logger
}

// New создает новый фронтенд бота
func New(tg *telegram.Client, music *yandex.Client, pool *delivery.Pool, store *session.Store, cfg *config.Config, logger *zap.Logger) *Bot {
	return &Bot{
		tg:      tg,
		music:   music,
		pool:    pool,
		session: store,
		config:  cfg,
		logger:  logger,
	}
}

// Run запускает цикл обработки обновлений и блокируется до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	api := b.tg.API()

	// Удаляем webhook если есть
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}); err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query", "inline_query", "chosen_inline_result"}

	b.logger.Info("Starting to fetch updates", zap.String("username", b.tg.Username()))
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Update loop cancelled by context")
			api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.logger.Warn("Update channel closed")
				return nil
			}
			// Обновления независимы, каждое обрабатывается в своей горутине
			go b.handleUpdate(update)
		}
	}
}

// handleUpdate разбирает одно обновление с защитой от паники
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			b.logger.Error("Panic recovered",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", panicErr),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	switch {
	case update.InlineQuery != nil:
		b.handleInlineQuery(update.InlineQuery)
	case update.ChosenInlineResult != nil:
		b.handleChosenInlineResult(update.ChosenInlineResult)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(update.Message)
	}
}
