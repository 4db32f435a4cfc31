// Package telegram содержит интеграцию с Telegram Bot API.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ymbot/internal/delivery"
)

// Client представляет клиент Telegram Bot API. Реализует операции
// мессенджера для пула доставки и отдает низкоуровневый API фронтенду.
type Client struct {
	bot            *tgbotapi.BotAPI
	filesChannelID int64
	logger         *zap.Logger
}

// Убеждаемся, что Client реализует delivery.Messenger
var _ delivery.Messenger = (*Client)(nil)

// NewClient создает новый клиент Telegram
func NewClient(botToken string, filesChannelID int64, logger *zap.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false
	logger.Info("Telegram bot created", zap.String("username", bot.Self.UserName))

	return &Client{
		bot:            bot,
		filesChannelID: filesChannelID,
		logger:         logger,
	}, nil
}

// API возвращает низкоуровневый Bot API для цикла обновлений
func (c *Client) API() *tgbotapi.BotAPI {
	return c.bot
}

// Username возвращает имя бота
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// UploadAudio выгружает аудио в канал-хранилище и возвращает ссылку на
// медиа: идентификатор файла и координаты промежуточного сообщения
func (c *Client) UploadAudio(upload delivery.AudioUpload) (delivery.MediaRef, error) {
	audio := tgbotapi.NewAudio(c.filesChannelID, tgbotapi.FileBytes{
		Name:  "audio.mp3",
		Bytes: upload.Audio,
	})
	audio.Title = upload.Title
	audio.Performer = upload.Performer
	audio.Duration = upload.Duration
	if upload.Thumbnail != nil {
		audio.Thumb = tgbotapi.FileBytes{
			Name:  "thumbnail.jpg",
			Bytes: upload.Thumbnail,
		}
	}

	msg, err := c.bot.Send(audio)
	if err != nil {
		return delivery.MediaRef{}, fmt.Errorf("failed to send audio to files channel: %w", err)
	}
	if msg.Audio == nil {
		return delivery.MediaRef{}, fmt.Errorf("files channel response contains no audio")
	}

	return delivery.MediaRef{
		FileID:    msg.Audio.FileID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
	}, nil
}

// ReplaceAudio заменяет содержимое inline-сообщения выгруженным аудио
func (c *Client) ReplaceAudio(inlineMessageID, fileID string) error {
	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			InlineMessageID: inlineMessageID,
		},
		Media: tgbotapi.NewInputMediaAudio(tgbotapi.FileID(fileID)),
	}

	if _, err := c.bot.Request(edit); err != nil {
		return fmt.Errorf("failed to edit message media: %w", err)
	}
	return nil
}

// EditCaption заменяет подпись inline-сообщения текстом
func (c *Client) EditCaption(inlineMessageID, text string) error {
	edit := tgbotapi.EditMessageCaptionConfig{
		BaseEdit: tgbotapi.BaseEdit{
			InlineMessageID: inlineMessageID,
		},
		Caption: text,
	}

	if _, err := c.bot.Request(edit); err != nil {
		return fmt.Errorf("failed to edit message caption: %w", err)
	}
	return nil
}

// DeleteMessage удаляет сообщение по идентификаторам чата и сообщения
func (c *Client) DeleteMessage(chatID int64, messageID int) error {
	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
