package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ymbot/internal/delivery"
)

// placeholderAudioURL заглушка для inline-результатов: Telegram требует
// audio_url, но реальное аудио подставляется воркером после выбора
const placeholderAudioURL = "https://helper20sms.ru/wp-content/uploads/2024/04/test.mp3"

// handleInlineQuery отвечает на inline-запрос страницей результатов поиска
func (b *Bot) handleInlineQuery(query *tgbotapi.InlineQuery) {
	offset := 0
	if query.Offset != "" {
		if parsed, err := strconv.Atoi(query.Offset); err == nil {
			offset = parsed
		}
	}

	list := b.music.Search(context.Background(), query.Query, inlinePageSize, offset)

	answer := tgbotapi.InlineConfig{
		InlineQueryID: query.ID,
		CacheTime:     1,
		IsPersonal:    true,
	}

	if list.Count == 0 {
		if offset == 0 {
			placeholder := tgbotapi.NewInlineQueryResultAudio("0", placeholderAudioURL, "Нет результатов")
			placeholder.InputMessageContent = tgbotapi.InputTextMessageContent{Text: msgNoResults}
			answer.Results = []interface{}{placeholder}
		}
		if _, err := b.tg.API().Request(answer); err != nil {
			b.logger.Warn("Failed to answer inline query", zap.Error(err))
		}
		return
	}

	loadingKb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Загрузка...", "loading"),
		),
	)

	results := make([]interface{}, 0, list.Count)
	for _, track := range list.Tracks {
		// Свежий uuid в ссылке обходит кеширование аудио на стороне Telegram
		result := tgbotapi.NewInlineQueryResultAudio(
			fmt.Sprintf("%d:%d", track.ID, track.Albums[0].ID),
			placeholderAudioURL+"?"+uuid.NewString(),
			track.Title,
		)
		result.Performer = track.ArtistLine()
		result.Duration = track.DurationSeconds()
		result.ReplyMarkup = &loadingKb
		results = append(results, result)
	}

	answer.Results = results
	answer.NextOffset = strconv.Itoa(offset + inlinePageSize)

	if _, err := b.tg.API().Request(answer); err != nil {
		b.logger.Warn("Failed to answer inline query", zap.Error(err))
	}
}

// handleChosenInlineResult ставит задачу доставки выбранного трека.
// Обработчик не ждет результата: доставкой занимается пул воркеров.
func (b *Bot) handleChosenInlineResult(result *tgbotapi.ChosenInlineResult) {
	if result.InlineMessageID == "" {
		b.logger.Debug("Chosen inline result without message id", zap.String("result_id", result.ResultID))
		return
	}

	trackID, err := parseResultID(result.ResultID)
	if err != nil {
		b.logger.Warn("Failed to parse chosen result id",
			zap.String("result_id", result.ResultID),
			zap.Error(err))
		return
	}

	task := delivery.Task{
		InlineMessageID: result.InlineMessageID,
		TrackID:         trackID,
	}
	if err := b.pool.Enqueue(task); err != nil {
		b.logger.Error("Failed to enqueue delivery task",
			zap.Int64("track_id", trackID),
			zap.Error(err))
		if editErr := b.tg.EditCaption(result.InlineMessageID, msgLoadFailed); editErr != nil {
			b.logger.Warn("Failed to edit caption after enqueue failure", zap.Error(editErr))
		}
	}
}

// handleCallback маршрутизирует callback-запросы по префиксу данных
func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	switch {
	case query.Data == "loading":
		b.answerCallback(query.ID, msgWaitDownload)
	case query.Data == "no_action":
		b.answerCallback(query.ID, "")
	case strings.HasPrefix(query.Data, "list:"):
		b.handleListPage(query)
	case strings.HasPrefix(query.Data, "track:"):
		b.handleTrackDownload(query)
	}
}

// handleMessage обрабатывает входящие сообщения в личном чате
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.IsCommand() {
		if message.Command() == "token" {
			b.handleTokenCommand(message)
		}
		return
	}

	if message.Chat == nil || !message.Chat.IsPrivate() || message.Text == "" {
		return
	}

	list := b.music.Search(context.Background(), message.Text, chatPageSize, 0)
	if list.Count == 0 {
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgNoResults))
		return
	}

	reply := tgbotapi.NewMessage(message.Chat.ID, msgSearchTitle)
	reply.ReplyMarkup = searchKeyboard(list, 0, message.Text)
	b.send(reply)
}

// handleListPage перелистывает страницу результатов поиска в чате
func (b *Bot) handleListPage(query *tgbotapi.CallbackQuery) {
	b.answerCallback(query.ID, "")

	parts := strings.SplitN(query.Data, ":", 3)
	if len(parts) != 3 || query.Message == nil {
		return
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 0 {
		return
	}
	text := parts[2]

	list := b.music.Search(context.Background(), text, chatPageSize, page*chatPageSize)
	if list.Count == 0 {
		return
	}

	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, msgSearchTitle)
	kb := searchKeyboard(list, page, text)
	edit.ReplyMarkup = &kb
	if _, err := b.tg.API().Request(edit); err != nil {
		b.logger.Warn("Failed to edit search page", zap.Error(err))
	}
}

// handleTrackDownload скачивает трек и отправляет его прямо в чат.
// В отличие от inline-потока здесь нет очереди: пользователь уже в
// диалоге с ботом и держит явное сообщение-ожидание.
func (b *Bot) handleTrackDownload(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.answerCallback(query.ID, "")
		return
	}
	chatID := query.Message.Chat.ID

	waitMsg, waitErr := b.tg.API().Send(tgbotapi.NewMessage(chatID, msgWaitDownload))
	if waitErr != nil {
		b.logger.Warn("Failed to send wait message", zap.Error(waitErr))
	}

	ctx := context.Background()
	trackID, err := parseResultID(strings.TrimPrefix(query.Data, "track:"))
	if err != nil {
		b.logger.Warn("Failed to parse track callback", zap.String("data", query.Data), zap.Error(err))
		b.finishTrackDownload(query, waitMsg, waitErr == nil, false)
		return
	}

	track := b.music.TrackInfo(ctx, trackID)
	if track == nil {
		b.finishTrackDownload(query, waitMsg, waitErr == nil, false)
		return
	}

	link, ok := b.music.DownloadURI(ctx, track.ID)
	if !ok {
		b.finishTrackDownload(query, waitMsg, waitErr == nil, false)
		return
	}

	audio, err := b.music.FetchAudio(ctx, link)
	if err != nil {
		b.logger.Error("Failed to fetch audio", zap.Int64("track_id", track.ID), zap.Error(err))
		b.finishTrackDownload(query, waitMsg, waitErr == nil, false)
		return
	}

	var thumbnail []byte
	if track.Thumbnail != "" {
		if thumbnail, err = b.music.FetchThumbnail(ctx, track.Thumbnail); err != nil {
			b.logger.Warn("Failed to fetch thumbnail", zap.Int64("track_id", track.ID), zap.Error(err))
			thumbnail = nil
		}
	}

	send := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: "audio.mp3", Bytes: audio})
	send.Title = track.Title
	send.Performer = track.ArtistLine()
	send.Duration = track.DurationSeconds()
	if thumbnail != nil {
		send.Thumb = tgbotapi.FileBytes{Name: "thumbnail.jpg", Bytes: thumbnail}
	}
	if _, err := b.tg.API().Send(send); err != nil {
		b.logger.Error("Failed to send audio", zap.Int64("track_id", track.ID), zap.Error(err))
		b.finishTrackDownload(query, waitMsg, waitErr == nil, false)
		return
	}

	b.finishTrackDownload(query, waitMsg, waitErr == nil, true)
}

// finishTrackDownload единообразно закрывает оба исхода скачивания:
// отвечает на callback, убирает сообщение-ожидание и при сбое
// подменяет текст исходного сообщения
func (b *Bot) finishTrackDownload(query *tgbotapi.CallbackQuery, waitMsg tgbotapi.Message, waitSent, delivered bool) {
	b.answerCallback(query.ID, "")

	if waitSent {
		if err := b.tg.DeleteMessage(waitMsg.Chat.ID, waitMsg.MessageID); err != nil {
			b.logger.Debug("Failed to delete wait message", zap.Error(err))
		}
	}

	if !delivered && query.Message != nil {
		edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, msgLoadFailed)
		if _, err := b.tg.API().Request(edit); err != nil {
			b.logger.Warn("Failed to edit message after download failure", zap.Error(err))
		}
	}
}

// handleTokenCommand обновляет токен Яндекс Музыки. Доступно только
// администратору; сообщение с токеном сразу удаляется из чата.
func (b *Bot) handleTokenCommand(message *tgbotapi.Message) {
	if message.From == nil || message.From.ID != b.config.AdminID {
		return
	}

	if err := b.tg.DeleteMessage(message.Chat.ID, message.MessageID); err != nil {
		b.logger.Warn("Failed to delete token message", zap.Error(err))
	}

	token := strings.TrimSpace(message.CommandArguments())
	if token == "" {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Использование: /token <значение>"))
		return
	}

	if err := b.session.Replace(token); err != nil {
		b.logger.Error("Failed to replace session token", zap.Error(err))
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgLoadFailed))
		return
	}

	b.logger.Info("Session token replaced", zap.Int64("admin_id", message.From.ID))
	b.send(tgbotapi.NewMessage(message.Chat.ID, msgTokenUpdated))
}

// answerCallback отвечает на callback-запрос, ошибки только логируются
func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.tg.API().Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Debug("Failed to answer callback query", zap.Error(err))
	}
}

// send отправляет сообщение, ошибки только логируются
func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.tg.API().Send(msg); err != nil {
		b.logger.Warn("Failed to send message", zap.Error(err))
	}
}

// parseResultID извлекает идентификатор трека из результата вида "<track>:<album>"
func parseResultID(resultID string) (int64, error) {
	idPart, _, _ := strings.Cut(resultID, ":")
	trackID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed result id %q: %w", resultID, err)
	}
	return trackID, nil
}
