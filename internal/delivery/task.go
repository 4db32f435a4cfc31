// Package delivery реализует пул воркеров, доставляющих выбранный трек
// в сообщение Telegram: получение метаданных, подписанной ссылки,
// скачивание аудио и замена содержимого исходного сообщения.
package delivery

import (
	"context"

	"ymbot/internal/yandex"
)

// Task представляет задачу доставки одного трека. Создается при выборе
// результата поиска, обрабатывается ровно одним воркером и не изменяется.
type Task struct {
	// InlineMessageID связывает задачу с сообщением, которое нужно отредактировать
	InlineMessageID string
	// TrackID идентификатор трека в Яндекс Музыке
	TrackID int64
}

// TrackSource операции клиента API, нужные воркеру
type TrackSource interface {
	TrackInfo(ctx context.Context, trackID int64) *yandex.Track
	DownloadURI(ctx context.Context, trackID int64) (string, bool)
	FetchAudio(ctx context.Context, link string) ([]byte, error)
	FetchThumbnail(ctx context.Context, link string) ([]byte, error)
}

// AudioUpload данные для выгрузки аудио в канал-хранилище
type AudioUpload struct {
	Audio     []byte
	Thumbnail []byte
	Title     string
	Performer string
	Duration  int
}

// MediaRef ссылка на выгруженное аудио: идентификатор файла для
// повторного использования и координаты промежуточного сообщения
type MediaRef struct {
	FileID    string
	ChatID    int64
	MessageID int
}

// Messenger операции мессенджера, нужные воркеру. Реализуется
// телеграм-адаптером.
type Messenger interface {
	// UploadAudio выгружает аудио в канал-хранилище и возвращает ссылку на медиа
	UploadAudio(upload AudioUpload) (MediaRef, error)
	// ReplaceAudio заменяет содержимое inline-сообщения выгруженным аудио
	ReplaceAudio(inlineMessageID, fileID string) error
	// EditCaption заменяет подпись inline-сообщения текстом
	EditCaption(inlineMessageID, text string) error
	// DeleteMessage удаляет промежуточное сообщение из канала-хранилища
	DeleteMessage(chatID int64, messageID int) error
}
