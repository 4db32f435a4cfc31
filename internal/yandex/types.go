// Package yandex реализует клиент недокументированного API Яндекс Музыки:
// поиск, метаданные треков и получение подписанной ссылки на скачивание.
package yandex

import (
	"encoding/json"
	"strings"
)

// thumbnailSize подставляется вместо шаблона %% в coverUri
const thumbnailSize = "200x200"

// Artist представляет исполнителя трека
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Album представляет альбом трека
type Album struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Track представляет трек из ответа API
type Track struct {
	ID         int64    `json:"id"`
	RealID     int64    `json:"realId"`
	Title      string   `json:"title"`
	Available  bool     `json:"available"`
	DurationMs int64    `json:"durationMs"`
	Artists    []Artist `json:"artists"`
	Albums     []Album  `json:"albums"`
	Thumbnail  string   `json:"coverUri"`
}

// TrackList представляет одну страницу результатов поиска.
// Count — размер страницы, Total — общее число совпадений по данным сервера.
type TrackList struct {
	Tracks []Track
	Count  int
	Total  int
}

// ArtistLine возвращает имена исполнителей через запятую
func (t *Track) ArtistLine() string {
	names := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}

// DurationSeconds возвращает длительность трека в секундах
func (t *Track) DurationSeconds() int {
	return int(t.DurationMs / 1000)
}

// parseTrack разбирает JSON-объект трека. Возвращает nil, если объект
// не разбирается или в нем нет обязательных полей: частично заполненный
// трек не должен покидать границу парсинга.
func parseTrack(raw json.RawMessage) *Track {
	var track Track
	if err := json.Unmarshal(raw, &track); err != nil {
		return nil
	}
	if track.ID == 0 || track.Title == "" || len(track.Albums) == 0 {
		return nil
	}
	track.Thumbnail = normalizeThumbnail(track.Thumbnail)
	return &track
}

// normalizeThumbnail переписывает шаблон coverUri в конкретный HTTPS-адрес.
// Повторный вызов для уже нормализованного адреса ничего не меняет.
func normalizeThumbnail(raw string) string {
	if raw == "" {
		return ""
	}
	raw = strings.ReplaceAll(raw, "%%", thumbnailSize)
	if !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw
}
