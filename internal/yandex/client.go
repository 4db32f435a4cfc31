package yandex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource выдает снимок текущего токена авторизации
type TokenSource interface {
	Token() string
}

// Config представляет конфигурацию клиента Яндекс Музыки
type Config struct {
	BaseURL   string
	SecretKey string

	RequestTimeout  time.Duration
	DownloadTimeout time.Duration

	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	DisableKeepAlives     bool
}

// Client представляет клиент API Яндекс Музыки. Поисковые операции и
// операции получения ссылки никогда не возвращают жесткую ошибку:
// любой сбой транспорта, разбора или отказ сервера нормализуется в
// пустой результат, решение принимает вызывающая сторона.
type Client struct {
	baseURL   string
	secretKey string
	tokens    TokenSource
	api       *http.Client
	download  *http.Client
	logger    *zap.Logger
	now       func() time.Time
}

// NewClient создает новый клиент API Яндекс Музыки
func NewClient(cfg Config, tokens TokenSource, logger *zap.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		DisableKeepAlives:     cfg.DisableKeepAlives,
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		tokens:    tokens,
		api: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		download: &http.Client{
			Transport: transport,
			Timeout:   cfg.DownloadTimeout,
		},
		logger: logger,
		now:    time.Now,
	}
}

// Search ищет треки по текстовому запросу. Страница определяется как
// offset/pageSize. Любой сбой дает пустой список: поиск работает по
// принципу best-effort и не роняет интерактивный фронтенд.
func (c *Client) Search(ctx context.Context, query string, pageSize, offset int) TrackList {
	params := url.Values{}
	params.Set("text", query)
	params.Set("type", "album,artist,playlist,track,wave,podcast,podcast_episode")
	params.Set("page", strconv.Itoa(offset/pageSize))
	params.Set("filter", "track")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("withLikesCount", "true")

	body, err := c.getJSON(ctx, c.baseURL+"/search/instant/mixed?"+params.Encode())
	if err != nil {
		c.logger.Error("Failed to get search results", zap.String("query", query), zap.Error(err))
		return TrackList{}
	}

	var response struct {
		Results []struct {
			Type  string          `json:"type"`
			Track json.RawMessage `json:"track"`
		} `json:"results"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		c.logger.Error("Failed to parse search response", zap.String("query", query), zap.Error(err))
		return TrackList{}
	}
	if len(response.Results) == 0 {
		return TrackList{}
	}

	tracks := make([]Track, 0, len(response.Results))
	for _, result := range response.Results {
		if result.Type != "track" {
			continue
		}
		track := parseTrack(result.Track)
		if track == nil {
			c.logger.Debug("Skipping malformed track in search results", zap.String("query", query))
			continue
		}
		tracks = append(tracks, *track)
	}

	return TrackList{Tracks: tracks, Count: len(tracks), Total: response.Total}
}

// TrackInfo запрашивает метаданные одного трека.
// Возвращает nil при любом сбое или пустом ответе.
func (c *Client) TrackInfo(ctx context.Context, trackID int64) *Track {
	params := url.Values{}
	params.Set("trackIds", strconv.FormatInt(trackID, 10))
	params.Set("removeDuplicates", "false")
	params.Set("withProgress", "true")

	body, err := c.getJSON(ctx, c.baseURL+"/tracks?"+params.Encode())
	if err != nil {
		c.logger.Error("Failed to get track info", zap.Int64("track_id", trackID), zap.Error(err))
		return nil
	}

	var response []json.RawMessage
	if err := json.Unmarshal(body, &response); err != nil || len(response) == 0 {
		c.logger.Error("Failed to parse track info", zap.Int64("track_id", trackID), zap.Error(err))
		return nil
	}

	track := parseTrack(response[0])
	if track == nil {
		c.logger.Error("Track info response is malformed", zap.Int64("track_id", trackID))
	}
	return track
}

// downloadCandidate один вариант битрейта из ответа download-info
type downloadCandidate struct {
	BitrateKbps int    `json:"bitrateInKbps"`
	InfoURL     string `json:"downloadInfoUrl"`
}

// DownloadURI получает подписанную ссылку на скачивание трека в два этапа:
// запрос вариантов download-info с подписью запроса, затем запрос
// параметров хранилища по ссылке лучшего битрейта. Любой сбой дает
// (_, false).
func (c *Client) DownloadURI(ctx context.Context, trackID int64) (string, bool) {
	fullTimestamp := c.now().UnixMilli()
	timestamp := fullTimestamp / 1000
	sign := SignDownloadRequest(c.secretKey, trackID, timestamp)

	params := url.Values{}
	params.Set("preview", "false")
	params.Set("direct", "false")
	params.Set("isAliceRequester", "false")
	params.Set("requireMp3Link", "false")
	params.Set("canUseStreaming", "false")
	params.Set("ts", strconv.FormatInt(timestamp, 10))
	params.Set("sign", sign)

	link := fmt.Sprintf("%s/tracks/%d/download-info?%s", c.baseURL, trackID, params.Encode())
	body, err := c.getJSON(ctx, link)
	if err != nil {
		c.logger.Error("Failed to get download info", zap.Int64("track_id", trackID), zap.Error(err))
		return "", false
	}

	var candidates []downloadCandidate
	if err := json.Unmarshal(body, &candidates); err != nil || len(candidates) == 0 {
		c.logger.Error("No download candidates", zap.Int64("track_id", trackID), zap.Error(err))
		return "", false
	}

	// Выбираем максимальный битрейт; при равенстве остается первый
	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.BitrateKbps > best.BitrateKbps {
			best = candidate
		}
	}

	infoLink := fmt.Sprintf("%s&format=json&__t=%d&external-domain=next.music.yandex.ru&overembed=false",
		best.InfoURL, fullTimestamp)
	body, err = c.getJSON(ctx, infoLink)
	if err != nil {
		c.logger.Error("Failed to get storage info", zap.Int64("track_id", trackID), zap.Error(err))
		return "", false
	}

	var info struct {
		Host string `json:"host"`
		Path string `json:"path"`
		S    string `json:"s"`
		TS   string `json:"ts"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		c.logger.Error("Failed to parse storage info", zap.Int64("track_id", trackID), zap.Error(err))
		return "", false
	}
	if info.Host == "" || info.Path == "" || info.S == "" || info.TS == "" {
		c.logger.Error("Storage info is incomplete", zap.Int64("track_id", trackID))
		return "", false
	}

	hash := ContentHash(c.secretKey, info.Path, info.S)
	return fmt.Sprintf("https://%s/get-mp3/%s/%s%s?track-id=%d&play=false",
		info.Host, hash, info.TS, info.Path, trackID), true
}

// FetchAudio скачивает аудио по готовой подписанной ссылке.
// Запрашивается полный диапазон байтов, тело возвращается как есть.
func (c *Client) FetchAudio(ctx context.Context, link string) ([]byte, error) {
	req, err := c.newRequest(ctx, link, false)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", "bytes=0-")

	resp, err := c.download.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}
	defer c.closeBody(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("audio download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}
	return data, nil
}

// FetchThumbnail скачивает обложку трека. Запрос идет к CDN обложек,
// поэтому заголовки авторизации не нужны.
func (c *Client) FetchThumbnail(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail request: %w", err)
	}

	resp, err := c.api.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download thumbnail: %w", err)
	}
	defer c.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail body: %w", err)
	}
	return data, nil
}

// getJSON выполняет GET-запрос к API со свежим X-Request-Id и
// возвращает тело успешного ответа
func (c *Client) getJSON(ctx context.Context, link string) ([]byte, error) {
	req, err := c.newRequest(ctx, link, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer c.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// newRequest строит запрос с собственным набором заголовков.
// Общий клиент не мутируется: идентификатор запроса и снимок токена
// живут только в этом запросе.
func (c *Client) newRequest(ctx context.Context, link string, withRequestID bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Yandex-Music-Client", "YandexMusicDesktopAppWindows/5.13.2")
	req.Header.Set("X-Yandex-Music-Frontend", "new")
	req.Header.Set("X-Yandex-Music-Without-Invocation-Info", "1")
	req.Header.Set("Accept-Language", "ru")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", "music-application://desktop")
	req.Header.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) "+
		"YandexMusic/5.13.2 Chrome/118.0.5993.129 Electron/27.0.4 Safari/537.36")
	req.Header.Set("Authorization", "OAuth "+c.tokens.Token())
	if withRequestID {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}

	return req, nil
}

// closeBody закрывает тело ответа с логированием ошибки
func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Warn("Failed to close response body", zap.Error(err))
	}
}
