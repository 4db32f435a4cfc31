package yandex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:         baseURL,
		SecretKey:       "test-secret",
		RequestTimeout:  5 * time.Second,
		DownloadTimeout: 5 * time.Second,
	}, staticTokens("test-token"), zap.NewNop())
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "OAuth test-token" {
			t.Errorf("Authorization = %q, want %q", got, "OAuth test-token")
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("X-Request-Id header is missing")
		}
		if got := r.URL.Query().Get("page"); got != "1" {
			t.Errorf("page = %q, want %q", got, "1")
		}
		if got := r.URL.Query().Get("filter"); got != "track" {
			t.Errorf("filter = %q, want %q", got, "track")
		}

		fmt.Fprint(w, `{
			"total": 95,
			"results": [
				{"type": "album", "track": null},
				{"type": "track", "track": {
					"id": 1, "realId": 1, "title": "One", "available": true,
					"durationMs": 1000,
					"artists": [{"id": 7, "name": "Band"}],
					"albums": [{"id": 3, "title": "LP"}],
					"coverUri": "avatars.example.net/img/%%"
				}},
				{"type": "track", "track": {"id": 0}}
			]
		}`)
	}))
	defer server.Close()

	list := newTestClient(server.URL).Search(context.Background(), "band", 30, 30)

	if list.Count != 1 || len(list.Tracks) != 1 {
		t.Fatalf("Count = %d, tracks = %d, want 1", list.Count, len(list.Tracks))
	}
	if list.Total != 95 {
		t.Errorf("Total = %d, want 95", list.Total)
	}
	if list.Tracks[0].Title != "One" {
		t.Errorf("Title = %q, want %q", list.Tracks[0].Title, "One")
	}
	if want := "https://avatars.example.net/img/200x200"; list.Tracks[0].Thumbnail != want {
		t.Errorf("Thumbnail = %q, want %q", list.Tracks[0].Thumbnail, want)
	}
}

func TestSearch_EmptyAndBroken(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "no matches",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"total": 0, "results": []}`)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `<html>error</html>`)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			list := newTestClient(server.URL).Search(context.Background(), "anything", 30, 0)
			if list.Count != 0 || list.Total != 0 || len(list.Tracks) != 0 {
				t.Errorf("Search() = %+v, want empty track list", list)
			}
		})
	}
}

func TestTrackInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("trackIds"); got != "42" {
			t.Errorf("trackIds = %q, want %q", got, "42")
		}
		fmt.Fprint(w, `[{
			"id": 42, "realId": 42, "title": "Answer", "available": true,
			"durationMs": 180000,
			"artists": [{"id": 1, "name": "Band"}],
			"albums": [{"id": 2, "title": "LP"}],
			"coverUri": "avatars.example.net/img/%%"
		}]`)
	}))
	defer server.Close()

	track := newTestClient(server.URL).TrackInfo(context.Background(), 42)
	if track == nil {
		t.Fatal("TrackInfo() = nil, want track")
	}
	if track.ID != 42 || track.Title != "Answer" {
		t.Errorf("track = %+v, want id 42 title Answer", track)
	}
}

func TestTrackInfo_Absent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty array", `[]`},
		{"not json", `nope`},
		{"malformed track", `[{"id": 42}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			if track := newTestClient(server.URL).TrackInfo(context.Background(), 42); track != nil {
				t.Errorf("TrackInfo() = %+v, want nil", track)
			}
		})
	}
}

func TestDownloadURI(t *testing.T) {
	var infoRequested string
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/tracks/42/download-info", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ts := q.Get("ts")
		sign := q.Get("sign")
		if ts == "" || sign == "" {
			t.Error("download-info request is missing ts or sign")
		}
		var unixTime int64
		fmt.Sscanf(ts, "%d", &unixTime)
		if want := SignDownloadRequest("test-secret", 42, unixTime); sign != want {
			t.Errorf("sign = %q, want %q", sign, want)
		}
		fmt.Fprintf(w, `[
			{"bitrateInKbps": 128, "downloadInfoUrl": "%[1]s/info/128?codec=mp3"},
			{"bitrateInKbps": 320, "downloadInfoUrl": "%[1]s/info/320?codec=mp3"},
			{"bitrateInKbps": 192, "downloadInfoUrl": "%[1]s/info/192?codec=mp3"},
			{"bitrateInKbps": 320, "downloadInfoUrl": "%[1]s/info/320-dup?codec=mp3"}
		]`, server.URL)
	})
	mux.HandleFunc("/info/", func(w http.ResponseWriter, r *http.Request) {
		infoRequested = r.URL.Path
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("storage info request is missing X-Request-Id")
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		fmt.Fprint(w, `{"host": "storage.example.net", "path": "/rmusic/file.mp3", "s": "salt", "ts": "6121"}`)
	})

	link, ok := newTestClient(server.URL).DownloadURI(context.Background(), 42)
	if !ok {
		t.Fatal("DownloadURI() = absent, want link")
	}

	// Выигрывает максимальный битрейт, при равенстве первый встреченный
	if infoRequested != "/info/320" {
		t.Errorf("info url = %q, want /info/320", infoRequested)
	}

	hash := ContentHash("test-secret", "/rmusic/file.mp3", "salt")
	want := fmt.Sprintf("https://storage.example.net/get-mp3/%s/6121/rmusic/file.mp3?track-id=42&play=false", hash)
	if link != want {
		t.Errorf("DownloadURI() = %q, want %q", link, want)
	}
}

func TestDownloadURI_Absent(t *testing.T) {
	tests := []struct {
		name string
		info string
		list string
	}{
		{"no candidates", ``, `[]`},
		{"incomplete storage info", `{"host": "h", "path": "", "s": "x", "ts": "1"}`, ``},
		{"broken storage info", `garbage`, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			server := httptest.NewServer(mux)
			defer server.Close()

			mux.HandleFunc("/tracks/42/download-info", func(w http.ResponseWriter, r *http.Request) {
				if tt.list != "" {
					fmt.Fprint(w, tt.list)
					return
				}
				fmt.Fprintf(w, `[{"bitrateInKbps": 320, "downloadInfoUrl": "%s/info/320?codec=mp3"}]`, server.URL)
			})
			mux.HandleFunc("/info/", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.info)
			})

			if link, ok := newTestClient(server.URL).DownloadURI(context.Background(), 42); ok {
				t.Errorf("DownloadURI() = %q, want absent", link)
			}
		})
	}
}

func TestFetchAudio(t *testing.T) {
	payload := []byte("mp3-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Range"); got != "bytes=0-" {
			t.Errorf("Range = %q, want %q", got, "bytes=0-")
		}
		if r.Header.Get("X-Request-Id") != "" {
			t.Error("binary fetch must not carry X-Request-Id")
		}
		w.WriteHeader(http.StatusPartialContent)
		if _, err := w.Write(payload); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer server.Close()

	data, err := newTestClient(server.URL).FetchAudio(context.Background(), server.URL+"/get-mp3/x")
	if err != nil {
		t.Fatalf("FetchAudio() error = %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("FetchAudio() = %q, want %q", data, payload)
	}
}

func TestFetchThumbnail_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).FetchThumbnail(context.Background(), server.URL+"/img"); err == nil {
		t.Error("FetchThumbnail() error = nil, want error on 404")
	}
}
