package bot

import (
	"testing"

	"ymbot/internal/yandex"
)

func sampleList(count, total int) yandex.TrackList {
	tracks := make([]yandex.Track, 0, count)
	for i := 0; i < count; i++ {
		tracks = append(tracks, yandex.Track{
			ID:      int64(i + 1),
			Title:   "Song",
			Artists: []yandex.Artist{{ID: 1, Name: "Band"}},
			Albums:  []yandex.Album{{ID: 5, Title: "LP"}},
		})
	}
	return yandex.TrackList{Tracks: tracks, Count: count, Total: total}
}

func TestSearchKeyboard(t *testing.T) {
	kb := searchKeyboard(sampleList(3, 40), 1, "query")

	// Три кнопки треков и строка пагинации
	if len(kb.InlineKeyboard) != 4 {
		t.Fatalf("rows = %d, want 4", len(kb.InlineKeyboard))
	}

	first := kb.InlineKeyboard[0][0]
	if first.Text != "Band - Song" {
		t.Errorf("button text = %q, want %q", first.Text, "Band - Song")
	}
	if first.CallbackData == nil || *first.CallbackData != "track:1:5" {
		t.Errorf("button data = %v, want track:1:5", first.CallbackData)
	}

	pagination := kb.InlineKeyboard[3]
	if len(pagination) != 3 {
		t.Fatalf("pagination buttons = %d, want 3", len(pagination))
	}
	if *pagination[0].CallbackData != "list:0:query" {
		t.Errorf("back data = %q, want list:0:query", *pagination[0].CallbackData)
	}
	if pagination[1].Text != "[2/3]" {
		t.Errorf("page counter = %q, want [2/3]", pagination[1].Text)
	}
	if *pagination[2].CallbackData != "list:2:query" {
		t.Errorf("forward data = %q, want list:2:query", *pagination[2].CallbackData)
	}
}

func TestPaginationRow_Bounds(t *testing.T) {
	// Первая страница: нет кнопки назад
	row := paginationRow(0, 40, "q")
	if len(row) != 2 {
		t.Fatalf("first page buttons = %d, want 2", len(row))
	}
	if row[0].Text != "[1/3]" {
		t.Errorf("counter = %q, want [1/3]", row[0].Text)
	}

	// Последняя страница: нет кнопки вперед
	row = paginationRow(2, 40, "q")
	if len(row) != 2 {
		t.Fatalf("last page buttons = %d, want 2", len(row))
	}
	if *row[0].CallbackData != "list:1:q" {
		t.Errorf("back data = %q, want list:1:q", *row[0].CallbackData)
	}

	// Единственная страница
	row = paginationRow(0, 5, "q")
	if len(row) != 1 || row[0].Text != "[1/1]" {
		t.Errorf("single page row = %v, want only [1/1]", row)
	}
}

func TestParseResultID(t *testing.T) {
	id, err := parseResultID("12345:678")
	if err != nil {
		t.Fatalf("parseResultID() error = %v", err)
	}
	if id != 12345 {
		t.Errorf("parseResultID() = %d, want 12345", id)
	}

	if _, err := parseResultID("abc:1"); err == nil {
		t.Error("parseResultID() error = nil for a malformed id")
	}
	if _, err := parseResultID(""); err == nil {
		t.Error("parseResultID() error = nil for an empty id")
	}
}
