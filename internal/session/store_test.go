package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_LoadAndReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"token": "initial"}`), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := store.Token(); got != "initial" {
		t.Errorf("Token() = %q, want %q", got, "initial")
	}

	if err := store.Replace("rotated"); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if got := store.Token(); got != "rotated" {
		t.Errorf("Token() = %q, want %q", got, "rotated")
	}

	// Файл переписывается целиком: повторная загрузка видит новый токен
	fresh := NewStore(path)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load() after Replace() error = %v", err)
	}
	if got := fresh.Token(); got != "rotated" {
		t.Errorf("Token() after reload = %q, want %q", got, "rotated")
	}
}

func TestStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	missing := NewStore(filepath.Join(dir, "absent.json"))
	if err := missing.Load(); err == nil {
		t.Error("Load() error = nil for a missing file")
	}

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`not json`), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := NewStore(broken).Load(); err == nil {
		t.Error("Load() error = nil for a malformed file")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{"token": ""}`), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := NewStore(empty).Load(); err == nil {
		t.Error("Load() error = nil for an empty token")
	}
}

func TestStore_ReplaceEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "config.json"))
	if err := store.Replace(""); err == nil {
		t.Error("Replace(\"\") error = nil, want error")
	}
}
