// Package session хранит авторизационный токен Яндекс Музыки.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// record формат файла с токеном; файл перезаписывается целиком
type record struct {
	Token string `json:"token"`
}

// Store хранит токен в памяти и в файле. Чтение отдает консистентный
// снимок; замена выполняется строго последовательно под блокировкой,
// чтобы запрос в полете не увидел наполовину обновленный токен.
type Store struct {
	path  string
	mu    sync.RWMutex
	token string
}

// NewStore создает хранилище токена с указанным путем к файлу
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load читает токен из файла
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read token file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to parse token file: %w", err)
	}
	if rec.Token == "" {
		return fmt.Errorf("token file %s contains no token", s.path)
	}

	s.mu.Lock()
	s.token = rec.Token
	s.mu.Unlock()
	return nil
}

// Token возвращает текущий снимок токена
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Replace заменяет токен и перезаписывает файл целиком
func (s *Store) Replace(token string) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(record{Token: token})
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	s.token = token
	return nil
}
