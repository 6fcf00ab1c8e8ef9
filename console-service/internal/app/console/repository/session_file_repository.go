package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"stockdesk/console-service/internal/app/console/entity"
)

// fileSessionRepository держит JSON-документ вида {"user": {...}}.
// Остальные ключи документа сохраняются как есть.
type fileSessionRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileSessionRepository(path string) SessionRepository {
	return &fileSessionRepository{path: path}
}

func (r *fileSessionRepository) Load(ctx context.Context) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	raw, ok := doc[SessionKey]
	if !ok || string(raw) == "null" {
		return nil, ErrNoSession
	}

	var user entity.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session user: %w", err)
	}
	return &user, nil
}

func (r *fileSessionRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil && !errors.Is(err, ErrNoSession) {
		return err
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session user: %w", err)
	}
	doc[SessionKey] = raw
	return r.write(doc)
}

func (r *fileSessionRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	delete(doc, SessionKey)
	return r.write(doc)
}

// read возвращает ErrNoSession, если файла ещё нет.
func (r *fileSessionRepository) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return doc, nil
}

// write пишет через временный файл, чтобы не оставить документ наполовину записанным.
func (r *fileSessionRepository) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
