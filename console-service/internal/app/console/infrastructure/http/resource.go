package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"stockdesk/console-service/internal/app/console/ingest"
	"stockdesk/console-service/internal/app/console/store"
)

// Resource - store.Backend поверх REST-коллекции:
// GET/POST /<path>, PUT/DELETE /<path>/:id.
type Resource[T any] struct {
	client *APIClient
	path   string
	decode func(gjson.Result) T
}

func NewResource[T any](client *APIClient, path string, decode func(gjson.Result) T) *Resource[T] {
	return &Resource[T]{client: client, path: "/" + path, decode: decode}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	body, err := r.client.Do(ctx, http.MethodGet, r.path, nil)
	if err != nil {
		return nil, err
	}

	rows, err := ingest.List(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", r.path, err)
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.decode(row))
	}
	return out, nil
}

// Create отправляет черновик без id; id назначает сервер.
func (r *Resource[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T

	raw, err := json.Marshal(draft)
	if err != nil {
		return zero, fmt.Errorf("failed to encode draft: %w", err)
	}
	raw, err = sjson.DeleteBytes(raw, store.IDKey)
	if err != nil {
		return zero, fmt.Errorf("failed to strip id: %w", err)
	}

	body, err := r.client.Do(ctx, http.MethodPost, r.path, raw)
	if err != nil {
		return zero, err
	}
	return r.decode(ingest.Object(body)), nil
}

// Update - тело ответа не используется, слияние выполняет хранилище.
func (r *Resource[T]) Update(ctx context.Context, id int64, patch store.Patch) error {
	fields := make(map[string]any, len(patch))
	for k, v := range patch {
		if k != store.IDKey {
			fields[k] = v
		}
	}
	_, err := r.client.Do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", r.path, id), fields)
	return err
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	_, err := r.client.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", r.path, id), nil)
	return err
}
