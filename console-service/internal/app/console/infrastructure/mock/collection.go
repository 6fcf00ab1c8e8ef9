// Package mock - in-memory бэкенд хранилищ для работы без REST API.
// Каждая коллекция создаётся явно и передаётся в хранилище; глобального состояния нет.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stockdesk/console-service/internal/app/console/store"
)

// AssignFunc проставляет новой записи id и значения по умолчанию (например createdAt).
type AssignFunc[T any] func(draft T, id int64, now time.Time) T

type Collection[T any] struct {
	resource string
	id       func(T) int64
	assign   AssignFunc[T]
	latency  time.Duration
	clock    func() time.Time

	mu     sync.Mutex
	items  []T
	lastID int64
}

type Option[T any] func(*Collection[T])

// WithLatency имитирует сетевую задержку; ожидание прерывается контекстом.
func WithLatency[T any](d time.Duration) Option[T] {
	return func(c *Collection[T]) { c.latency = d }
}

func WithClock[T any](clock func() time.Time) Option[T] {
	return func(c *Collection[T]) { c.clock = clock }
}

// WithSeed задаёт начальные записи.
func WithSeed[T any](items ...T) Option[T] {
	return func(c *Collection[T]) { c.items = append(c.items, items...) }
}

func NewCollection[T any](resource string, id func(T) int64, assign AssignFunc[T], opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{
		resource: resource,
		id:       id,
		assign:   assign,
		clock:    time.Now,
		items:    []T{},
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, item := range c.items {
		if v := id(item); v > c.lastID {
			c.lastID = v
		}
	}
	return c
}

// List возвращает коллекцию как есть.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out, nil
}

func (c *Collection[T]) Create(ctx context.Context, draft T) (T, error) {
	if err := c.wait(ctx); err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	item := c.assign(draft, c.nextID(now), now)
	c.items = append(c.items, item)
	return item, nil
}

// Update сливает патч с записью; отсутствующую запись не создаёт.
func (c *Collection[T]) Update(ctx context.Context, id int64, patch store.Patch) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if c.id(item) != id {
			continue
		}
		merged, err := store.Merge(item, patch)
		if err != nil {
			return err
		}
		c.items[i] = merged
		return nil
	}
	return fmt.Errorf("%s %d: %w", c.resource, id, store.ErrNotFound)
}

func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if c.id(item) != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(c.items) {
		return fmt.Errorf("%s %d: %w", c.resource, id, store.ErrNotFound)
	}
	c.items = kept
	return nil
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// nextID - миллисекунды часов, но строго больше предыдущего id.
func (c *Collection[T]) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

func (c *Collection[T]) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
