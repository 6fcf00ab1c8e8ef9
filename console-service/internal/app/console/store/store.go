package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"stockdesk/pkg/logger"
	"stockdesk/pkg/metrics"
)

// Status - жизненный цикл загрузки коллекции.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Op - операция хранилища.
type Op string

const (
	OpFetch  Op = "fetch"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

// Backend - источник истины для одной коллекции (REST API или mock).
// Отсутствующая запись сообщается ошибкой, совместимой с ErrNotFound.
type Backend[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id int64, patch Patch) error
	Delete(ctx context.Context, id int64) error
}

// Outcome - результат операции для уведомлений пользователю.
type Outcome struct {
	Resource string
	Op       Op
	EntityID int64
	Success  bool
	Message  string
	At       time.Time
}

// Notifier получает результат каждой мутации и каждой неудачной загрузки.
type Notifier interface {
	Notify(ctx context.Context, outcome Outcome)
}

type Config[T any] struct {
	Resource string           // множественное имя: "purchases"
	Singular string           // "purchase"
	ID       func(T) int64    // извлечение id
	Backend  Backend[T]       // обязателен
	Notifier Notifier         // может быть nil
	Clock    func() time.Time // для тестов; по умолчанию time.Now

	// LastWriterWins возвращает старое поведение: применяется ответ fetch,
	// пришедший последним, даже если после него был начат новый fetch.
	LastWriterWins bool
}

// Snapshot - согласованная копия состояния.
type Snapshot[T any] struct {
	Items           []T     `json:"items"`
	Status          Status  `json:"status"`
	LastError       *string `json:"lastError"`
	PendingDeleteID *int64  `json:"pendingDeleteId"`
}

// Store - клиентский кэш одной коллекции с асинхронными операциями над бэкендом.
// Безопасен для конкурентного использования.
type Store[T any] struct {
	cfg Config[T]

	mu            sync.RWMutex
	items         []T
	status        Status
	lastError     *string
	pendingDelete *int64
	generation    uint64 // номер последнего начатого fetch
}

func New[T any](cfg Config[T]) *Store[T] {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Singular == "" {
		cfg.Singular = cfg.Resource
	}
	return &Store[T]{
		cfg:    cfg,
		items:  []T{},
		status: StatusIdle,
	}
}

func (s *Store[T]) Resource() string {
	return s.cfg.Resource
}

func (s *Store[T]) Singular() string {
	return s.cfg.Singular
}

// FetchAll заменяет коллекцию списком бэкенда.
// Ответ, пришедший после начала более нового fetch, не применяется к состоянию.
func (s *Store[T]) FetchAll(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.status = StatusLoading
	s.lastError = nil
	s.mu.Unlock()

	list, err := s.cfg.Backend.List(ctx)

	s.mu.Lock()
	if !s.cfg.LastWriterWins && gen != s.generation {
		s.mu.Unlock()
		metrics.RecordStaleResponse(s.cfg.Resource)
		logger.Debug().
			Str("resource", s.cfg.Resource).
			Uint64("generation", gen).
			Msg("Discarding superseded fetch response")
		if err != nil {
			return nil, s.opError(OpFetch, err)
		}
		return dedupe(list, s.cfg.ID), nil
	}

	if err != nil {
		opErr := s.opError(OpFetch, err)
		s.status = StatusFailed
		s.lastError = &opErr.Message
		n := len(s.items)
		s.mu.Unlock()

		metrics.RecordStoreOperation(s.cfg.Resource, string(OpFetch), false, n)
		logger.Warn().Err(err).Str("resource", s.cfg.Resource).Msg("Failed to fetch collection")
		s.notify(ctx, OpFetch, 0, false, opErr.Message)
		return nil, opErr
	}

	s.items = dedupe(list, s.cfg.ID)
	s.status = StatusReady
	out := s.copyItems()
	s.mu.Unlock()

	metrics.RecordStoreOperation(s.cfg.Resource, string(OpFetch), true, len(out))
	return out, nil
}

// Refresh - FetchAll без возврата данных.
func (s *Store[T]) Refresh(ctx context.Context) error {
	_, err := s.FetchAll(ctx)
	return err
}

// Add создаёт запись на бэкенде и добавляет результат в конец коллекции.
// Если запись с таким id уже есть, она заменяется на месте.
func (s *Store[T]) Add(ctx context.Context, draft T) (T, error) {
	created, err := s.cfg.Backend.Create(ctx, draft)
	if err != nil {
		var zero T
		return zero, s.fail(ctx, OpAdd, 0, err)
	}

	id := s.cfg.ID(created)
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i] = created
	} else {
		s.items = append(s.items, created)
	}
	n := len(s.items)
	s.mu.Unlock()

	s.succeed(ctx, OpAdd, id, n)
	return created, nil
}

// Update отправляет патч и сливает его с локальной записью.
// Если записи нет локально или на бэкенде, коллекция не меняется,
// а результатом служит сам патч с запрошенным id.
func (s *Store[T]) Update(ctx context.Context, id int64, patch Patch) (T, error) {
	var zero T

	echo, err := FromPatch[T](id, patch)
	if err != nil {
		return zero, s.fail(ctx, OpUpdate, id, err)
	}

	if err := s.cfg.Backend.Update(ctx, id, patch); err != nil && !errors.Is(err, ErrNotFound) {
		return zero, s.fail(ctx, OpUpdate, id, err)
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		n := len(s.items)
		s.mu.Unlock()
		s.succeed(ctx, OpUpdate, id, n)
		return echo, nil
	}

	merged, err := Merge(s.items[i], patch)
	if err != nil {
		s.mu.Unlock()
		return zero, s.fail(ctx, OpUpdate, id, err)
	}
	s.items[i] = merged
	n := len(s.items)
	s.mu.Unlock()

	s.succeed(ctx, OpUpdate, id, n)
	return merged, nil
}

// Remove удаляет запись на бэкенде и локально. Повторное удаление не ошибка.
// pendingDeleteId выставляется на время запроса и снимается при любом исходе,
// если за это время не начали удалять другую запись.
func (s *Store[T]) Remove(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	pending := id
	s.pendingDelete = &pending
	s.mu.Unlock()

	err := s.cfg.Backend.Delete(ctx, id)

	s.mu.Lock()
	if s.pendingDelete != nil && *s.pendingDelete == id {
		s.pendingDelete = nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.mu.Unlock()
		return 0, s.fail(ctx, OpRemove, id, err)
	}

	kept := s.items[:0:0]
	for _, item := range s.items {
		if s.cfg.ID(item) != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	n := len(kept)
	s.mu.Unlock()

	s.succeed(ctx, OpRemove, id, n)
	return id, nil
}

// ClearError сбрасывает lastError, статус не меняется.
func (s *Store[T]) ClearError() {
	s.mu.Lock()
	s.lastError = nil
	s.mu.Unlock()
}

func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot[T]{Items: s.copyItems(), Status: s.status}
	if s.lastError != nil {
		msg := *s.lastError
		snap.LastError = &msg
	}
	if s.pendingDelete != nil {
		id := *s.pendingDelete
		snap.PendingDeleteID = &id
	}
	return snap
}

func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyItems()
}

func (s *Store[T]) Find(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// indexOf вызывается под мьютексом.
func (s *Store[T]) indexOf(id int64) int {
	for i, item := range s.items {
		if s.cfg.ID(item) == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) copyItems() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) opError(op Op, err error) *OpError {
	return &OpError{
		Resource: s.cfg.Resource,
		Op:       op,
		Message:  ExtractMessage(err, fallbackMessage(op, s.cfg.Resource, s.cfg.Singular)),
		Err:      err,
	}
}

func (s *Store[T]) fail(ctx context.Context, op Op, id int64, err error) error {
	opErr := s.opError(op, err)

	s.mu.RLock()
	n := len(s.items)
	s.mu.RUnlock()

	metrics.RecordStoreOperation(s.cfg.Resource, string(op), false, n)
	logger.Warn().
		Err(err).
		Str("resource", s.cfg.Resource).
		Str("operation", string(op)).
		Int64("id", id).
		Msg("Store operation failed")
	s.notify(ctx, op, id, false, opErr.Message)
	return opErr
}

func (s *Store[T]) succeed(ctx context.Context, op Op, id int64, n int) {
	metrics.RecordStoreOperation(s.cfg.Resource, string(op), true, n)
	s.notify(ctx, op, id, true, successMessage(op, s.cfg.Singular))
}

// notify вызывается без мьютекса: получатель может читать хранилище.
func (s *Store[T]) notify(ctx context.Context, op Op, id int64, ok bool, msg string) {
	if s.cfg.Notifier == nil {
		return
	}
	s.cfg.Notifier.Notify(ctx, Outcome{
		Resource: s.cfg.Resource,
		Op:       op,
		EntityID: id,
		Success:  ok,
		Message:  msg,
		At:       s.cfg.Clock(),
	})
}

// dedupe оставляет одну запись на id: позиция первой, значение последней.
func dedupe[T any](list []T, id func(T) int64) []T {
	out := make([]T, 0, len(list))
	pos := make(map[int64]int, len(list))
	for _, item := range list {
		key := id(item)
		if i, ok := pos[key]; ok {
			out[i] = item
			continue
		}
		pos[key] = len(out)
		out = append(out, item)
	}
	return out
}
