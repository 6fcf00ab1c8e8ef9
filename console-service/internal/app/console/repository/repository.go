package repository

import (
	"context"
	"errors"

	"stockdesk/console-service/internal/app/console/entity"
)

// ErrNoSession - в хранилище сессии нет записи user.
var ErrNoSession = errors.New("no active session")

// SessionKey - ключ записи пользователя (как в localStorage браузера).
const SessionKey = "user"

// SessionRepository хранит запись текущего пользователя.
type SessionRepository interface {
	Load(ctx context.Context) (*entity.User, error)
	Save(ctx context.Context, user *entity.User) error
	Clear(ctx context.Context) error
}

// ActivityRepository - журнал результатов операций хранилищ.
type ActivityRepository interface {
	Create(ctx context.Context, log *entity.ActivityLog) error
	ListRecent(ctx context.Context, resource string, limit int) ([]entity.ActivityLog, error)
}
