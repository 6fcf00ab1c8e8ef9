package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound - бэкенд не знает запись с таким id.
// Для update и remove это не ошибка: коллекция просто не меняется.
var ErrNotFound = errors.New("record not found")

// UserMessager реализуют ошибки, несущие текст для пользователя (поле message/error ответа сервера).
type UserMessager interface {
	UserMessage() string
}

// OpError - ошибка операции хранилища с уже извлечённым сообщением.
type OpError struct {
	Resource string
	Op       Op
	Message  string
	Err      error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Resource, e.Message, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// ExtractMessage возвращает сообщение сервера, а если его нет - fallback.
func ExtractMessage(err error, fallback string) string {
	var um UserMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}

// fallbackMessage: "Failed to load purchases", "Failed to add purchase" и т.д.
func fallbackMessage(op Op, resource, singular string) string {
	switch op {
	case OpFetch:
		return "Failed to load " + resource
	case OpAdd:
		return "Failed to add " + singular
	case OpUpdate:
		return "Failed to update " + singular
	default:
		return "Failed to delete " + singular
	}
}

func successMessage(op Op, singular string) string {
	title := singular
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}
	switch op {
	case OpAdd:
		return title + " added"
	case OpUpdate:
		return title + " updated"
	case OpRemove:
		return title + " deleted"
	default:
		return title + " list loaded"
	}
}
