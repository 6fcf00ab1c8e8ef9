package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"stockdesk/console-service/internal/app/console/store"
	"stockdesk/pkg/metrics"
)

// TokenSource отдаёт токен текущей сессии; пустая строка - сессии нет.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc адаптирует функцию к TokenSource.
type TokenFunc func(ctx context.Context) string

func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// APIError - ответ сервера с кодом не 2xx.
type APIError struct {
	StatusCode int
	Message    string // поле message или error тела ответа
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) UserMessage() string {
	return e.Message
}

// Is делает 404 совместимым с store.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == store.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// APIClient - клиент REST API инвентаря.
// К каждому запросу добавляется Authorization: Bearer <token>, если сессия есть.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewAPIClient(baseURL string, timeout time.Duration, tokens TokenSource) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
	}
}

// Do выполняет запрос и возвращает тело успешного ответа.
func (c *APIClient) Do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, ok := payload.([]byte)
		if !ok {
			var err error
			raw, err = json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request: %w", err)
			}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	timer := metrics.NewUpstreamTimer(resourceLabel(path), method)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		timer.Done(0)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	timer.Done(resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage: message, затем error. Строковое тело тоже считается сообщением.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	root := gjson.ParseBytes(body)
	for _, key := range []string{"message", "error"} {
		if v := root.Get(key); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	if root.Type == gjson.String {
		return root.Str
	}
	return ""
}

// resourceLabel - первый сегмент пути для меток метрик.
func resourceLabel(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
