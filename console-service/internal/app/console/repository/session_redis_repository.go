package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/pkg/metrics"
)

const (
	redisSessionKey = "session:" + SessionKey
	metricsService  = "console"
)

// redisSessionRepository хранит сессию в Redis с TTL
type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{client: client, ttl: ttl}
}

func (r *redisSessionRepository) Load(ctx context.Context) (*entity.User, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpGet)
	data, err := r.client.Get(ctx, redisSessionKey).Bytes()
	timer.ObserveDuration()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var user entity.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session user: %w", err)
	}
	return &user, nil
}

func (r *redisSessionRepository) Save(ctx context.Context, user *entity.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session user: %w", err)
	}

	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSet)
	defer timer.ObserveDuration()
	if err := r.client.Set(ctx, redisSessionKey, data, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSet)
		return fmt.Errorf("failed to set session in redis: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Clear(ctx context.Context) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()
	if err := r.client.Del(ctx, redisSessionKey).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}
