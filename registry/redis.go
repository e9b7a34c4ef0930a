package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"goflare.io/checkout/models"
)

type redisRepository struct {
	conn *redis.Client
	ttl  time.Duration
}

func NewRedisRepository(conn *redis.Client, ttl time.Duration) Repository {
	return &redisRepository{conn: conn, ttl: ttl}
}

func (r *redisRepository) Put(ctx context.Context, sessionID string, order *models.OrderContext) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order context: %w", err)
	}
	if err = r.conn.Set(ctx, orderKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store order context: %w", err)
	}
	return nil
}

func (r *redisRepository) Get(ctx context.Context, sessionID string) (*models.OrderContext, bool, error) {
	data, err := r.conn.Get(ctx, orderKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load order context: %w", err)
	}

	order := models.NewOrderContext()
	if err = json.Unmarshal(data, order); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal order context: %w", err)
	}
	return order, true, nil
}

func (r *redisRepository) PutOutcome(ctx context.Context, outcome *models.SessionOutcome) (bool, error) {
	data, err := json.Marshal(outcome)
	if err != nil {
		return false, fmt.Errorf("failed to marshal outcome: %w", err)
	}
	stored, err := r.conn.SetNX(ctx, outcomeKey(outcome.SessionID), data, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to store outcome: %w", err)
	}
	return stored, nil
}

func (r *redisRepository) GetOutcome(ctx context.Context, sessionID string) (*models.SessionOutcome, bool, error) {
	data, err := r.conn.Get(ctx, outcomeKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load outcome: %w", err)
	}

	var outcome models.SessionOutcome
	if err = json.Unmarshal(data, &outcome); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}
	return &outcome, true, nil
}
