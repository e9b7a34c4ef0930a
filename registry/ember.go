package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"goflare.io/ember"
	"goflare.io/ignite"

	"goflare.io/checkout/models"
)

// emberRepository keeps entries in redis through ember. Entries expire after
// the cache's default expiration, which ProvideEmber takes from the registry
// TTL. Outcomes are settled with SETNX, so several instances may share one
// redis. Decode targets come from an ignite pool.
type emberRepository struct {
	cache       *ember.MultiCache
	poolManager ignite.Manager
	logger      *zap.Logger
}

func NewEmberRepository(cache *ember.MultiCache, poolManager ignite.Manager, logger *zap.Logger) (Repository, error) {
	if err := poolManager.RegisterPool(reflect.TypeOf(&models.OrderContext{}), ignite.Config[any]{
		InitialSize: 10,
		MaxSize:     100,
		MaxIdleTime: 10 * time.Minute,
		Factory: func() (any, error) {
			return models.NewOrderContext(), nil
		},
		Reset: func(obj any) error {
			o := obj.(*models.OrderContext)
			*o = models.OrderContext{}
			return nil
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to register order context pool: %w", err)
	}

	return &emberRepository{
		cache:       cache,
		poolManager: poolManager,
		logger:      logger,
	}, nil
}

func (r *emberRepository) getFromPool(ctx context.Context) (*models.OrderContext, func(), error) {
	pool, err := r.poolManager.GetPool(reflect.TypeOf(&models.OrderContext{}))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pool: %w", err)
	}

	objWrapper, err := pool.Get(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get object from pool: %w", err)
	}

	order := objWrapper.Object.(*models.OrderContext)
	release := func() {
		pool.Put(objWrapper)
	}

	return order, release, nil
}

func (r *emberRepository) Put(ctx context.Context, sessionID string, order *models.OrderContext) error {
	if err := r.cache.Set(ctx, orderKey(sessionID), order); err != nil {
		return fmt.Errorf("failed to cache order context: %w", err)
	}
	return nil
}

func (r *emberRepository) Get(ctx context.Context, sessionID string) (*models.OrderContext, bool, error) {

	pooled, release, err := r.getFromPool(ctx)
	if err != nil {
		return nil, false, err
	}
	defer release()

	// pooled objects are not reset on release, and omitted fields would
	// otherwise keep the previous lookup's values
	*pooled = models.OrderContext{}

	found, err := r.cache.Get(ctx, orderKey(sessionID), pooled)
	if errors.Is(err, ember.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get order context from cache: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	// the pooled object goes back on release
	order := *pooled
	return &order, true, nil
}

func (r *emberRepository) PutOutcome(ctx context.Context, outcome *models.SessionOutcome) (bool, error) {
	stored, err := r.cache.SetNX(ctx, outcomeKey(outcome.SessionID), outcome)
	if err != nil {
		return false, fmt.Errorf("failed to cache outcome: %w", err)
	}
	if !stored {
		r.logger.Debug("Outcome already settled", zap.String("session_id", outcome.SessionID))
	}
	return stored, nil
}

func (r *emberRepository) GetOutcome(ctx context.Context, sessionID string) (*models.SessionOutcome, bool, error) {
	var outcome models.SessionOutcome
	found, err := r.cache.Get(ctx, outcomeKey(sessionID), &outcome)
	if errors.Is(err, ember.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get outcome from cache: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &outcome, true, nil
}
