package registry

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"goflare.io/checkout/models"
)

type memoryRepository struct {
	orders   *expirable.LRU[string, models.OrderContext]
	outcomes *expirable.LRU[string, models.SessionOutcome]
	mu       sync.Mutex
}

// NewMemoryRepository keeps at most size entries of each kind, each for at
// most ttl. A zero ttl disables expiry.
func NewMemoryRepository(size int, ttl time.Duration) Repository {
	if size <= 0 {
		size = 10000
	}
	return &memoryRepository{
		orders:   expirable.NewLRU[string, models.OrderContext](size, nil, ttl),
		outcomes: expirable.NewLRU[string, models.SessionOutcome](size, nil, ttl),
	}
}

func (r *memoryRepository) Put(_ context.Context, sessionID string, order *models.OrderContext) error {
	r.orders.Add(sessionID, *order)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, sessionID string) (*models.OrderContext, bool, error) {
	order, ok := r.orders.Get(sessionID)
	if !ok {
		return nil, false, nil
	}
	return &order, true, nil
}

func (r *memoryRepository) PutOutcome(_ context.Context, outcome *models.SessionOutcome) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcomes.Contains(outcome.SessionID) {
		return false, nil
	}
	r.outcomes.Add(outcome.SessionID, *outcome)
	return true, nil
}

func (r *memoryRepository) GetOutcome(_ context.Context, sessionID string) (*models.SessionOutcome, bool, error) {
	outcome, ok := r.outcomes.Get(sessionID)
	if !ok {
		return nil, false, nil
	}
	return &outcome, true, nil
}
