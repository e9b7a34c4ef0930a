package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"goflare.io/ignite"

	"goflare.io/checkout/config"
	"goflare.io/checkout/models"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendEmber  = "ember"

	orderKeyPrefix   = "checkout:order:"
	outcomeKeyPrefix = "checkout:outcome:"
)

// Repository stores order contexts and outcomes keyed by provider session id.
// Entries expire after the configured TTL; there is no update or delete.
type Repository interface {
	// Put stores the context, replacing any previous entry for the id.
	Put(ctx context.Context, sessionID string, order *models.OrderContext) error
	// Get returns (nil, false, nil) when nothing is stored for the id.
	Get(ctx context.Context, sessionID string) (*models.OrderContext, bool, error)
	// PutOutcome stores the outcome unless one exists already and reports
	// whether it was stored.
	PutOutcome(ctx context.Context, outcome *models.SessionOutcome) (bool, error)
	GetOutcome(ctx context.Context, sessionID string) (*models.SessionOutcome, bool, error)
}

// ProvideRepository builds the backend selected by registry.backend.
func ProvideRepository(appConfig *config.Config, poolManager ignite.Manager, logger *zap.Logger) (Repository, error) {

	logger.Info("Session registry backend selected",
		zap.String("backend", appConfig.Registry.Backend),
		zap.Duration("ttl", appConfig.Registry.TTL))

	switch appConfig.Registry.Backend {
	case "", BackendMemory:
		return NewMemoryRepository(appConfig.Registry.Size, appConfig.Registry.TTL), nil
	case BackendRedis:
		conn, err := config.ProvideRedis(appConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisRepository(conn, appConfig.Registry.TTL), nil
	case BackendEmber:
		conn, err := config.ProvideRedis(appConfig)
		if err != nil {
			return nil, err
		}
		cache, err := config.ProvideEmber(appConfig, conn, logger)
		if err != nil {
			return nil, err
		}
		return NewEmberRepository(cache, poolManager, logger)
	default:
		return nil, fmt.Errorf("unknown registry backend %q", appConfig.Registry.Backend)
	}
}

func orderKey(sessionID string) string {
	return orderKeyPrefix + sessionID
}

func outcomeKey(sessionID string) string {
	return outcomeKeyPrefix + sessionID
}
