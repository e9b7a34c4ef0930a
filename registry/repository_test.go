package registry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/ignite"

	"goflare.io/checkout/config"
	"goflare.io/checkout/models"
	"goflare.io/checkout/models/enum"
)

func newMiniredisRepository(t *testing.T, ttl time.Duration) (Repository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	conn := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = conn.Close() })
	return NewRedisRepository(conn, ttl), server
}

func newEmberRepository(t *testing.T) Repository {
	t.Helper()
	server := miniredis.RunT(t)
	conn := redis.NewClient(&redis.Options{Addr: server.Addr()})

	cfg := &config.Config{}
	cfg.Registry.TTL = time.Hour
	cache, err := config.ProvideEmber(cfg, conn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	repo, err := NewEmberRepository(cache, ignite.NewManager(), zap.NewNop())
	require.NoError(t, err)
	return repo
}

func testOrder(orderID string) *models.OrderContext {
	return &models.OrderContext{
		SessionID: "chk_" + orderID,
		OrderID:   orderID,
		Reference: "shopify-" + orderID + "-1",
		Amount:    decimal.RequireFromString("19.99"),
		Currency:  "EUR",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRepositoryContract(t *testing.T) {
	backends := map[string]func(t *testing.T) Repository{
		BackendMemory: func(*testing.T) Repository { return NewMemoryRepository(100, time.Hour) },
		BackendRedis: func(t *testing.T) Repository {
			repo, _ := newMiniredisRepository(t, time.Hour)
			return repo
		},
		BackendEmber: newEmberRepository,
	}

	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("get after put", func(t *testing.T) {
				repo := build(t)
				order := testOrder("5001")
				require.NoError(t, repo.Put(ctx, "chk_5001", order))

				got, found, err := repo.Get(ctx, "chk_5001")
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, "5001", got.OrderID)
				assert.True(t, order.Amount.Equal(got.Amount))
				assert.Equal(t, order.Reference, got.Reference)
				assert.True(t, order.CreatedAt.Equal(got.CreatedAt))
			})

			t.Run("absent id", func(t *testing.T) {
				repo := build(t)
				got, found, err := repo.Get(ctx, "missing")
				require.NoError(t, err)
				assert.False(t, found)
				assert.Nil(t, got)
			})

			t.Run("repeated misses stay absent", func(t *testing.T) {
				repo := build(t)
				for i := 0; i < 10; i++ {
					_, found, err := repo.Get(ctx, "missing")
					require.NoError(t, err)
					assert.False(t, found)

					_, found, err = repo.GetOutcome(ctx, "missing")
					require.NoError(t, err)
					assert.False(t, found)
				}

				require.NoError(t, repo.Put(ctx, "chk_1", testOrder("1")))
				_, found, err := repo.Get(ctx, "chk_1")
				require.NoError(t, err)
				assert.True(t, found)
			})

			t.Run("lookups do not share fields", func(t *testing.T) {
				repo := build(t)
				withShop := testOrder("1")
				withShop.ShopDomain = "shop.example.com"
				withShop.ReturnURL = "https://shop.example.com/orders/1"
				require.NoError(t, repo.Put(ctx, "chk_1", withShop))
				require.NoError(t, repo.Put(ctx, "chk_2", testOrder("2")))

				got, found, err := repo.Get(ctx, "chk_1")
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, "shop.example.com", got.ShopDomain)

				got, found, err = repo.Get(ctx, "chk_2")
				require.NoError(t, err)
				require.True(t, found)
				assert.Empty(t, got.ShopDomain)
				assert.Empty(t, got.ReturnURL)
			})

			t.Run("last write wins", func(t *testing.T) {
				repo := build(t)
				require.NoError(t, repo.Put(ctx, "chk", testOrder("1")))
				require.NoError(t, repo.Put(ctx, "chk", testOrder("2")))

				got, found, err := repo.Get(ctx, "chk")
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, "2", got.OrderID)
			})

			t.Run("stored copy is independent", func(t *testing.T) {
				repo := build(t)
				order := testOrder("7")
				require.NoError(t, repo.Put(ctx, "chk_7", order))
				order.OrderID = "mutated"

				got, _, err := repo.Get(ctx, "chk_7")
				require.NoError(t, err)
				assert.Equal(t, "7", got.OrderID)
			})

			t.Run("outcome is written once", func(t *testing.T) {
				repo := build(t)
				first := &models.SessionOutcome{SessionID: "chk", Status: enum.SessionStatusPaid, Source: enum.OutcomeSourceWebhook}
				second := &models.SessionOutcome{SessionID: "chk", Status: enum.SessionStatusFailed, Source: enum.OutcomeSourceReturn}

				stored, err := repo.PutOutcome(ctx, first)
				require.NoError(t, err)
				assert.True(t, stored)

				stored, err = repo.PutOutcome(ctx, second)
				require.NoError(t, err)
				assert.False(t, stored)

				got, found, err := repo.GetOutcome(ctx, "chk")
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, enum.SessionStatusPaid, got.Status)
				assert.Equal(t, enum.OutcomeSourceWebhook, got.Source)
			})
		})
	}
}

func TestRedisRepositoryExpires(t *testing.T) {
	repo, server := newMiniredisRepository(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "chk", testOrder("1")))
	server.FastForward(2 * time.Minute)

	_, found, err := repo.Get(ctx, "chk")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEmberRepositorySharesOutcomeAcrossInstances(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()
	cfg := &config.Config{}
	cfg.Registry.TTL = time.Hour

	instance := func() Repository {
		conn := redis.NewClient(&redis.Options{Addr: server.Addr()})
		cache, err := config.ProvideEmber(cfg, conn, zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = cache.Close() })
		repo, err := NewEmberRepository(cache, ignite.NewManager(), zap.NewNop())
		require.NoError(t, err)
		return repo
	}
	first, second := instance(), instance()

	stored, err := first.PutOutcome(ctx, &models.SessionOutcome{SessionID: "chk", Status: enum.SessionStatusPaid, Source: enum.OutcomeSourceWebhook})
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = second.PutOutcome(ctx, &models.SessionOutcome{SessionID: "chk", Status: enum.SessionStatusFailed, Source: enum.OutcomeSourceReturn})
	require.NoError(t, err)
	assert.False(t, stored)

	got, found, err := second.GetOutcome(ctx, "chk")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, enum.SessionStatusPaid, got.Status)
	assert.Greater(t, server.TTL(outcomeKey("chk")), time.Duration(0))
}

func TestMemoryRepositoryBoundsSize(t *testing.T) {
	repo := NewMemoryRepository(2, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "a", testOrder("a")))
	require.NoError(t, repo.Put(ctx, "b", testOrder("b")))
	require.NoError(t, repo.Put(ctx, "c", testOrder("c")))

	_, found, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = repo.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestProvideRepository(t *testing.T) {
	cfg := &config.Config{}
	cfg.Registry.Size = 10
	cfg.Registry.TTL = time.Hour

	repo, err := ProvideRepository(cfg, ignite.NewManager(), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &memoryRepository{}, repo)

	cfg.Registry.Backend = "etcd"
	_, err = ProvideRepository(cfg, ignite.NewManager(), zap.NewNop())
	assert.Error(t, err)
}
