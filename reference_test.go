package checkout

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goflare.io/checkout/models/enum"
)

func TestReferenceGeneratorFormat(t *testing.T) {
	g := NewReferenceGenerator()
	g.now = func() time.Time { return time.Unix(0, 1000) }

	assert.Equal(t, "shopify-5001-1000", g.Next(enum.OriginOrder, "5001"))
	// same clock reading still yields a new suffix
	assert.Equal(t, "shopify-5001-1001", g.Next(enum.OriginOrder, "5001"))
	assert.Equal(t, "checkout-1002", g.Next(enum.OriginLink, ""))
}

func TestReferenceGeneratorConcurrentUnique(t *testing.T) {
	g := NewReferenceGenerator()

	const n = 200
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[string]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref := g.Next(enum.OriginOrder, "42")
			mu.Lock()
			seen[ref] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for ref := range seen {
		assert.True(t, strings.HasPrefix(ref, "shopify-42-"))
	}
}
