package checkout

import (
	"fmt"
	"sync/atomic"
	"time"

	"goflare.io/checkout/models/enum"
)

// ReferenceGenerator builds provider references of the form
// <origin>-<orderId>-<nanos>. The nanosecond suffix strictly increases within
// the process, so two attempts for the same order never share a reference.
type ReferenceGenerator struct {
	last atomic.Int64
	now  func() time.Time
}

func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{now: time.Now}
}

func (g *ReferenceGenerator) Next(origin enum.Origin, orderID string) string {
	var next int64
	for {
		last := g.last.Load()
		next = g.now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if g.last.CompareAndSwap(last, next) {
			break
		}
	}

	if orderID == "" {
		return fmt.Sprintf("%s-%d", origin, next)
	}
	return fmt.Sprintf("%s-%s-%d", origin, orderID, next)
}
