package newsletter

import (
	"context"
	"fmt"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"time"
)

// Limiter allows at most limit hits per key in each fixed window. A zero
// limit disables it.
type Limiter struct {
	rate *limiter.Limiter
}

func NewLimiter(limit int, period time.Duration) *Limiter {
	if limit <= 0 {
		return &Limiter{}
	}
	if period <= 0 {
		period = time.Hour
	}
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "newsletter",
		CleanUpInterval: period,
	})
	return &Limiter{rate: limiter.New(store, limiter.Rate{Period: period, Limit: int64(limit)})}
}

func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.rate == nil {
		return true, nil
	}
	lc, err := l.rate.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return !lc.Reached, nil
}
