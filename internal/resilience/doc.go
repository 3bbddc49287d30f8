// Package resilience provides the fault tolerance patterns the gateway
// relies on when its backing stores misbehave.
//
// The circuitbreaker subpackage guards the durable cache tier: a dead
// Redis trips the breaker so requests fall back to the local tier
// immediately instead of timing out one by one. The retry subpackage
// covers the startup database ping only; request handling never retries,
// a client must resubmit.
//
//	cb := circuitbreaker.New(circuitbreaker.RedisCacheConfig())
//	store := cache.NewBreakerStore(redisStore, cb)
//
//	err := retry.WithBackoff(ctx, retry.StartupDBConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
package resilience
