package config

// Redis backs the response cache and rate limiter of the API and the session
// store of the web client.  Every consumer treats a nil client as "Redis not
// available" and degrades to a local or no-op implementation.

import (
	"context"
	"crypto/tls"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables:
//
//	REDIS_ENABLED  - "false" skips Redis entirely
//	REDIS_ADDR     - host:port (default localhost:6379)
//	REDIS_HOST/PORT - override REDIS_ADDR when both are set
//	REDIS_PASSWORD - optional password
//	REDIS_DB       - database number (default 0)
//	REDIS_TLS      - enable TLS
//
// It returns nil when Redis is disabled or the initial ping fails.
func NewRedisClient() *redis.Client {
	if !envBool("REDIS_ENABLED", true) {
		return nil
	}
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	var tlsConf *tls.Config
	if envBool("REDIS_TLS", false) {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        envInt("REDIS_DB", 0),
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
