package config

import (
	"os"
	"strings"
	"time"
)

// RedisConfig configures the shared result cache. An empty URL selects the
// in-process store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func redisFromEnv(p *envParser) RedisConfig {
	return RedisConfig{
		URL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		PoolSize:     p.positiveInt("REDIS_POOL_SIZE", 20),
		MinIdleConns: p.nonNegativeInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
}
