package cache

import "time"

type RedisOption func(*redisConfig)

type redisConfig struct {
	addr        string
	password    string
	db          int
	poolSize    int
	minIdle     int
	poolTimeout time.Duration
	dialTimeout time.Duration
	prefix      string
}

// WithRedisAddr sets host and port.
func WithRedisAddr(host string, port int) RedisOption {
	return func(c *redisConfig) {
		if host == "" {
			host = "localhost"
		}
		if port <= 0 {
			port = 6379
		}
		c.addr = joinHostPort(host, port)
	}
}

func WithRedisAuth(password string, db int) RedisOption {
	return func(c *redisConfig) {
		c.password = password
		c.db = db
	}
}

func WithRedisPool(size, minIdle int, timeout time.Duration) RedisOption {
	return func(c *redisConfig) {
		c.poolSize = size
		c.minIdle = minIdle
		c.poolTimeout = timeout
	}
}

// WithRedisDialTimeout bounds the connect and the startup ping.
func WithRedisDialTimeout(d time.Duration) RedisOption {
	return func(c *redisConfig) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

// WithRedisPrefix namespaces every key so several deployments can share one Redis.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *redisConfig) { c.prefix = prefix }
}

type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	maxEntries int
	sweepEvery time.Duration
	defaultTTL time.Duration
}

// WithMemoryMaxEntries caps the entry count; the least recently used entry goes first.
func WithMemoryMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

func WithMemorySweep(every time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		if every > 0 {
			c.sweepEvery = every
		}
	}
}

// WithMemoryDefaultTTL applies to Set calls with a non-positive ttl.
func WithMemoryDefaultTTL(ttl time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

type LayeredOption func(*layeredConfig)

type layeredConfig struct {
	l1Entries int
	l1TTL     time.Duration
}

// WithL1 sizes the in-process layer and caps how long it may serve an entry
// without asking Redis again.
func WithL1(entries int, ttl time.Duration) LayeredOption {
	return func(c *layeredConfig) {
		if entries > 0 {
			c.l1Entries = entries
		}
		if ttl > 0 {
			c.l1TTL = ttl
		}
	}
}
