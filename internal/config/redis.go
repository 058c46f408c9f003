package config

import "time"

// RedisConfig holds the execution result cache connection. An empty Url
// disables caching entirely.
type RedisConfig struct {
	DB       int
	Url      string
	Password string
	CacheTTL time.Duration
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:       getIntEnv("REDIS_DB", 0),
		Url:      getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		CacheTTL: time.Duration(getIntEnv("CACHE_TTL_SEC", 600)) * time.Second,
	}
}

func (c *RedisConfig) Enabled() bool {
	return c.Url != ""
}
