package app

import "github.com/loadlane/loadlane/internal/cache"

// RedisSettings converts RedisCacheConfig to the cache package representation.
func (c CacheConfig) RedisSettings() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  c.Redis.Address,
		Username: c.Redis.Username,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}
