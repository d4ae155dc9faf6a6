package config

import "main/utils"

type RedisConfig struct {
	URL     string
	Enabled bool
}

func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:     utils.GetEnvAsString("REDIS_URL", "redis://localhost:6379/0"),
		Enabled: utils.GetEnvAsBool("REDIS_CACHE_ENABLED", true),
	}
}
