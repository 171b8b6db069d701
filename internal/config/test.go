package config

import "github.com/caarlos0/env/v11"

// TestConfig points integration tests at real backends. Empty values skip them.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN"`
	TestRedisAddr   string `env:"TEST_REDIS_ADDR"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
