package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"memory"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	DefaultSeasonID  string  `env:"DEFAULT_SEASON_ID" envDefault:"default"`
	DefaultBuyIn     float64 `env:"DEFAULT_BUY_IN" envDefault:"50"`
	DefaultPrize     float64 `env:"DEFAULT_PRIZE" envDefault:"20"`
	SettlementPolicy string  `env:"SETTLEMENT_POLICY" envDefault:"equal_split"`
	PrizePolicy      string  `env:"PRIZE_POLICY" envDefault:"all_players"`
	SoftLimitPerMin  int     `env:"SOFT_LIMIT_PER_MIN" envDefault:"30"`
	LimiterCacheSize int     `env:"LIMITER_CACHE_SIZE" envDefault:"1024"`
	AllowAnyUnlock   bool    `env:"ALLOW_ANY_UNLOCK" envDefault:"true"`
	LockTimezone     string  `env:"LOCK_TIMEZONE" envDefault:"Australia/Brisbane"`
	AuditMax         int     `env:"AUDIT_MAX" envDefault:"200"`
	EventBufferSize  int     `env:"EVENT_BUFFER_SIZE" envDefault:"200"`

	NotifyEnabled     bool   `env:"NOTIFY_ENABLED" envDefault:"false"`
	NotifyConfigPath  string `env:"NOTIFY_CONFIG_PATH"`
	NotifyWorkers     int    `env:"NOTIFY_WORKERS" envDefault:"2"`
	NotifyRetryMax    int    `env:"NOTIFY_RETRY_MAX" envDefault:"3"`
	NotifyRetryBaseMS int    `env:"NOTIFY_RETRY_BASE_MS" envDefault:"500"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
