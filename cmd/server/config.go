package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mcoot/teamladder/internal/api"
	"github.com/mcoot/teamladder/internal/factory"
	"github.com/mcoot/teamladder/internal/services/archive"
	pgstorage "github.com/mcoot/teamladder/internal/storage/postgres"
	redisstorage "github.com/mcoot/teamladder/internal/storage/redis"
)

// loadConfig builds the factory and server configuration from the environment
func loadConfig(getenv func(string) string) (factory.Config, api.ServerConfig, error) {
	cfg := factory.Config{
		StorageType: getenv("STORAGE_TYPE"),
	}
	serverCfg := api.DefaultServerConfig()

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisURL := getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, serverCfg, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		if prefix := getenv("REDIS_KEY_PREFIX"); prefix != "" {
			redisCfg.KeyPrefix = prefix
		}
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		dsn := getenv("DATABASE_URL")
		if dsn == "" {
			return cfg, serverCfg, fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.DSN = dsn
		cfg.PostgresConfig = &pgCfg
	}

	var err error
	if cfg.Ladder.TeamSize, err = intEnv(getenv, "TEAM_SIZE", 0); err != nil {
		return cfg, serverCfg, err
	}
	if cfg.Ladder.BaselineRating, err = floatEnv(getenv, "BASELINE_RATING", 0); err != nil {
		return cfg, serverCfg, err
	}
	if serverCfg.Port, err = intEnv(getenv, "PORT", serverCfg.Port); err != nil {
		return cfg, serverCfg, err
	}

	cfg.Archive = archive.DefaultConfig()
	cfg.Archive.Bucket = getenv("ARCHIVE_BUCKET")
	cfg.Archive.Endpoint = getenv("ARCHIVE_ENDPOINT")
	cfg.Archive.AccessKeyID = getenv("ARCHIVE_ACCESS_KEY_ID")
	cfg.Archive.SecretAccessKey = getenv("ARCHIVE_SECRET_ACCESS_KEY")
	if region := getenv("ARCHIVE_REGION"); region != "" {
		cfg.Archive.Region = region
	}
	if raw := getenv("ARCHIVE_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return cfg, serverCfg, fmt.Errorf("ARCHIVE_INTERVAL must be a positive duration, got %q", raw)
		}
		cfg.Archive.Interval = interval
	}

	return cfg, serverCfg, nil
}

func intEnv(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}

func floatEnv(getenv func(string) string, key string, def float64) (float64, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, raw)
	}
	return v, nil
}
