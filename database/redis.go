package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// LoadRedisConfig reads the pool settings from environment variables with default fallbacks
func LoadRedisConfig(url string, logger *zap.Logger) RedisConfig {
	return RedisConfig{
		URL:          url,
		PoolSize:     getEnvAsInt(logger, "REDIS_POOL_SIZE", 10),
		DialTimeout:  getEnvAsDuration(logger, "REDIS_DIAL_TIMEOUT", 30*time.Second),
		MinIdleConns: getEnvAsInt(logger, "REDIS_MIN_IDLE_CONNS", 5),
		ReadTimeout:  getEnvAsDuration(logger, "REDIS_READ_TIMEOUT", 10*time.Second),
		MaxRetries:   getEnvAsInt(logger, "REDIS_MAX_RETRIES", 3),
	}
}

func getEnvAsInt(logger *zap.Logger, name string, defaultValue int) int {
	if value, exists := os.LookupEnv(name); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logger.Warn("invalid integer value, using default", zap.String("name", name), zap.Int("default", defaultValue))
	}
	return defaultValue
}

func getEnvAsDuration(logger *zap.Logger, name string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(name); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
		logger.Warn("invalid duration value, using default", zap.String("name", name), zap.Duration("default", defaultValue))
	}
	return defaultValue
}

// NewRedisClient creates a Redis client with the provided configuration
func NewRedisClient(ctx context.Context, config RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = config.PoolSize
	opt.MinIdleConns = config.MinIdleConns
	opt.DialTimeout = config.DialTimeout
	opt.ReadTimeout = config.ReadTimeout
	opt.MaxRetries = config.MaxRetries

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis server: %w", err)
	}

	logger.Info("redis client initialized",
		zap.Int("pool_size", config.PoolSize),
		zap.Int("min_idle_conns", config.MinIdleConns),
		zap.Duration("dial_timeout", config.DialTimeout),
		zap.Duration("read_timeout", config.ReadTimeout),
		zap.Int("max_retries", config.MaxRetries),
	)
	return client, nil
}
