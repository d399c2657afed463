package config

// Redis backs the rate limiter and the catalog response cache.  If the
// server cannot be reached during startup the constructor returns nil and
// both middlewares degrade to pass-through.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/redis/go-redis/v9"
)

// RedisConfig mirrors the REDIS_* variables.  Addr takes effect only when
// Host/Port are not both set.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT"`
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	TLS      bool   `env:"REDIS_TLS" envDefault:"false"`
}

// Address resolves the dial address.
func (c RedisConfig) Address() string {
	if c.Host != "" && c.Port != "" {
		return c.Host + ":" + c.Port
	}
	return c.Addr
}

// NewRedisClient instantiates a Redis client from the environment.  The
// returned client is nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
	var rc RedisConfig
	if err := env.Parse(&rc); err != nil {
		return nil
	}
	var tlsConf *tls.Config
	if rc.TLS {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      rc.Address(),
		Password:  rc.Password,
		DB:        rc.DB,
		TLSConfig: tlsConf,
	})
	// Ping the server with a short timeout.  Return nil on failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
