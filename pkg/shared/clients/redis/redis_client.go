package redis

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/quix-devrel/template-clickstream/pkg/config"
)

// RedisContext is used to pass the context specifically for REDIS operations.
// A cancelled context during SIGTERM or Ctrl-C that is propagated down will throw a context cancelled error because redis uses context to obtain connection from the connection pool.
// All redis operations will use the below no-op context.Background() to try to process in-flight messages that we have received prior to the cancellation of the context.
var RedisContext = context.Background()

// RedisClient datatype to hold redis client attributes.
type RedisClient struct {
	Client redis.UniversalClient
}

// NewRedisClient returns a new Redis Client.
func NewRedisClient(options *redis.UniversalOptions) *RedisClient {
	client := new(RedisClient)
	client.Client = redis.NewUniversalClient(options)
	return client
}

// NewRedisClientFromConfig returns a Redis Client wired from the
// detector configuration.
func NewRedisClientFromConfig(conf config.Config) *RedisClient {
	return NewRedisClient(&redis.UniversalOptions{
		Addrs:    strings.Split(conf.RedisAddr, ","),
		Password: conf.RedisPassword,
	})
}
