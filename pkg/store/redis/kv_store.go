/*
Copyright 2023 The Quix Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package redis implements the session store on a Redis instance, one key
per user under a bucket prefix. Retention and eviction are whatever the
Redis deployment is configured to do.
*/
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	redisclient "github.com/quix-devrel/template-clickstream/pkg/shared/clients/redis"
	"github.com/quix-devrel/template-clickstream/pkg/store"
)

// redisStore implements the session store backed up by redis.
type redisStore struct {
	bucketName string
	client     *redisclient.RedisClient
}

var _ store.SessionStorer = (*redisStore)(nil)

// NewKVRedisKVStore returns a redis session store.
func NewKVRedisKVStore(bucketName string, client *redisclient.RedisClient) store.SessionStorer {
	return &redisStore{
		bucketName: bucketName,
		client:     client,
	}
}

// GetValue returns the value for a given key.
func (kv *redisStore) GetValue(ctx context.Context, k string) ([]byte, error) {
	val, err := kv.client.Client.Get(ctx, kv.storeKey(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("key %s, %w", k, store.ErrKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s, %w", k, err)
	}
	return val, nil
}

// PutKV puts an element to the redis session store.
func (kv *redisStore) PutKV(ctx context.Context, k string, v []byte) error {
	if err := kv.client.Client.Set(ctx, kv.storeKey(k), v, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s, %w", k, err)
	}
	return nil
}

// GetStoreName returns the store name.
func (kv *redisStore) GetStoreName() string {
	return kv.bucketName
}

// Close closes the backend connection.
func (kv *redisStore) Close() error {
	return kv.client.Client.Close()
}

func (kv *redisStore) storeKey(k string) string {
	return kv.bucketName + ":" + k
}
