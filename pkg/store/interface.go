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

package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by GetValue for a key that has never been
// written. The caller is expected to start from a default value.
var ErrKeyNotFound = errors.New("key not found")

// SessionStorer defines the durable per-key storage backing user
// sessions. Reads and writes for a single key must be linearizable with
// respect to the calling goroutine; the engine itself performs no
// locking and has at most one mutation in flight per key.
type SessionStorer interface {
	// GetValue gets the value of the given key.
	GetValue(ctx context.Context, key string) ([]byte, error)
	// PutKV inserts or replaces a key-value pair.
	PutKV(ctx context.Context, key string, value []byte) error
	// GetStoreName returns the bucket name of the store.
	GetStoreName() string
	// Close closes the backend connection.
	Close() error
}
