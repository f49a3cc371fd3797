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
Package inmem implements the session store on an in-process map. It is
used by tests and local single-process runs; anything that needs the
state to survive a restart should use the redis store instead.
*/
package inmem

import (
	"context"
	"fmt"
	"sync"

	"github.com/quix-devrel/template-clickstream/pkg/store"
)

// inMemStore implements the session store backed up by an in mem map.
type inMemStore struct {
	bucketName string
	kv         map[string][]byte
	lock       sync.RWMutex
	isClosed   bool
}

var _ store.SessionStorer = (*inMemStore)(nil)

// NewKVInMemKVStore returns an in mem session store.
func NewKVInMemKVStore(bucketName string) store.SessionStorer {
	return &inMemStore{
		bucketName: bucketName,
		kv:         make(map[string][]byte),
	}
}

// GetValue returns the value for a given key.
func (kv *inMemStore) GetValue(_ context.Context, k string) ([]byte, error) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	if val, ok := kv.kv[k]; ok {
		return val, nil
	}
	return nil, fmt.Errorf("key %s, %w", k, store.ErrKeyNotFound)
}

// GetStoreName returns the store name.
func (kv *inMemStore) GetStoreName() string {
	return kv.bucketName
}

// PutKV puts an element to the in mem session store.
func (kv *inMemStore) PutKV(_ context.Context, k string, v []byte) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	if kv.isClosed {
		return fmt.Errorf("kv store is closed")
	}
	var val = make([]byte, len(v))
	copy(val, v)
	kv.kv[k] = val
	return nil
}

// Close closes the in mem session store.
func (kv *inMemStore) Close() error {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	kv.isClosed = true
	return nil
}
