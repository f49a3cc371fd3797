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

package behaviour

import "sync"

// Recipient is one completed (user, offer) pair awaiting dispatch.
type Recipient struct {
	UserID string `json:"userId"`
	Offer  string `json:"offer"`
}

// Recipients is a thread safe collection of completed offer recipients.
// Entries are never deduplicated; they leave the collection only
// through Drain, which snapshots and clears in a single critical
// section. A max size bounds growth between drains, the oldest entries
// overflow first.
type Recipients struct {
	entries []Recipient
	maxSize int
	lock    *sync.Mutex
}

// NewRecipients returns an empty collection bounded to size entries.
func NewRecipients(size int) *Recipients {
	return &Recipients{
		entries: []Recipient{},
		maxSize: size,
		lock:    new(sync.Mutex),
	}
}

// Append adds a recipient to the collection.
func (r *Recipients) Append(entry Recipient) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.entries) >= r.maxSize {
		r.entries = r.entries[1:]
		recipientsOverflowCount.Inc()
	}
	r.entries = append(r.entries, entry)
}

// Drain returns all pending recipients and clears the collection.
func (r *Recipients) Drain() []Recipient {
	r.lock.Lock()
	defer r.lock.Unlock()
	drained := r.entries
	r.entries = []Recipient{}
	return drained
}

// Length returns the number of pending recipients.
func (r *Recipients) Length() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.entries)
}
