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

import "encoding/json"

// State is the automaton position of a user session.
type State string

const (
	// StateInit is the rest state of a user with no candidate session.
	StateInit State = "init"
	// StateClothesVisited is entered after a qualifying clothing click.
	StateClothesVisited State = "clothes_visited"
	// StateShoesVisited is entered after a shoes click extends the session.
	StateShoesVisited State = "shoes_visited"
	// StateOffer is transient, it is reached and resolved within the
	// processing of a single event and never left at rest.
	StateOffer State = "offer"
)

// UserSession is the per-user state persisted in the session store.
// Rows holds the events accepted into the current candidate session in
// arrival order; Rows[0] is the session anchor.
type UserSession struct {
	State State   `json:"state"`
	Rows  []Event `json:"rows,omitempty"`
	Offer string  `json:"offer,omitempty"`
}

// NewUserSession returns a fresh session at rest.
func NewUserSession() *UserSession {
	return &UserSession{State: StateInit}
}

// Anchor returns the first event of the current candidate session.
// Only valid when Rows is non-empty.
func (s *UserSession) Anchor() Event {
	return s.Rows[0]
}

// Reset discards the candidate session entirely.
func (s *UserSession) Reset() {
	s.State = StateInit
	s.Rows = nil
}

// Marshal encodes the session for the store.
func (s *UserSession) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalUserSession decodes a stored session.
func UnmarshalUserSession(data []byte) (*UserSession, error) {
	session := new(UserSession)
	if err := json.Unmarshal(data, session); err != nil {
		return nil, err
	}
	if session.State == "" {
		session.State = StateInit
	}
	return session, nil
}
