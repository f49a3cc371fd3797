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

// Gender values carried on click events.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Event is one observed click interaction. It is immutable once
// observed; Timestamp is epoch nanoseconds and is monotonic per user,
// Time is the human readable form of the same instant.
type Event struct {
	Time      string `json:"time,omitempty"`
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"userId"`
	Category  string `json:"category"`
	Age       *int   `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
	IP        string `json:"ip,omitempty"`
	ProductID string `json:"productId"`
	Offer     string `json:"offer,omitempty"`
}

// Eligible returns false for events that can never apply for an offer,
// i.e. events missing the gender or age attribute.
func (e Event) Eligible() bool {
	return e.Gender != "" && e.Age != nil
}

// userSuffix is the short form of a user id used in audit records.
func userSuffix(userID string) string {
	if len(userID) <= 4 {
		return userID
	}
	return userID[len(userID)-4:]
}
