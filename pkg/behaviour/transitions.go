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

// Product categories the automaton reacts to.
const (
	CategoryClothing = "clothing"
	CategoryShoes    = "shoes"
)

// rule is one outgoing edge of the automaton. The rules of a state are
// evaluated in declaration order and the first condition that holds
// wins.
type rule struct {
	when func(ev Event, session *UserSession) bool
	to   State
}

// rulesFor returns the ordered outgoing rules for a state. The switch
// is exhaustive over all declared states so there is no lookup that can
// miss at runtime; StateOffer is transient and has no outgoing rules
// because it is resolved before the next event is processed.
func rulesFor(state State) []rule {
	switch state {
	case StateInit:
		return []rule{
			{when: qualifyingClothingClick, to: StateClothesVisited},
		}
	case StateClothesVisited:
		return []rule{
			{when: categoryIs(CategoryShoes), to: StateShoesVisited},
			{when: categoryIs(CategoryClothing), to: StateClothesVisited},
		}
	case StateShoesVisited:
		return []rule{
			{when: clothingOtherThanAnchor, to: StateOffer},
			{when: clothingSameAsAnchor, to: StateClothesVisited},
		}
	case StateOffer:
		return nil
	}
	return nil
}

// qualifyingClothingClick opens a session: a clothing click by a male
// aged 35-45 or a female aged 25-35. Events reaching the automaton have
// already passed the eligibility filter, so Age is always present.
func qualifyingClothingClick(ev Event, _ *UserSession) bool {
	if ev.Category != CategoryClothing {
		return false
	}
	age := *ev.Age
	return (ev.Gender == GenderMale && 35 <= age && age <= 45) ||
		(ev.Gender == GenderFemale && 25 <= age && age <= 35)
}

func categoryIs(category string) func(Event, *UserSession) bool {
	return func(ev Event, _ *UserSession) bool {
		return ev.Category == category
	}
}

func clothingOtherThanAnchor(ev Event, session *UserSession) bool {
	return ev.Category == CategoryClothing && ev.ProductID != session.Anchor().ProductID
}

func clothingSameAsAnchor(ev Event, session *UserSession) bool {
	return ev.Category == CategoryClothing && ev.ProductID == session.Anchor().ProductID
}
