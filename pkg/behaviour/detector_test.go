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

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quix-devrel/template-clickstream/pkg/store"
	"github.com/quix-devrel/template-clickstream/pkg/store/inmem"
)

func click(user, category, product, gender string, age int, ts int64) Event {
	return Event{
		Timestamp: ts,
		UserID:    user,
		Category:  category,
		Age:       &age,
		Gender:    gender,
		ProductID: product,
	}
}

func newTestDetector(t *testing.T, opts ...Option) (*Detector, store.SessionStorer) {
	t.Helper()
	kv := inmem.NewKVInMemKVStore("sessions")
	d, err := NewDetector(kv, opts...)
	require.NoError(t, err)
	return d, kv
}

func storedSession(t *testing.T, kv store.SessionStorer, user string) *UserSession {
	t.Helper()
	data, err := kv.GetValue(context.Background(), user)
	require.NoError(t, err)
	session, err := UnmarshalUserSession(data)
	require.NoError(t, err)
	return session
}

// Scenario A: male aged 40 browses clothing, shoes, then different
// clothing; the pattern completes and offer1 is recorded.
func TestOfferTriggeredForMaleShopper(t *testing.T) {
	d, kv := newTestDetector(t)
	ctx := context.Background()

	err := d.ProcessBatch(ctx, []Event{
		click("user-0001", CategoryClothing, "P1", GenderMale, 40, 1000),
		click("user-0001", CategoryShoes, "P2", GenderMale, 40, 2000),
		click("user-0001", CategoryClothing, "P3", GenderMale, 40, 3000),
	})
	require.NoError(t, err)

	recipients := d.Recipients().Drain()
	require.Len(t, recipients, 1)
	assert.Equal(t, Recipient{UserID: "user-0001", Offer: OfferMen}, recipients[0])

	session := storedSession(t, kv, "user-0001")
	assert.Equal(t, StateInit, session.State)
	assert.Empty(t, session.Rows)
}

// Scenario B: the third clothing click is the anchor product again, the
// automaton falls back to clothes_visited and no offer fires.
func TestAnchorProductRevisitDoesNotTrigger(t *testing.T) {
	d, kv := newTestDetector(t)
	ctx := context.Background()

	err := d.ProcessBatch(ctx, []Event{
		click("user-0001", CategoryClothing, "P1", GenderMale, 40, 1000),
		click("user-0001", CategoryShoes, "P2", GenderMale, 40, 2000),
		click("user-0001", CategoryClothing, "P1", GenderMale, 40, 3000),
	})
	require.NoError(t, err)

	assert.Empty(t, d.Recipients().Drain())
	session := storedSession(t, kv, "user-0001")
	assert.Equal(t, StateClothesVisited, session.State)
	assert.Len(t, session.Rows, 3)
}

// Scenario C: an electronics click never opens a session.
func TestNonClothingClickStaysInit(t *testing.T) {
	d, kv := newTestDetector(t)

	err := d.ProcessBatch(context.Background(), []Event{
		click("user-0002", "electronics", "P1", GenderFemale, 30, 1000),
	})
	require.NoError(t, err)

	assert.Empty(t, d.Recipients().Drain())
	session := storedSession(t, kv, "user-0002")
	assert.Equal(t, StateInit, session.State)
	assert.Empty(t, session.Rows)
}

// Scenario D: a male aged 50 is outside the target demographic.
func TestDemographicOutsideTargetStaysInit(t *testing.T) {
	d, kv := newTestDetector(t)

	err := d.ProcessBatch(context.Background(), []Event{
		click("user-0003", CategoryClothing, "P1", GenderMale, 50, 1000),
	})
	require.NoError(t, err)

	assert.Empty(t, d.Recipients().Drain())
	session := storedSession(t, kv, "user-0003")
	assert.Equal(t, StateInit, session.State)
	assert.Empty(t, session.Rows)
}

func TestFemaleShopperGetsOffer2(t *testing.T) {
	d, _ := newTestDetector(t)

	err := d.ProcessBatch(context.Background(), []Event{
		click("user-0004", CategoryClothing, "P1", GenderFemale, 30, 1000),
		click("user-0004", CategoryShoes, "P2", GenderFemale, 30, 2000),
		click("user-0004", CategoryClothing, "P3", GenderFemale, 30, 3000),
	})
	require.NoError(t, err)

	recipients := d.Recipients().Drain()
	require.Len(t, recipients, 1)
	assert.Equal(t, OfferWomen, recipients[0].Offer)
}

func TestIneligibleEventsAreSkipped(t *testing.T) {
	d, kv := newTestDetector(t)
	ctx := context.Background()

	noAge := Event{Timestamp: 1000, UserID: "user-0005", Category: CategoryClothing, Gender: GenderMale, ProductID: "P1"}
	noGender := click("user-0005", CategoryClothing, "P1", "", 40, 2000)

	require.NoError(t, d.ProcessBatch(ctx, []Event{noAge, noGender}))

	// no state was ever created for the user
	_, err := kv.GetValue(ctx, "user-0005")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	assert.Empty(t, d.Recipients().Drain())
}

func TestPageRefreshIsIgnored(t *testing.T) {
	d, kv := newTestDetector(t)
	ctx := context.Background()

	require.NoError(t, d.ProcessBatch(ctx, []Event{
		click("user-0006", CategoryClothing, "P1", GenderMale, 40, 1000),
	}))
	before := storedSession(t, kv, "user-0006")

	// same product again, a reload, not a new interaction
	require.NoError(t, d.ProcessBatch(ctx, []Event{
		click("user-0006", CategoryClothing, "P1", GenderMale, 40, 2000),
	}))
	after := storedSession(t, kv, "user-0006")

	assert.Equal(t, before, after)
	assert.Len(t, after.Rows, 1)
}

func TestWindowExpiryResetsSession(t *testing.T) {
	d, kv := newTestDetector(t, WithWindow(30*time.Minute))
	ctx := context.Background()

	anchor := click("user-0007", CategoryClothing, "P1", GenderMale, 40, 0)
	require.NoError(t, d.ProcessBatch(ctx, []Event{anchor}))

	// exactly the window width after the anchor: too late, even though
	// the category and demographic condition match
	late := click("user-0007", CategoryShoes, "P2", GenderMale, 40, (30 * time.Minute).Nanoseconds())
	require.NoError(t, d.ProcessBatch(ctx, []Event{late}))

	session := storedSession(t, kv, "user-0007")
	assert.Equal(t, StateInit, session.State)
	assert.Empty(t, session.Rows)
	assert.Empty(t, d.Recipients().Drain())
}

func TestWindowMeasuredFromAnchorNotPrevious(t *testing.T) {
	d, kv := newTestDetector(t, WithWindow(30*time.Minute))
	ctx := context.Background()
	minute := time.Minute.Nanoseconds()

	// each step is well within 30m of the previous event, but the last
	// one is beyond 30m of the anchor
	require.NoError(t, d.ProcessBatch(ctx, []Event{
		click("user-0008", CategoryClothing, "P1", GenderMale, 40, 0),
		click("user-0008", CategoryShoes, "P2", GenderMale, 40, 20*minute),
		click("user-0008", CategoryClothing, "P3", GenderMale, 40, 35*minute),
	}))

	session := storedSession(t, kv, "user-0008")
	assert.Equal(t, StateInit, session.State)
	assert.Empty(t, session.Rows)
	assert.Empty(t, d.Recipients().Drain())
}

func TestOutOfPatternEventDiscardsSession(t *testing.T) {
	d, kv := newTestDetector(t)
	ctx := context.Background()

	require.NoError(t, d.ProcessBatch(ctx, []Event{
		click("user-0009", CategoryClothing, "P1", GenderMale, 40, 1000),
		click("user-0009", CategoryShoes, "P2", GenderMale, 40, 2000),
		// electronics does not match any rule from shoes_visited; the
		// whole candidate session is discarded, anchor included
		click("user-0009", "electronics", "P3", GenderMale, 40, 3000),
	}))

	session := storedSession(t, kv, "user-0009")
	assert.Equal(t, StateInit, session.State)
	assert.Empty(t, session.Rows)
}

func TestOfferResolutionResetsWithinSameStep(t *testing.T) {
	d, kv := newTestDetector(t)
	ctx := context.Background()

	require.NoError(t, d.ProcessBatch(ctx, []Event{
		click("user-0010", CategoryClothing, "P1", GenderMale, 40, 1000),
		click("user-0010", CategoryShoes, "P2", GenderMale, 40, 2000),
		click("user-0010", CategoryClothing, "P3", GenderMale, 40, 3000),
		// the next event sees a fresh session, not the offer state
		click("user-0010", CategoryClothing, "P4", GenderMale, 40, 4000),
	}))

	require.Len(t, d.Recipients().Drain(), 1)
	session := storedSession(t, kv, "user-0010")
	assert.Equal(t, StateClothesVisited, session.State)
	assert.Len(t, session.Rows, 1)
	assert.Equal(t, "P4", session.Anchor().ProductID)
}

func TestDeterministicReplay(t *testing.T) {
	sequence := []Event{
		click("user-0011", CategoryClothing, "P1", GenderMale, 40, 1000),
		click("user-0011", CategoryShoes, "P2", GenderMale, 40, 2000),
		click("user-0011", CategoryClothing, "P1", GenderMale, 40, 3000),
		click("user-0011", CategoryShoes, "P5", GenderMale, 40, 4000),
		click("user-0011", CategoryClothing, "P6", GenderMale, 40, 5000),
	}

	d1, kv1 := newTestDetector(t)
	d2, kv2 := newTestDetector(t)
	require.NoError(t, d1.ProcessBatch(context.Background(), sequence))
	require.NoError(t, d2.ProcessBatch(context.Background(), sequence))

	assert.Equal(t, storedSession(t, kv1, "user-0011"), storedSession(t, kv2, "user-0011"))
	assert.Equal(t, d1.Recipients().Drain(), d2.Recipients().Drain())
}

func TestKeysAreIndependent(t *testing.T) {
	d, kv := newTestDetector(t)
	ctx := context.Background()

	require.NoError(t, d.ProcessBatch(ctx, []Event{
		click("user-a", CategoryClothing, "P1", GenderMale, 40, 1000),
		click("user-b", CategoryClothing, "P9", GenderFemale, 30, 1500),
		click("user-a", CategoryShoes, "P2", GenderMale, 40, 2000),
		click("user-b", "electronics", "P8", GenderFemale, 30, 2500),
		click("user-a", CategoryClothing, "P3", GenderMale, 40, 3000),
	}))

	recipients := d.Recipients().Drain()
	require.Len(t, recipients, 1)
	assert.Equal(t, "user-a", recipients[0].UserID)

	sessionB := storedSession(t, kv, "user-b")
	assert.Equal(t, StateInit, sessionB.State)
}

func TestOfferFollowsLastProcessedEvent(t *testing.T) {
	d, kv := newTestDetector(t)
	ctx := context.Background()

	// gender flips mid-session; the stored offer follows the most
	// recently processed event
	require.NoError(t, d.ProcessBatch(ctx, []Event{
		click("user-0012", CategoryClothing, "P1", GenderMale, 40, 1000),
	}))
	assert.Equal(t, OfferMen, storedSession(t, kv, "user-0012").Offer)

	require.NoError(t, d.ProcessBatch(ctx, []Event{
		click("user-0012", CategoryShoes, "P2", GenderFemale, 40, 2000),
	}))
	assert.Equal(t, OfferWomen, storedSession(t, kv, "user-0012").Offer)
}

type failingStore struct{ err error }

func (f *failingStore) GetValue(context.Context, string) ([]byte, error) { return nil, f.err }
func (f *failingStore) PutKV(context.Context, string, []byte) error      { return f.err }
func (f *failingStore) GetStoreName() string                             { return "failing" }
func (f *failingStore) Close() error                                     { return nil }

func TestStoreFailureAbortsBatch(t *testing.T) {
	d, err := NewDetector(&failingStore{err: assert.AnError})
	require.NoError(t, err)

	err = d.ProcessBatch(context.Background(), []Event{
		click("user-0013", CategoryClothing, "P1", GenderMale, 40, 1000),
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDetectorOptions(t *testing.T) {
	kv := inmem.NewKVInMemKVStore("sessions")

	_, err := NewDetector(kv, WithWindow(0))
	assert.Error(t, err)

	_, err = NewDetector(kv, WithRecipientCapacity(0))
	assert.Error(t, err)

	d, err := NewDetector(kv, WithWindow(time.Minute), WithRecipientCapacity(5))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d.window)
}
