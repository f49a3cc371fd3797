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
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quix-devrel/template-clickstream/pkg/shared/logging"
	"github.com/quix-devrel/template-clickstream/pkg/store"
)

// Offer identifiers assigned when the pattern completes.
const (
	OfferMen   = "offer1"
	OfferWomen = "offer2"
)

const (
	defaultWindow            = 30 * time.Minute
	defaultRecipientCapacity = 10000
)

// Auditor receives human readable records of state entries and offer
// triggers. Delivery is best effort; implementations must not block
// event processing on failures.
type Auditor interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// Detector runs the browse-pattern automaton over a stream of click
// events, keyed by user. It owns no per-key locking; the session store
// is the sole authority for consistency of a key across invocations.
type Detector struct {
	// sessionStore holds the per-user automaton state across batches
	sessionStore store.SessionStorer
	// recipients collects completed (user, offer) pairs for dispatch
	recipients *Recipients
	// window is the maximum age of a candidate session, measured from
	// its anchor event
	window time.Duration
	// audit receives transition and trigger records
	audit Auditor
	logger *zap.SugaredLogger
}

type Option func(*Detector) error

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Detector) error {
		d.logger = l
		return nil
	}
}

// WithWindow sets the session window duration.
func WithWindow(w time.Duration) Option {
	return func(d *Detector) error {
		if w <= 0 {
			return fmt.Errorf("window duration must be positive, got %v", w)
		}
		d.window = w
		return nil
	}
}

// WithAuditor sets the audit record receiver.
func WithAuditor(a Auditor) Option {
	return func(d *Detector) error {
		d.audit = a
		return nil
	}
}

// WithRecipientCapacity bounds the recipient collection between drains.
func WithRecipientCapacity(size int) Option {
	return func(d *Detector) error {
		if size <= 0 {
			return fmt.Errorf("recipient capacity must be positive, got %d", size)
		}
		d.recipients = NewRecipients(size)
		return nil
	}
}

// NewDetector returns a Detector backed by the given session store.
func NewDetector(sessionStore store.SessionStorer, opts ...Option) (*Detector, error) {
	d := &Detector{
		sessionStore: sessionStore,
		recipients:   NewRecipients(defaultRecipientCapacity),
		window:       defaultWindow,
	}
	for _, o := range opts {
		if err := o(d); err != nil {
			return nil, err
		}
	}
	if d.logger == nil {
		d.logger = logging.NewLogger()
	}
	if d.audit == nil {
		d.audit = d.logger
	}
	return d, nil
}

// Recipients exposes the sink of completed offers to the dispatcher.
func (d *Detector) Recipients() *Recipients {
	return d.recipients
}

// ProcessBatch runs every event of the batch through the automaton, in
// arrival order. A store failure aborts the batch; sessions written by
// the already processed prefix stay written.
func (d *Detector) ProcessBatch(ctx context.Context, events []Event) error {
	for _, ev := range events {
		if err := d.processEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (d *Detector) processEvent(ctx context.Context, ev Event) error {
	eventsProcessedCount.Inc()
	d.logger.Debugw("Processing event", zap.String("userId", ev.UserID))

	// Filter out events that cannot apply for offers
	if !ev.Eligible() {
		d.audit.Debugf("User %s does not have gender or age, ignoring", userSuffix(ev.UserID))
		eventsIneligibleCount.Inc()
		return nil
	}

	session, err := d.fetchSession(ctx, ev.UserID)
	if err != nil {
		return err
	}

	// Ignore page refreshes
	if n := len(session.Rows); n > 0 && session.Rows[n-1].ProductID == ev.ProductID {
		d.audit.Debugf("Ignoring page refresh for user %s", userSuffix(ev.UserID))
		eventsDuplicateCount.Inc()
		return nil
	}

	// The offer follows the most recently processed event, it is not
	// pinned at session start.
	session.Offer = offerForGender(ev.Gender)

	transitioned := false
	for _, r := range rulesFor(session.State) {
		if r.when(ev, session) && d.withinWindow(ev, session) {
			session.State = r.to
			session.Rows = append(session.Rows, ev)
			transitioned = true
			transitionsCount.WithLabelValues(string(session.State)).Inc()
			d.audit.Infof("[User %s entered state %s][Event: clicked %s][Category: %s]",
				userSuffix(ev.UserID), session.State, ev.ProductID, ev.Category)
			break
		}
	}

	if !transitioned {
		d.logger.Debugw("Resetting state to init", zap.String("userId", ev.UserID))
		session.Reset()
		sessionResetCount.Inc()
		return d.commitSession(ctx, ev.UserID, session)
	}

	if session.State == StateOffer {
		d.audit.Infof("[User %s triggered offer %s]", userSuffix(ev.UserID), session.Offer)
		d.recipients.Append(Recipient{UserID: ev.UserID, Offer: session.Offer})
		offersTriggeredCount.Inc()
		session.Reset()
	}

	return d.commitSession(ctx, ev.UserID, session)
}

// fetchSession loads the session for a user, creating a fresh one on
// first access. Store failures are fatal to the batch.
func (d *Detector) fetchSession(ctx context.Context, userID string) (*UserSession, error) {
	start := time.Now()
	data, err := d.sessionStore.GetValue(ctx, userID)
	sessionFetchLatency.Observe(time.Since(start).Seconds())
	if errors.Is(err, store.ErrKeyNotFound) {
		return NewUserSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session for user %q, %w", userID, err)
	}
	d.logger.Debugw("Loaded session", zap.String("userId", userID), zap.Duration("took", time.Since(start)))
	session, err := UnmarshalUserSession(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session for user %q, %w", userID, err)
	}
	return session, nil
}

func (d *Detector) commitSession(ctx context.Context, userID string, session *UserSession) error {
	data, err := session.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode session for user %q, %w", userID, err)
	}
	if err := d.sessionStore.PutKV(ctx, userID, data); err != nil {
		return fmt.Errorf("failed to write session for user %q, %w", userID, err)
	}
	return nil
}

// withinWindow checks the elapsed time between the event and the
// session anchor. It passes trivially for a session with no rows.
func (d *Detector) withinWindow(ev Event, session *UserSession) bool {
	if len(session.Rows) == 0 {
		return true
	}
	return ev.Timestamp-session.Anchor().Timestamp < d.window.Nanoseconds()
}

func offerForGender(gender string) string {
	if gender == GenderMale {
		return OfferMen
	}
	return OfferWomen
}
