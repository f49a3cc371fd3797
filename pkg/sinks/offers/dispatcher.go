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
Package offers drains the recipient sink on a fixed interval and
produces one message per (user, offer) pair on the offers topic.
*/
package offers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/quix-devrel/template-clickstream/pkg/behaviour"
	"github.com/quix-devrel/template-clickstream/pkg/shared/logging"
)

const defaultInterval = 10 * time.Second

// Dispatcher periodically drains completed offer recipients and writes
// them to a kafka topic, keyed by user so downstream consumers see one
// user's offers in order.
type Dispatcher struct {
	topic      string
	producer   sarama.SyncProducer
	recipients *behaviour.Recipients
	interval   time.Duration
	logger     *zap.SugaredLogger
}

type Option func(*Dispatcher) error

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Dispatcher) error {
		d.logger = l
		return nil
	}
}

// WithInterval sets the drain interval.
func WithInterval(i time.Duration) Option {
	return func(d *Dispatcher) error {
		if i <= 0 {
			return fmt.Errorf("dispatch interval must be positive, got %v", i)
		}
		d.interval = i
		return nil
	}
}

// NewDispatcher returns a Dispatcher writing to the given topic.
func NewDispatcher(producer sarama.SyncProducer, topic string, recipients *behaviour.Recipients, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		topic:      topic,
		producer:   producer,
		recipients: recipients,
		interval:   defaultInterval,
	}
	for _, o := range opts {
		if err := o(d); err != nil {
			return nil, err
		}
	}
	if d.logger == nil {
		d.logger = logging.NewLogger()
	}
	d.logger = d.logger.With("sinkType", "offers").With("topic", topic)
	return d, nil
}

// Run drains on every tick until the context is done, then performs a
// final drain so shutdown does not strand pending recipients.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.dispatch()
		case <-ctx.Done():
			d.dispatch()
			return
		}
	}
}

// Close closes the underlying producer.
func (d *Dispatcher) Close() error {
	return d.producer.Close()
}

func (d *Dispatcher) dispatch() {
	drained := d.recipients.Drain()
	if len(drained) == 0 {
		return
	}
	msgs := make([]*sarama.ProducerMessage, 0, len(drained))
	for _, recipient := range drained {
		payload, err := json.Marshal(recipient)
		if err != nil {
			// Recipient is a flat pair of strings, this cannot happen.
			d.logger.Errorw("Failed to encode recipient", zap.Error(err))
			continue
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: d.topic,
			Key:   sarama.StringEncoder(recipient.UserID),
			Value: sarama.ByteEncoder(payload),
		})
	}
	if err := d.producer.SendMessages(msgs); err != nil {
		failed := len(msgs)
		var producerErrs sarama.ProducerErrors
		if pErrs, ok := err.(sarama.ProducerErrors); ok {
			producerErrs = pErrs
			failed = len(pErrs)
		}
		offersDispatchErrors.Add(float64(failed))
		d.logger.Errorw("SendMessages failed", zap.Int("failed", failed), zap.Error(err))
		for _, pe := range producerErrs {
			d.logger.Debugw("Failed producer message", zap.Error(pe.Err))
		}
		offersDispatchedCount.Add(float64(len(msgs) - failed))
		return
	}
	offersDispatchedCount.Add(float64(len(msgs)))
	d.logger.Infow("Dispatched offers", zap.Int("count", len(msgs)))
}
