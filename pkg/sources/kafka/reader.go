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

package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/quix-devrel/template-clickstream/pkg/behaviour"
	"github.com/quix-devrel/template-clickstream/pkg/shared/logging"
	sharedutil "github.com/quix-devrel/template-clickstream/pkg/shared/util"
)

// ReadMessage couples a decoded click event with the consumer message
// it came from, so the source can mark the offset once the event has
// been processed.
type ReadMessage struct {
	Event behaviour.Event
	raw   *sarama.ConsumerMessage
}

// ClickSource reads click events from a Kafka topic through a consumer
// group. Events are handed out in delivery order per partition;
// offsets advance only when the caller acks a batch.
type ClickSource struct {
	// topic to consume click events from
	topic string
	// kafka brokers
	brokers []string
	// group name for the consumer group
	groupName string
	// handler for the kafka consumer group
	handler *consumerHandler
	// sarama config for kafka consumer group
	config *sarama.Config
	// logger
	logger *zap.SugaredLogger
	// context cancel function
	cancelFn context.CancelFunc
	// lifecycle context
	lifecycleCtx context.Context
	// channel to indicate that we are done
	stopCh chan struct{}
	// size of the buffer that holds consumed but yet to be processed messages
	handlerBuffer int
	// read timeout for draining the handler buffer
	readTimeout time.Duration
}

type Option func(*ClickSource) error

// WithLogger is used to return logger information
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *ClickSource) error {
		o.logger = l
		return nil
	}
}

// WithBufferSize is used to return size of message channel information
func WithBufferSize(s int) Option {
	return func(o *ClickSource) error {
		o.handlerBuffer = s
		return nil
	}
}

// WithReadTimeOut is used to set the read timeout for the from buffer
func WithReadTimeOut(t time.Duration) Option {
	return func(o *ClickSource) error {
		o.readTimeout = t
		return nil
	}
}

// WithGroupName is used to set the group name
func WithGroupName(gn string) Option {
	return func(o *ClickSource) error {
		o.groupName = gn
		return nil
	}
}

// NewClickSource returns a ClickSource based on a Kafka consumer group.
func NewClickSource(brokers []string, topic string, configYAML string, opts ...Option) (*ClickSource, error) {
	source := &ClickSource{
		topic:         topic,
		brokers:       brokers,
		groupName:     "behaviour-detector", // default group
		readTimeout:   1 * time.Second,      // default timeout
		handlerBuffer: 100,                  // default buffer size for kafka reads
	}
	for _, o := range opts {
		if err := o(source); err != nil {
			return nil, err
		}
	}
	if source.logger == nil {
		source.logger = logging.NewLogger()
	}

	config, err := sharedutil.GetSaramaConfigFromYAMLString(configYAML)
	if err != nil {
		return nil, err
	}
	// return errors from the underlying kafka client using the Errors channel
	config.Consumer.Return.Errors = true
	source.config = config

	sarama.Logger = zap.NewStdLog(source.logger.Desugar())

	ctx, cancel := context.WithCancel(context.Background())
	source.cancelFn = cancel
	source.lifecycleCtx = ctx
	source.stopCh = make(chan struct{})
	source.handler = newConsumerHandler(source.handlerBuffer)

	return source, nil
}

// Start connects the consumer group and blocks until it is ready to
// deliver messages.
func (r *ClickSource) Start() {
	go r.startConsumer()
	// wait for the consumer to setup.
	<-r.handler.ready
	r.logger.Info("Consumer ready. Starting click source...")
}

// Read drains up to count click events from the handler buffer, waiting
// at most the configured read timeout. Payloads that do not decode as
// click events are counted, marked and skipped.
func (r *ClickSource) Read(_ context.Context, count int64) []ReadMessage {
	msgs := make([]ReadMessage, 0, count)
	timeout := time.After(r.readTimeout)
loop:
	for i := int64(0); i < count; i++ {
		select {
		case m := <-r.handler.messages:
			clickSourceReadCount.WithLabelValues(r.topic).Inc()
			var ev behaviour.Event
			if err := json.Unmarshal(m.Value, &ev); err != nil {
				clickSourceDecodeErrors.WithLabelValues(r.topic).Inc()
				r.logger.Warnw("Skipping message that does not decode as a click event",
					zap.String("topic", m.Topic), zap.Int32("partition", m.Partition),
					zap.Int64("offset", m.Offset), zap.Error(err))
				r.handler.sess.MarkMessage(m, "")
				continue
			}
			msgs = append(msgs, ReadMessage{Event: ev, raw: m})
		case <-timeout:
			// log that timeout has happened and don't return an error
			r.logger.Debugw("Timed out waiting for messages to read.", zap.Duration("waited", r.readTimeout))
			break loop
		}
	}
	return msgs
}

// Ack marks the offsets of a processed batch.
func (r *ClickSource) Ack(msgs []ReadMessage) {
	// we want to block the handler from exiting if there are any inflight acks.
	r.handler.inflightAcks = make(chan bool)
	defer close(r.handler.inflightAcks)

	for _, m := range msgs {
		r.handler.sess.MarkMessage(m.raw, "")
		clickSourceAckCount.WithLabelValues(r.topic).Inc()
	}
}

// Close stops the consumer group and waits for it to exit.
func (r *ClickSource) Close() error {
	r.logger.Info("Closing click source...")
	r.cancelFn()
	<-r.stopCh
	r.logger.Info("Click source closed")
	return nil
}

func (r *ClickSource) startConsumer() {
	client, err := sarama.NewConsumerGroup(r.brokers, r.groupName, r.config)
	r.logger.Infow("creating NewConsumerGroup", zap.String("topic", r.topic),
		zap.String("consumerGroupName", r.groupName), zap.Strings("brokers", r.brokers))
	if err != nil {
		r.logger.Panicw("Problem initializing sarama client", zap.Error(err))
	}
	wg := new(sync.WaitGroup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-r.lifecycleCtx.Done():
				return
			case cErr := <-client.Errors():
				r.logger.Errorw("Kafka consumer error", zap.Error(cErr))
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			// `Consume` should be called inside an infinite loop; when a
			// server-side re-balance happens, the consumer session will need to be
			// recreated to get the new claims
			if conErr := client.Consume(r.lifecycleCtx, []string{r.topic}, r.handler); conErr != nil {
				// Panic on errors to let it crash and restart the process
				r.logger.Panicw("Kafka consumer failed with error: ", zap.Error(conErr))
			}
			// check if context was cancelled, signaling that the consumer should stop
			if r.lifecycleCtx.Err() != nil {
				return
			}
		}
	}()
	wg.Wait()
	_ = client.Close()
	close(r.stopCh)
}
