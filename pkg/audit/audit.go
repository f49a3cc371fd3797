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
Package audit delivers human readable records of automaton transitions
and offer triggers. Info records are appended to a Redis stream for the
downstream audit consumers; debug records stay on the local logger.
Delivery is fire and forget, a failed append never blocks or fails
event processing.
*/
package audit

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	redisclient "github.com/quix-devrel/template-clickstream/pkg/shared/clients/redis"
	"github.com/quix-devrel/template-clickstream/pkg/shared/logging"
)

// DefaultStreamName is the stream audit consumers read from.
const DefaultStreamName = "state_logs"

// Stream writes audit records to a redis stream, mirroring them on the
// local logger.
type Stream struct {
	streamName string
	client     *redisclient.RedisClient
	logger     *zap.SugaredLogger
}

type Option func(*Stream)

// WithLogger sets the local mirror logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Stream) {
		s.logger = l
	}
}

// WithStreamName overrides the destination stream.
func WithStreamName(name string) Option {
	return func(s *Stream) {
		s.streamName = name
	}
}

// NewStream returns a redis stream auditor.
func NewStream(client *redisclient.RedisClient, opts ...Option) *Stream {
	s := &Stream{
		streamName: DefaultStreamName,
		client:     client,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = logging.NewLogger()
	}
	return s
}

// Debugf logs a debug record locally only.
func (s *Stream) Debugf(format string, args ...interface{}) {
	s.logger.Debugf(format, args...)
}

// Infof logs an info record locally and appends it to the audit stream.
func (s *Stream) Infof(format string, args ...interface{}) {
	s.logger.Infof(format, args...)
	record := fmt.Sprintf(format, args...)
	err := s.client.Client.XAdd(redisclient.RedisContext, &redis.XAddArgs{
		Stream: s.streamName,
		Values: map[string]interface{}{
			"level": "INFO",
			"msg":   record,
			"time":  time.Now().UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		auditDeliveryErrors.Inc()
		s.logger.Warnw("Failed to deliver audit record", zap.Error(err))
		return
	}
	auditDeliveredCount.Inc()
}
