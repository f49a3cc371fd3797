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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// clickSourceReadCount is used to indicate the number of messages read
var clickSourceReadCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "click_source",
	Name:      "read_total",
	Help:      "Total number of messages Read",
}, []string{"topic"})

// clickSourceAckCount is used to indicate the number of messages Acknowledged
var clickSourceAckCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "click_source",
	Name:      "ack_total",
	Help:      "Total number of messages Acknowledged",
}, []string{"topic"})

// clickSourceDecodeErrors is used to indicate the number of undecodable payloads skipped
var clickSourceDecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "click_source",
	Name:      "decode_error_total",
	Help:      "Total number of payloads that failed to decode as click events",
}, []string{"topic"})
