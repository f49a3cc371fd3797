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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// eventsProcessedCount is used to indicate the number of events observed
var eventsProcessedCount = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "behaviour_detector",
	Name:      "events_total",
	Help:      "Total number of events observed",
})

// eventsIneligibleCount is used to indicate the number of events dropped for missing demographics
var eventsIneligibleCount = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "behaviour_detector",
	Name:      "events_ineligible_total",
	Help:      "Total number of events dropped for missing gender or age",
})

// eventsDuplicateCount is used to indicate the number of page refreshes ignored
var eventsDuplicateCount = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "behaviour_detector",
	Name:      "events_duplicate_total",
	Help:      "Total number of page refreshes ignored",
})

// transitionsCount is used to indicate the number of state entries, per target state
var transitionsCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "behaviour_detector",
	Name:      "transitions_total",
	Help:      "Total number of automaton transitions",
}, []string{"state"})

// sessionResetCount is used to indicate the number of candidate sessions discarded
var sessionResetCount = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "behaviour_detector",
	Name:      "session_resets_total",
	Help:      "Total number of candidate sessions discarded",
})

// offersTriggeredCount is used to indicate the number of offers triggered
var offersTriggeredCount = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "behaviour_detector",
	Name:      "offers_total",
	Help:      "Total number of offers triggered",
})

// recipientsOverflowCount is used to indicate recipients dropped because the sink was full
var recipientsOverflowCount = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "behaviour_detector",
	Name:      "recipients_overflow_total",
	Help:      "Total number of recipients dropped because the sink was full",
})

// sessionFetchLatency observes session store get latency
var sessionFetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Subsystem: "behaviour_detector",
	Name:      "session_fetch_latency_seconds",
	Help:      "Latency of session store reads",
	Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
})
