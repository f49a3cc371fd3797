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

package offers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// offersDispatchedCount is used to indicate the number of offers written to kafka
var offersDispatchedCount = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "offers_sink",
	Name:      "write_total",
	Help:      "Total number of offers written",
})

// offersDispatchErrors is used to indicate the number of offers that failed to write
var offersDispatchErrors = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "offers_sink",
	Name:      "write_error_total",
	Help:      "Total number of offers that failed to write",
})
