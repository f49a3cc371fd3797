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

package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// auditDeliveredCount is used to indicate the number of records appended to the audit stream
var auditDeliveredCount = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "audit",
	Name:      "delivered_total",
	Help:      "Total number of audit records delivered",
})

// auditDeliveryErrors is used to indicate the number of records dropped on delivery failure
var auditDeliveryErrors = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "audit",
	Name:      "delivery_error_total",
	Help:      "Total number of audit records dropped on delivery failure",
})
