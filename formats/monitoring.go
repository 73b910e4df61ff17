// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package formats

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loadCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "monobit_loads",
		Help: "Count of fonts loaded, by format.",
	},
		[]string{"format"})

	saveCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "monobit_saves",
		Help: "Count of fonts saved, by format.",
	},
		[]string{"format"})

	errorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "monobit_errors",
		Help: "Count of failed load and save operations, by operation and format.",
	},
		[]string{"op", "format"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		loadCounter,
		saveCounter,
		errorCounter,
	)
}

func countLoad(format string, n int) {
	loadCounter.With(prometheus.Labels{"format": format}).Add(float64(n))
}

func countSave(format string, n int) {
	saveCounter.With(prometheus.Labels{"format": format}).Add(float64(n))
}

func countError(op, format string) {
	errorCounter.With(prometheus.Labels{"op": op, "format": format}).Inc()
}
