// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package replay

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	recorderRecordingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "replay_recorder_recording",
		Help: "Count of active recorders recording.",
	})

	recorderErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_recorder_errors",
		Help: "Count of general recorder errors encountered.",
	}, []string{"type"})

	recorderPackets = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_recorder_packets",
		Help: "Count of recorded packets.",
	})

	recorderBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_recorder_bytes",
		Help: "Count of recorded payload bytes.",
	})

	runnerActiveGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "replay_runner_running",
		Help: "Count of active runners reading streams.",
	})

	runnerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_runner_error_count",
		Help: "Count of runs that terminated with an error.",
	})

	runnerTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_runner_retried_timeouts",
		Help: "Count of timed out reads that were retried.",
	})

	runnerPackets = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_runner_packets",
		Help: "Count of packets read by runners.",
	})

	runnerBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_runner_bytes",
		Help: "Count of payload bytes read by runners.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		// Recorder
		recorderRecordingGauge,
		recorderErrors,
		recorderPackets,
		recorderBytes,

		// Runner
		runnerActiveGauge,
		runnerErrors,
		runnerTimeouts,
		runnerPackets,
		runnerBytes,
	)
}
