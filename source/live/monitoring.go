// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package live

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	resyncCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livesource_resyncs_total",
		Help: "Count of live file resynchronizations.",
	})

	resyncErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livesource_resync_errors_total",
		Help: "Count of live file resynchronizations that failed.",
	})

	scanResets = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livesource_scan_resets_total",
		Help: "Count of scan state resets due to a deleted, replaced, or shrunk file.",
	})

	scannedPackets = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livesource_scanned_packets_total",
		Help: "Count of complete packets confirmed by the recovery scanner.",
	})

	timeouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "livesource_timeouts_total",
		Help: "Count of blocking reads that timed out.",
	}, []string{"type"})

	aborts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livesource_aborts_total",
		Help: "Count of live sources that were stopped.",
	})

	watchEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "livesource_watch_changes_total",
		Help: "Count of file changes observed by the watcher.",
	}, []string{"via"})

	watchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livesource_watch_errors_total",
		Help: "Count of watchers terminated by an error.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		resyncCount,
		resyncErrors,
		scanResets,
		scannedPackets,
		timeouts,
		aborts,
		watchEvents,
		watchErrors,
	)
}
