// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package livetail defines the logic for the "livetail" demo app.
//
// This app tails a demo file that is still being recorded, printing a line for
// each packet as it is written, until the recording's Stop packet is read.
//
// With --simulate, the app records a synthetic demo file into the target path
// itself while tailing it. This demonstrates how a live Source, a Recorder, and
// a Runner fit together.
package livetail

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Rupas1k/clarity/protocol"
	"github.com/Rupas1k/clarity/protocol/demo"
	"github.com/Rupas1k/clarity/replay"
	"github.com/Rupas1k/clarity/source/live"
	"github.com/Rupas1k/clarity/support/logging"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

var (
	timeout          = pflag.Duration("timeout", live.DefaultTimeout, "Maximum time to wait for data before giving up.")
	pollInterval     = pflag.Duration("poll-interval", live.DefaultPollInterval, "Interval at which the file is checked for changes directly.")
	retryTimeouts    = pflag.Bool("retry-timeouts", false, "Keep waiting for data after a timeout instead of exiting.")
	logLevel         = pflag.String("log-level", "info", "Log level (debug, info, warn, error).")
	metricsAddr      = pflag.String("metrics-addr", "", "If not empty, serve Prometheus metrics on this address.")
	simulate         = pflag.Int("simulate", 0, "If >0, record this many synthetic ticks into the file while tailing it.")
	simulateInterval = pflag.Duration("simulate-interval", 100*time.Millisecond, "Delay between simulated ticks.")

	simulateKind = demo.KindFlag(demo.Source2)
)

func init() {
	pflag.Var(&simulateKind, "kind", "Demo kind to record with --simulate (SOURCE1, SOURCE2).")
}

// Main is the main entry point.
func Main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] PATH\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(1)
	}

	logger, syncLogger, err := logging.NewZap(*logLevel)
	if err != nil {
		log.Fatalf("Couldn't create logger: %s", err)
	}

	c, cancelFunc := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(c, pflag.Arg(0), logger)
	cancelFunc()

	if err != nil {
		logger.Errorf("Failed to tail %q: %s", pflag.Arg(0), err)
	}
	_ = syncLogger()
	if err != nil {
		os.Exit(1)
	}
}

func run(c context.Context, path string, logger logging.L) error {
	if *metricsAddr != "" {
		srv, err := serveMetrics(*metricsAddr, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.Close(); err != nil {
				logger.Warnf("Failed to close metrics server: %s", err)
			}
		}()
	}

	src, err := live.New(path, &live.Config{
		Timeout:      *timeout,
		PollInterval: *pollInterval,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warnf("Failed to close source: %s", err)
		}
	}()
	logger.Infof("Tailing %q.", src.Path())

	if *simulate > 0 {
		simDoneC := make(chan struct{})
		simC, simCancelFunc := context.WithCancel(c)
		defer func() {
			simCancelFunc()
			<-simDoneC
		}()

		go func() {
			defer close(simDoneC)
			if err := record(simC, src.Path(), *simulate, *simulateInterval, logger); err != nil {
				logger.Errorf("Simulated recording failed: %s", err)
			}
		}()
	}

	runner := replay.Runner{
		OnPacket:      printPacket(os.Stdout),
		RetryTimeouts: *retryTimeouts,
		Logger:        logger,
	}
	err = runner.Run(c, src)

	st := runner.Status()
	logger.Infof("Read %d packet(s) (%d bytes) from %s stream, last tick %d, finished: %v.",
		st.Packets, st.Bytes, st.Kind, st.LastTick, st.Finished)
	return err
}

func printPacket(w io.Writer) func(protocol.Kind, *protocol.Packet, []byte) error {
	return func(kind protocol.Kind, pkt *protocol.Packet, data []byte) error {
		_, err := fmt.Fprintf(w, "tick=%-8d cmd=%-20s offset=%-10d size=%d\n",
			pkt.Tick, demo.Command(pkt.Command), pkt.Offset, len(data))
		return err
	}
}

// record writes a synthetic demo to path with a Recorder, one packet per tick.
func record(c context.Context, path string, ticks int, interval time.Duration, logger logging.L) error {
	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}

	rec := replay.Recorder{Kind: simulateKind.Value()}
	if err := rec.Start(fd); err != nil {
		_ = fd.Close()
		return err
	}

	tick := int32(0)
	defer func() {
		if err := rec.Stop(tick); err != nil {
			logger.Warnf("Failed to finalize recording: %s", err)
		}
	}()

	if err := rec.RecordPacket(demo.CommandSyncTick, tick, nil); err != nil {
		return err
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for tick = 1; int(tick) <= ticks; tick++ {
		select {
		case <-c.Done():
			return c.Err()
		case <-t.C:
		}

		payload := []byte(fmt.Sprintf("simulated tick #%d", tick))
		if err := rec.RecordPacket(demo.CommandPacket, tick, payload); err != nil {
			return err
		}
		logger.Debugf("Recorded tick #%d: %+v", tick, rec.Status())
	}
	return nil
}

func serveMetrics(addr string, logger logging.L) (*http.Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	live.RegisterMonitoring(reg)
	replay.RegisterMonitoring(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %q", addr)
	}

	srv := http.Server{Handler: mux}
	go func() {
		logger.Infof("Serving metrics on %q.", ln.Addr())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics server failed: %s", err)
		}
	}()
	return &srv, nil
}
